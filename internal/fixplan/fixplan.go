// Package fixplan implements C6 ConflictResolver (spec §4.6): classify
// Issues into FixDescriptors, detect overlapping ranges, resolve conflicts
// by priority, and produce a deterministic sequential application order.
// Grounded on the teacher's internal/collision/detector.go, whose
// sorted-group-then-flag algorithm for overlapping workstream file scopes
// is adapted here from file-level grouping to line-range interval overlap.
package fixplan

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/agentgate/qualitygate/internal/gatetype"
)

// Category classifies a FixDescriptor's kind (spec §3, §4.6).
type Category string

const (
	CategoryFormatting Category = "formatting"
	CategoryImports    Category = "imports"
	CategorySafeLint   Category = "safe-lint"
	CategoryOther      Category = "other"
	CategoryUnsafe     Category = "unsafe"
)

// priorityUnsafe represents the spec's "priority=∞" for unsafe descriptors,
// which are excluded from any applied order regardless of numeric value.
const priorityUnsafe = 1<<31 - 1

var priorityByCategory = map[Category]int{
	CategoryFormatting: 1,
	CategoryImports:    2,
	CategorySafeLint:   3,
	CategoryOther:      4,
	CategoryUnsafe:     priorityUnsafe,
}

// FixDescriptor is the intent to apply one fix, derived from an Issue
// (spec §3 FixDescriptor).
type FixDescriptor struct {
	ID        string
	Category  Category
	Priority  int
	StartLine int
	EndLine   int
	Issue     gatetype.Issue
}

// ClassifyIssue maps an Issue to a FixDescriptor using the substring rules
// in spec §4.6. This classification is a deliberate extension point: it is
// fragile across locales or tools, and is preserved here exactly as
// specified rather than redesigned.
func ClassifyIssue(issue gatetype.Issue, unsafe bool) FixDescriptor {
	category := categoryFor(issue, unsafe)
	return FixDescriptor{
		ID:        uuid.NewString(),
		Category:  category,
		Priority:  priorityByCategory[category],
		StartLine: issue.Line,
		EndLine:   issue.Line,
		Issue:     issue,
	}
}

func categoryFor(issue gatetype.Issue, unsafe bool) Category {
	if unsafe {
		return CategoryUnsafe
	}
	msg := strings.ToLower(issue.Message)
	switch {
	case containsAny(msg, "format", "indent", "spacing", "semicolon", "quotes"):
		return CategoryFormatting
	case containsAny(msg, "import", "unused", "organize"):
		return CategoryImports
	case issue.Fixable:
		return CategorySafeLint
	default:
		return CategoryOther
	}
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// Resolution describes how a conflict group was resolved.
type Resolution string

const (
	ResolutionApplySequential     Resolution = "apply-sequential"
	ResolutionKeepHighestPriority Resolution = "keep-highest-priority"
)

// Conflict is a group of ≥2 FixDescriptors whose line ranges overlap
// (spec §3 FixConflict).
type Conflict struct {
	Members    []FixDescriptor
	Resolution Resolution
}

// Plan is the result of resolving a FixDescriptor set: a deterministic,
// conflict-free application order plus the conflicts that were found.
type Plan struct {
	Order     []FixDescriptor
	Conflicts []Conflict
}

// Resolve builds the application plan for descriptors (spec §4.6). Unsafe
// descriptors are dropped before any grouping or ordering, since they are
// never applied.
func Resolve(descriptors []FixDescriptor) Plan {
	safe := make([]FixDescriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if d.Category != CategoryUnsafe {
			safe = append(safe, d)
		}
	}

	sorted := append([]FixDescriptor(nil), safe...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartLine < sorted[j].StartLine })

	groups, singles := groupOverlaps(sorted)

	var plan Plan
	plan.Order = append(plan.Order, singles...)

	for _, group := range groups {
		resolution := resolveGroup(group)
		plan.Conflicts = append(plan.Conflicts, Conflict{Members: group, Resolution: resolution})
		plan.Order = append(plan.Order, survivingMembers(group, resolution)...)
	}

	sort.SliceStable(plan.Order, func(i, j int) bool {
		a, b := plan.Order[i], plan.Order[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.ID < b.ID
	})

	return plan
}

// groupOverlaps scans the start-line-sorted descriptors once with a
// lookahead, grouping any whose [start,end] ranges intersect (spec §4.6
// step 1, overlap rule: !(a.end < b.start || b.end < a.start)). Descriptors
// that never overlap with anything are returned separately as singles.
func groupOverlaps(sorted []FixDescriptor) (groups [][]FixDescriptor, singles []FixDescriptor) {
	used := make([]bool, len(sorted))

	for i := range sorted {
		if used[i] {
			continue
		}
		group := []FixDescriptor{sorted[i]}
		used[i] = true
		maxEnd := sorted[i].EndLine

		for j := i + 1; j < len(sorted); j++ {
			if used[j] {
				continue
			}
			if overlaps(sorted[i].StartLine, maxEnd, sorted[j].StartLine, sorted[j].EndLine) {
				group = append(group, sorted[j])
				used[j] = true
				if sorted[j].EndLine > maxEnd {
					maxEnd = sorted[j].EndLine
				}
			}
		}

		if len(group) > 1 {
			groups = append(groups, group)
		} else {
			singles = append(singles, group[0])
		}
	}
	return groups, singles
}

func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return !(aEnd < bStart || bEnd < aStart)
}

func resolveGroup(group []FixDescriptor) Resolution {
	priority := group[0].Priority
	for _, d := range group[1:] {
		if d.Priority != priority {
			return ResolutionKeepHighestPriority
		}
	}
	return ResolutionApplySequential
}

func survivingMembers(group []FixDescriptor, resolution Resolution) []FixDescriptor {
	if resolution == ResolutionApplySequential {
		return group
	}

	best := group[0]
	for _, d := range group[1:] {
		if d.Priority < best.Priority {
			best = d
		}
	}
	return []FixDescriptor{best}
}
