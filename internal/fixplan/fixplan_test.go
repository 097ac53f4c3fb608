package fixplan

import (
	"testing"

	"github.com/agentgate/qualitygate/internal/gatetype"
)

func TestClassifyIssue_Categories(t *testing.T) {
	tests := []struct {
		name    string
		message string
		fixable bool
		unsafe  bool
		want    Category
	}{
		{"formatting semicolon", "missing semicolon", true, false, CategoryFormatting},
		{"formatting quotes", "prefer double quotes", true, false, CategoryFormatting},
		{"imports unused", "unused import detected", true, false, CategoryImports},
		{"imports organize", "imports should be organized", true, false, CategoryImports},
		{"safe lint fixable fallthrough", "prefer const over let", true, false, CategorySafeLint},
		{"other not fixable", "this rule cannot be auto-fixed", false, false, CategoryOther},
		{"unsafe always wins", "missing semicolon", true, true, CategoryUnsafe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ClassifyIssue(gatetype.Issue{Message: tt.message, Fixable: tt.fixable}, tt.unsafe)
			if d.Category != tt.want {
				t.Errorf("Category = %v, want %v", d.Category, tt.want)
			}
		})
	}
}

func TestClassifyIssue_UnsafeNeverApplied(t *testing.T) {
	d := ClassifyIssue(gatetype.Issue{Message: "format this", Fixable: true}, true)
	plan := Resolve([]FixDescriptor{d})
	if len(plan.Order) != 0 {
		t.Errorf("expected unsafe descriptor excluded from plan, got %v", plan.Order)
	}
}

func descriptor(id string, category Category, start, end int) FixDescriptor {
	return FixDescriptor{ID: id, Category: category, Priority: priorityByCategory[category], StartLine: start, EndLine: end}
}

func TestResolve_NonOverlappingKeepsAll(t *testing.T) {
	a := descriptor("a", CategoryFormatting, 1, 1)
	b := descriptor("b", CategoryImports, 5, 5)
	plan := Resolve([]FixDescriptor{b, a})

	if len(plan.Order) != 2 {
		t.Fatalf("got %d descriptors, want 2", len(plan.Order))
	}
	if plan.Order[0].ID != "a" || plan.Order[1].ID != "b" {
		t.Errorf("order = %v, want [a, b] (priority then startLine)", plan.Order)
	}
}

func TestResolve_SamePriorityOverlapAppliesSequential(t *testing.T) {
	a := descriptor("a", CategoryFormatting, 1, 3)
	b := descriptor("b", CategoryFormatting, 2, 4)
	plan := Resolve([]FixDescriptor{a, b})

	if len(plan.Conflicts) != 1 || plan.Conflicts[0].Resolution != ResolutionApplySequential {
		t.Fatalf("expected one apply-sequential conflict, got %+v", plan.Conflicts)
	}
	if len(plan.Order) != 2 {
		t.Errorf("expected both descriptors retained, got %v", plan.Order)
	}
}

func TestResolve_DifferentPriorityOverlapKeepsHighest(t *testing.T) {
	higher := descriptor("fmt", CategoryFormatting, 1, 3) // priority 1
	lower := descriptor("imp", CategoryImports, 2, 4)      // priority 2
	plan := Resolve([]FixDescriptor{lower, higher})

	if len(plan.Order) != 1 {
		t.Fatalf("got %d descriptors, want 1 (conflict safety invariant)", len(plan.Order))
	}
	if plan.Order[0].ID != "fmt" {
		t.Errorf("surviving descriptor = %q, want the higher-priority one", plan.Order[0].ID)
	}
}

func TestResolve_OrderingIsDeterministic(t *testing.T) {
	a := descriptor("b-desc", CategoryOther, 10, 10)
	b := descriptor("a-desc", CategoryOther, 10, 10)
	plan1 := Resolve([]FixDescriptor{a, b})
	plan2 := Resolve([]FixDescriptor{b, a})

	if len(plan1.Order) != len(plan2.Order) {
		t.Fatal("plans differ in length across input orderings")
	}
	for i := range plan1.Order {
		if plan1.Order[i].ID != plan2.Order[i].ID {
			t.Errorf("position %d: %q vs %q, want identical regardless of input order", i, plan1.Order[i].ID, plan2.Order[i].ID)
		}
	}
}

func TestGroupOverlaps_AdjacentButNonTouchingRangesDontGroup(t *testing.T) {
	a := descriptor("a", CategoryFormatting, 1, 2)
	b := descriptor("b", CategoryFormatting, 3, 4)
	plan := Resolve([]FixDescriptor{a, b})

	if len(plan.Conflicts) != 0 {
		t.Errorf("expected no conflicts for non-overlapping adjacent ranges, got %+v", plan.Conflicts)
	}
}
