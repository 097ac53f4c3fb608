// Package fixverify implements C8 FixVerifier (spec §4.8): file-integrity
// checking, re-validation, issue-set diffing, and effectiveness grading.
// Grounded on the teacher's internal/verify/verifier.go, whose Verify()
// aggregates independent checks into one pass/fail result with an evidence
// trail; adapted here from workstream-completion checks (files, commands,
// coverage) to post-fix checks (integrity, re-validation, issue diff).
package fixverify

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/agentgate/qualitygate/internal/gateerr"
	"github.com/agentgate/qualitygate/internal/gatetype"
	"github.com/agentgate/qualitygate/internal/validator"
)

// Effectiveness grades a fix run's outcome (spec §3, §4.8 step 5).
type Effectiveness string

const (
	EffectivenessExcellent Effectiveness = "excellent"
	EffectivenessGood      Effectiveness = "good"
	EffectivenessPartial   Effectiveness = "partial"
	EffectivenessPoor      Effectiveness = "poor"
	EffectivenessFailed    Effectiveness = "failed"
)

// FileIntegrity is the post-fix file-integrity check (spec §4.8 step 1).
type FileIntegrity struct {
	Exists               bool
	ValidSyntax          bool
	ReasonableSize       bool
	IsEmpty              bool
	EncodingPreserved    bool
	Size                 int64
	CorruptionIndicators []string
}

// Passed reports whether every integrity signal is acceptable.
func (f FileIntegrity) Passed() bool {
	return f.Exists && f.ValidSyntax && f.ReasonableSize && f.EncodingPreserved && len(f.CorruptionIndicators) == 0
}

// IssueComparison is the resolved/remaining/new split (spec §4.8 step 3).
type IssueComparison struct {
	Resolved    []gatetype.Issue
	Remaining   []gatetype.Issue
	NewIssues   []gatetype.Issue
	SuccessRate float64
}

// Result is VerificationResult (spec §3).
type Result struct {
	Success       bool
	Effectiveness Effectiveness
	Comparison    IssueComparison
	Integrity     FileIntegrity
	NewValidation gatetype.ValidationResponse
	Warnings      []string
}

// Verifier re-validates fixed content and scores the fix's effectiveness.
type Verifier struct {
	Manager *validator.Manager
	Timeout time.Duration
}

// Verify runs the full procedure in spec §4.8 against the fixed content,
// comparing it to the original Issue set.
func (v *Verifier) Verify(ctx context.Context, file gatetype.FileRecord, originalIssues []gatetype.Issue, originalContent, newContent []byte) Result {
	var warnings []string

	integrity := checkIntegrity(file.Extension, originalContent, newContent)
	if !integrity.Passed() {
		warnings = append(warnings, integrityWarnings(integrity)...)
	}

	timeout := v.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	newResponse := v.Manager.Run(ctx, gatetype.FileRecord{Path: file.Path, Content: newContent, Extension: file.Extension, Exists: true}, timeout, nil)

	comparison := compareIssues(originalIssues, newResponse.AllIssues())

	if len(comparison.NewIssues) > 0 {
		warnings = append(warnings, "new issues introduced")
	}

	effectiveness := assessEffectiveness(integrity, comparison)
	success := integrity.Passed() && !newResponse.HasErrors() && len(comparison.NewIssues) <= len(comparison.Resolved) &&
		(len(comparison.Resolved) > 0 || len(originalIssues) == 0)

	return Result{
		Success:       success,
		Effectiveness: effectiveness,
		Comparison:    comparison,
		Integrity:     integrity,
		NewValidation: newResponse,
		Warnings:      warnings,
	}
}

func integrityWarnings(integrity FileIntegrity) []string {
	var warnings []string
	if !integrity.ValidSyntax {
		warnings = append(warnings, gateerr.New(gateerr.ErrSyntaxInvalid, nil).Error())
	}
	if integrity.IsEmpty {
		warnings = append(warnings, gateerr.New(gateerr.ErrFileEmptied, nil).Error())
	}
	if !integrity.EncodingPreserved {
		warnings = append(warnings, gateerr.New(gateerr.ErrEncodingLost, nil).Error())
	}
	if !integrity.ReasonableSize {
		warnings = append(warnings, gateerr.New(gateerr.ErrSizeRatioExceeded, nil).Error())
	}
	for _, indicator := range integrity.CorruptionIndicators {
		warnings = append(warnings, "corruption indicator: "+indicator)
	}
	return warnings
}

func compareIssues(original, current []gatetype.Issue) IssueComparison {
	originalByKey := map[gatetype.Identity]gatetype.Issue{}
	for _, i := range original {
		originalByKey[i.Key()] = i
	}
	currentByKey := map[gatetype.Identity]gatetype.Issue{}
	for _, i := range current {
		currentByKey[i.Key()] = i
	}

	var resolved, remaining, newIssues []gatetype.Issue
	for key, issue := range originalByKey {
		if _, stillPresent := currentByKey[key]; stillPresent {
			remaining = append(remaining, issue)
		} else {
			resolved = append(resolved, issue)
		}
	}
	for key, issue := range currentByKey {
		if _, wasPresent := originalByKey[key]; !wasPresent {
			newIssues = append(newIssues, issue)
		}
	}

	successRate := 1.0
	if len(original) > 0 {
		successRate = float64(len(resolved)) / float64(len(original))
	}

	return IssueComparison{Resolved: resolved, Remaining: remaining, NewIssues: newIssues, SuccessRate: successRate}
}

func assessEffectiveness(integrity FileIntegrity, comparison IssueComparison) Effectiveness {
	if !integrity.Passed() {
		return EffectivenessFailed
	}
	if len(comparison.NewIssues) > len(comparison.Resolved) {
		return EffectivenessPoor
	}
	if len(comparison.NewIssues) > 0 && comparison.SuccessRate >= 0.7 {
		return EffectivenessPartial
	}
	switch {
	case comparison.SuccessRate >= 0.9:
		return EffectivenessExcellent
	case comparison.SuccessRate >= 0.7:
		return EffectivenessGood
	case comparison.SuccessRate >= 0.3:
		return EffectivenessPartial
	case comparison.SuccessRate > 0:
		return EffectivenessPoor
	default:
		return EffectivenessFailed
	}
}

func checkIntegrity(extension string, original, current []byte) FileIntegrity {
	integrity := FileIntegrity{
		Exists:            true,
		Size:              int64(len(current)),
		IsEmpty:           len(current) == 0,
		EncodingPreserved: utf8.Valid(current),
		ValidSyntax:       true,
	}

	integrity.ReasonableSize = sizeRatioInRange(len(original), len(current))

	switch extensionClass(extension) {
	case classJSON:
		if !isWellFormedJSON(current) {
			integrity.ValidSyntax = false
			integrity.CorruptionIndicators = append(integrity.CorruptionIndicators, "invalid JSON after fix")
		}
	case classCode:
		if !balancedDelimiters(current) {
			integrity.ValidSyntax = false
			integrity.CorruptionIndicators = append(integrity.CorruptionIndicators, "unbalanced delimiters after fix")
		}
	default:
		nulRatio, controlRatio := controlCharRatios(current)
		if nulRatio >= 0.01 {
			integrity.CorruptionIndicators = append(integrity.CorruptionIndicators, "excessive NUL bytes")
		}
		if controlRatio >= 0.05 {
			integrity.CorruptionIndicators = append(integrity.CorruptionIndicators, "excessive control characters")
		}
	}

	return integrity
}

func sizeRatioInRange(originalLen, currentLen int) bool {
	if originalLen == 0 {
		return true
	}
	ratio := float64(currentLen) / float64(originalLen)
	return ratio >= 0.1 && ratio <= 10
}

type extClass int

const (
	classCode extClass = iota
	classJSON
	classOther
)

func extensionClass(extension string) extClass {
	switch extension {
	case ".json":
		return classJSON
	case ".ts", ".tsx", ".js", ".jsx", ".go", ".java", ".py", ".c", ".cpp", ".rs":
		return classCode
	default:
		return classOther
	}
}
