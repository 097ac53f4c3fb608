// Package present is the external presentation-layer collaborator (spec
// §1, §6): it strips terminal escapes and shapes the final JSON object the
// agent adapter receives, so the report never carries ANSI codes or
// duplicate messages (spec §6 "Output invariants"). Grounded on the
// teacher's internal/guard CheckSummary JSON shape and its use of
// encoding/json for stable machine-readable output.
package present

import (
	"encoding/json"
	"regexp"

	"github.com/agentgate/qualitygate/internal/posthook"
)

// hookReport is the exact JSON shape the agent adapter expects (spec §6).
type hookReport struct {
	Success         bool     `json:"success"`
	Modified        bool     `json:"modified"`
	IssuesFound     int      `json:"issues_found"`
	IssuesFixed     int      `json:"issues_fixed"`
	Messages        []string `json:"messages"`
	ExecutionTimeMS int64    `json:"execution_time_ms"`
}

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes terminal escape sequences from s.
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// ToJSON renders report as the agent-facing JSON object, with every message
// scrubbed of terminal escapes (spec §6 "no terminal escape sequences").
func ToJSON(report posthook.Report) ([]byte, error) {
	messages := make([]string, len(report.Messages))
	for i, m := range report.Messages {
		messages[i] = StripANSI(m)
	}
	// Deduplicate while preserving first-seen order (spec §6 "no duplicate issues").
	seen := map[string]bool{}
	deduped := make([]string, 0, len(messages))
	for _, m := range messages {
		if !seen[m] {
			seen[m] = true
			deduped = append(deduped, m)
		}
	}

	out := hookReport{
		Success:         report.Success,
		Modified:        report.Modified,
		IssuesFound:     report.IssuesFound,
		IssuesFixed:     report.IssuesFixed,
		Messages:        deduped,
		ExecutionTimeMS: report.ExecutionTimeMS,
	}
	return json.Marshal(out)
}
