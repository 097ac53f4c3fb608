// Package diagparse turns an external tool's diagnostic payload into
// gatetype.Issue values (spec §4.3 OutputParser). Grounded on the teacher's
// internal/guard.Finding JSON shape and its tolerant-parsing posture:
// a malformed payload degrades to an empty issue list plus a warning
// rather than propagating a parse error.
package diagparse

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentgate/qualitygate/internal/gatetype"
)

// rawDiagnostic mirrors the superset of JSON shapes the supported tools emit.
type rawDiagnostic struct {
	Path     string      `json:"path"`
	File     string      `json:"file"` // alternate key some tools use
	Line     int         `json:"line"`
	Column   int         `json:"column"`
	Severity string      `json:"severity"`
	Message  interface{} `json:"message"` // string or {content, elements[]}
	Fixable  bool        `json:"fixable"`
	Fixes    []struct {
		Description string `json:"description"`
	} `json:"fixes"`
}

type structuredMessage struct {
	Content  string `json:"content"`
	Elements []struct {
		Content string `json:"content"`
	} `json:"elements"`
}

type reportEnvelope struct {
	Diagnostics []rawDiagnostic `json:"diagnostics"`
}

// Parse decodes raw JSON diagnostic output into Issues attributed to
// sourceName, relativizing paths against cwd. On any JSON parse failure it
// falls back to TextMode. The returned warning, if non-empty, belongs in the
// owning ValidationResult's note/error field.
func Parse(raw []byte, cwd, sourceName string) ([]gatetype.Issue, string) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, ""
	}

	diags, ok := decodeJSON([]byte(trimmed))
	if !ok {
		issues := TextMode(trimmed, cwd, sourceName)
		if len(issues) == 0 {
			return nil, "failed to parse diagnostic output as JSON or text"
		}
		return issues, ""
	}

	issues := make([]gatetype.Issue, 0, len(diags))
	for _, d := range diags {
		issues = append(issues, toIssue(d, cwd, sourceName))
	}
	return issues, ""
}

func decodeJSON(raw []byte) ([]rawDiagnostic, bool) {
	var list []rawDiagnostic
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}

	var envelope reportEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Diagnostics != nil {
		return envelope.Diagnostics, true
	}

	var single rawDiagnostic
	if err := json.Unmarshal(raw, &single); err == nil && (single.Path != "" || single.File != "") {
		return []rawDiagnostic{single}, true
	}

	return nil, false
}

func toIssue(d rawDiagnostic, cwd, sourceName string) gatetype.Issue {
	path := d.Path
	if path == "" {
		path = d.File
	}
	if cwd != "" {
		if rel, err := filepath.Rel(cwd, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}

	line, col := d.Line, d.Column
	if line <= 0 {
		line = 1
	}
	if col <= 0 {
		col = 1
	}

	return gatetype.Issue{
		Path:     path,
		Line:     line,
		Column:   col,
		Severity: mapSeverity(d.Severity),
		Message:  extractMessage(d.Message),
		Source:   sourceName,
		Fixable:  d.Fixable || len(d.Fixes) > 0,
	}
}

func mapSeverity(raw string) gatetype.Severity {
	switch strings.ToLower(raw) {
	case "error":
		return gatetype.SeverityError
	case "warning", "warn":
		return gatetype.SeverityWarning
	default:
		return gatetype.SeverityInfo
	}
}

func extractMessage(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case map[string]interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		var structured structuredMessage
		if err := json.Unmarshal(data, &structured); err != nil {
			return ""
		}
		parts := make([]string, 0, len(structured.Elements)+1)
		if structured.Content != "" {
			parts = append(parts, structured.Content)
		}
		for _, el := range structured.Elements {
			if el.Content != "" {
				parts = append(parts, el.Content)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// textLine matches "path:line:col: message" and "path:line:col - message".
var textLine = regexp.MustCompile(`^(.+?):(\d+):(\d+):?\s*[-:]?\s*(.+)$`)

// TextMode extracts file:line:col:message diagnostics from unstructured
// tool output when JSON decoding fails (spec §4.3 "tolerant... falls back
// to text mode").
func TextMode(output, cwd, sourceName string) []gatetype.Issue {
	var issues []gatetype.Issue
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := textLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, err1 := strconv.Atoi(m[2])
		colNo, err2 := strconv.Atoi(m[3])
		if err1 != nil || err2 != nil {
			continue
		}
		path := m[1]
		if cwd != "" {
			if rel, err := filepath.Rel(cwd, path); err == nil && !strings.HasPrefix(rel, "..") {
				path = rel
			}
		}
		issues = append(issues, gatetype.Issue{
			Path:     path,
			Line:     lineNo,
			Column:   colNo,
			Severity: gatetype.SeverityError,
			Message:  strings.TrimSpace(m[4]),
			Source:   sourceName,
		})
	}
	return issues
}
