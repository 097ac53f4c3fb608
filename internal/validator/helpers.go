package validator

import (
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentgate/qualitygate/internal/gatetype"
)

func isExecNotFound(err error) bool {
	return err != nil && (err == exec.ErrNotFound || strings.Contains(err.Error(), "executable file not found"))
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// tscDiagnostic matches the type-checker's "path(line,col): category code: message" shape.
var tscDiagnostic = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\):\s*(error|warning)\s+\S+:\s*(.+)$`)

// diagnosticsForFile extracts diagnostics belonging to targetPath from the
// type-checker's text output, relativizing paths against projectRoot.
func diagnosticsForFile(output, targetPath, projectRoot string) []gatetype.Issue {
	var issues []gatetype.Issue
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := tscDiagnostic.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		path := m[1]
		if !filepath.IsAbs(path) {
			path = filepath.Join(projectRoot, path)
		}
		if path != targetPath {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		colNo, _ := strconv.Atoi(m[3])
		severity := gatetype.SeverityWarning
		if m[4] == "error" {
			severity = gatetype.SeverityError
		}
		rel := path
		if r, err := filepath.Rel(projectRoot, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
		issues = append(issues, gatetype.Issue{
			Path:     rel,
			Line:     lineNo,
			Column:   colNo,
			Severity: severity,
			Message:  m[5],
			Source:   "type-checker",
		})
	}
	return issues
}
