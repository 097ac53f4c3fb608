// Package patternmatch is the external pattern-matcher collaborator
// consumed only through Admit (spec §1, §6: "file-pattern glob matching
// library"). Grounded on the teacher's internal/guard/glob.go matchGlob /
// matchDoubleStar pair, kept verbatim in algorithm and generalized into an
// include/exclude admission decision for PostWriteHook's ADMITTED step.
package patternmatch

import (
	"path/filepath"
	"strings"
)

// Match reports whether path satisfies pattern. Supports "*" within a path
// segment and "**" across path segments.
func Match(pattern, path string) bool {
	if pattern == "" {
		return false
	}
	if pattern == path {
		return true
	}
	if strings.Contains(pattern, "**") {
		return matchDoubleStar(pattern, path)
	}
	if strings.Contains(pattern, "*") {
		matched, err := filepath.Match(pattern, path)
		return err == nil && matched
	}
	return false
}

func matchDoubleStar(pattern, path string) bool {
	patternParts := strings.Split(pattern, "**")
	if len(patternParts) < 2 {
		return false
	}

	prefix := strings.TrimSuffix(patternParts[0], "/")
	suffix := strings.TrimPrefix(patternParts[len(patternParts)-1], "/")

	for _, middle := range patternParts[1 : len(patternParts)-1] {
		middle = strings.Trim(middle, "/")
		if middle != "" && !strings.Contains("/"+path+"/", "/"+middle+"/") {
			return false
		}
	}

	if prefix != "" {
		if !strings.HasPrefix(path, prefix) {
			return false
		}
		if len(path) > len(prefix) && path[len(prefix)] != '/' {
			return false
		}
	}

	if suffix != "" {
		if strings.Contains(suffix, "*") {
			matched, err := filepath.Match(suffix, filepath.Base(path))
			if err != nil || !matched {
				return false
			}
		} else if !strings.HasSuffix(path, suffix) {
			return false
		}
	}

	return true
}

// Admit applies include-then-exclude pattern lists to path (spec §4.9
// ADMITTED: "Non-match ⇒ jump to REPORTED"). An empty include list means
// "admit everything" so long as no exclude pattern matches.
func Admit(path string, include, exclude []string) bool {
	for _, pattern := range exclude {
		if Match(pattern, path) {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, pattern := range include {
		if Match(pattern, path) {
			return true
		}
	}
	return false
}
