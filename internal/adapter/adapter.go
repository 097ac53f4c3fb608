// Package adapter implements C2 AdapterFactory + Adapters (spec §4.2):
// per-version argv construction for the formatter/linter tool, keyed by
// major version so a new major is a registration, not a caller change
// (spec §9 "Polymorphism for adapters"). Grounded on the teacher's
// internal/quality.Checker per-type dispatch and internal/guard's argv
// builders, generalized to the 1.x/2.x variant table in spec §4.2.
package adapter

import (
	"github.com/agentgate/qualitygate/internal/diagparse"
	"github.com/agentgate/qualitygate/internal/gatetype"
	"github.com/agentgate/qualitygate/internal/toolversion"
)

// CheckOptions parameterizes BuildCheckCommand.
type CheckOptions struct {
	Fix          bool
	Unsafe       bool
	OutputFormat string // defaults to "json" when empty
}

// FixOptions parameterizes BuildFixCommand.
type FixOptions struct {
	Unsafe bool
}

// Adapter encapsulates one major version's command-line shape for the
// formatter/linter tool (spec §4.2 "Polymorphic over two variants").
type Adapter interface {
	// Name identifies the variant, e.g. "1.x" or "2.x".
	Name() string
	// BuildCheckCommand returns binary, argv for a diagnostics-only run.
	BuildCheckCommand(filePath string, opts CheckOptions) (string, []string)
	// BuildFixCommand returns binary, argv for an in-place fix run.
	BuildFixCommand(filePath string, opts FixOptions) (string, []string)
	// FixFlag returns the bare flag string embedding callers may log or echo.
	FixFlag(unsafe bool) string
	// ParseDiagnostics turns the tool's raw stdout into Issues.
	ParseDiagnostics(raw []byte, cwd string) ([]gatetype.Issue, string)
}

const binaryName = "formatterlint"

// v1Adapter implements the 1.x command-line shape (--apply/--apply-unsafe).
type v1Adapter struct{}

func (v1Adapter) Name() string { return "1.x" }

func (v1Adapter) BuildCheckCommand(filePath string, opts CheckOptions) (string, []string) {
	format := opts.OutputFormat
	if format == "" {
		format = "json"
	}
	argv := []string{"check", "--reporter=" + format}
	if opts.Fix {
		argv = append(argv, v1Adapter{}.FixFlag(opts.Unsafe))
	}
	argv = append(argv, filePath)
	return binaryName, argv
}

func (v1Adapter) BuildFixCommand(filePath string, opts FixOptions) (string, []string) {
	argv := []string{"check", v1Adapter{}.FixFlag(opts.Unsafe), filePath}
	return binaryName, argv
}

func (v1Adapter) FixFlag(unsafe bool) string {
	if unsafe {
		return "--apply-unsafe"
	}
	return "--apply"
}

func (v1Adapter) ParseDiagnostics(raw []byte, cwd string) ([]gatetype.Issue, string) {
	return diagparse.Parse(raw, cwd, "formatter-linter")
}

// v2Adapter implements the 2.x command-line shape (--write/--write --unsafe).
type v2Adapter struct{}

func (v2Adapter) Name() string { return "2.x" }

func (v2Adapter) BuildCheckCommand(filePath string, opts CheckOptions) (string, []string) {
	format := opts.OutputFormat
	if format == "" {
		format = "json"
	}
	argv := []string{"check", "--reporter=" + format, "--no-colors"}
	if opts.Fix {
		argv = append(argv, splitFlag(v2Adapter{}.FixFlag(opts.Unsafe))...)
	}
	argv = append(argv, filePath)
	return binaryName, argv
}

func (v2Adapter) BuildFixCommand(filePath string, opts FixOptions) (string, []string) {
	argv := append([]string{"check", "--no-colors"}, splitFlag(v2Adapter{}.FixFlag(opts.Unsafe))...)
	argv = append(argv, filePath)
	return binaryName, argv
}

func (v2Adapter) FixFlag(unsafe bool) string {
	if unsafe {
		return "--write --unsafe"
	}
	return "--write"
}

func (v2Adapter) ParseDiagnostics(raw []byte, cwd string) ([]gatetype.Issue, string) {
	return diagparse.Parse(raw, cwd, "formatter-linter")
}

func splitFlag(flag string) []string {
	if flag == "--write --unsafe" {
		return []string{"--write", "--unsafe"}
	}
	return []string{flag}
}

// ForVersion returns the adapter for v's major version: 1 -> 1.x, anything
// else (including unknown/default) -> 2.x (spec §4.2 "Unknown majors map
// to 2.x").
func ForVersion(v toolversion.Version) Adapter {
	if v.Major == 1 {
		return v1Adapter{}
	}
	return v2Adapter{}
}
