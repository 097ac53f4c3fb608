// Package validator implements C4: the two concrete Validator kinds
// (formatter/linter, type-checker) that ValidatorManager fans out to
// (spec §4.4). Grounded on the teacher's internal/executor.CLIRunner for
// subprocess spawning and internal/executor/retry.go for the
// feature-detection-degrades-to-success posture and its log/slog usage.
package validator

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/agentgate/qualitygate/internal/adapter"
	"github.com/agentgate/qualitygate/internal/config"
	"github.com/agentgate/qualitygate/internal/gateerr"
	"github.com/agentgate/qualitygate/internal/gatetype"
	"github.com/agentgate/qualitygate/internal/procrunner"
	"github.com/agentgate/qualitygate/internal/toolversion"
)

// Validator is the capability set ValidatorManager fans out to (spec §4.4).
type Validator interface {
	Name() string
	Enabled() bool
	Validate(ctx context.Context, file gatetype.FileRecord) gatetype.ValidationResult
}

// FormatterLinter runs the adapter-resolved formatter/linter tool and maps
// its JSON diagnostics to Issues (spec §4.4 "Formatter/Linter validator").
type FormatterLinter struct {
	ProjectRoot string
	Cfg         config.FormatterLinterConfig
	Timeout     time.Duration
	Logger      *slog.Logger
}

func (f *FormatterLinter) Name() string  { return "formatter-linter" }
func (f *FormatterLinter) Enabled() bool { return f.Cfg.Enabled }

func (f *FormatterLinter) Validate(ctx context.Context, file gatetype.FileRecord) gatetype.ValidationResult {
	start := time.Now()
	logger := f.logger()

	version, source := toolversion.Detect(ctx, f.ProjectRoot, binaryTool, f.Cfg.Version)
	logger.Debug("resolved formatter-linter version", "version", version.String(), "source", source)

	ad := adapter.ForVersion(version)
	bin, argv := ad.BuildCheckCommand(file.Path, adapter.CheckOptions{OutputFormat: "json"})

	res, err := procrunner.Run(ctx, f.timeout(), bin, argv...)
	if err != nil {
		if os.IsNotExist(err) || isExecNotFound(err) {
			gerr := gateerr.New(gateerr.ErrToolNotFound, err).WithContext("path", file.Path)
			logger.Info("formatter-linter binary not found, skipping", "error", gerr.Error())
			return gatetype.ValidationResult{
				Validator:  f.Name(),
				Status:     gatetype.StatusSuccess,
				DurationMS: time.Since(start).Milliseconds(),
				Error:      gerr.Error(),
			}
		}
		gerr := gateerr.New(gateerr.ErrSpawnFailed, err).WithContext("path", file.Path)
		return gatetype.ValidationResult{
			Validator:  f.Name(),
			Status:     gatetype.StatusError,
			DurationMS: time.Since(start).Milliseconds(),
			Error:      gerr.Error(),
		}
	}

	// Exit code 1 is normal when diagnostics exist (spec §4.4); only treat
	// output as unusable on a timeout.
	if res.TimedOut {
		gerr := gateerr.Newf(gateerr.ErrValidatorTimeout, "formatter-linter timed out after %s", f.timeout())
		return gatetype.ValidationResult{
			Validator:  f.Name(),
			Status:     gatetype.StatusError,
			DurationMS: time.Since(start).Milliseconds(),
			Error:      gerr.Error(),
		}
	}

	issues, warn := ad.ParseDiagnostics([]byte(res.Stdout), f.ProjectRoot)
	result := gatetype.ValidationResult{
		Validator:  f.Name(),
		Status:     statusFor(issues),
		Issues:     issues,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if warn != "" {
		result.Error = warn
	}
	return result
}

func (f *FormatterLinter) timeout() time.Duration {
	if f.Timeout > 0 {
		return f.Timeout
	}
	return 5 * time.Second
}

func (f *FormatterLinter) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

const binaryTool = "formatterlint"

// TypeChecker loads the project's type-checker config and reports
// diagnostics for a single file, marking only a narrow allow-list of
// mechanical issues as fixable (spec §4.4 "Type-checker validator").
type TypeChecker struct {
	ProjectRoot string
	Cfg         config.TypeCheckerConfig
	Timeout     time.Duration
	Logger      *slog.Logger
}

func (t *TypeChecker) Name() string  { return "type-checker" }
func (t *TypeChecker) Enabled() bool { return t.Cfg.Enabled }

// safeMechanicalFixes is the allow-list of type-checker diagnostics treated
// as fixable (spec §4.4): missing semicolons, unused-import removal,
// dropping unused locals.
var safeMechanicalFixes = []string{"missing semicolon", "unused import", "unused variable", "unused local"}

func (t *TypeChecker) Validate(ctx context.Context, file gatetype.FileRecord) gatetype.ValidationResult {
	start := time.Now()
	logger := t.logger()

	configPath := t.Cfg.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(t.ProjectRoot, "tsconfig.json")
	}
	if _, err := os.Stat(configPath); err != nil {
		gerr := gateerr.New(gateerr.ErrConfigPathMissing, err).WithContext("path", configPath)
		logger.Info("type-checker config not found, skipping", "path", configPath)
		return gatetype.ValidationResult{
			Validator:  t.Name(),
			Status:     gatetype.StatusSuccess,
			DurationMS: time.Since(start).Milliseconds(),
			Error:      gerr.Error(),
		}
	}

	argv := []string{"--noEmit", "--pretty", "false", "--project", configPath}
	res, err := procrunner.Run(ctx, t.timeout(), "typechecker", argv...)
	if err != nil {
		if isExecNotFound(err) {
			gerr := gateerr.New(gateerr.ErrToolNotFound, err).WithContext("path", file.Path)
			logger.Info("type-checker binary not found, skipping", "error", gerr.Error())
			return gatetype.ValidationResult{
				Validator:  t.Name(),
				Status:     gatetype.StatusSuccess,
				DurationMS: time.Since(start).Milliseconds(),
				Error:      gerr.Error(),
			}
		}
		gerr := gateerr.New(gateerr.ErrSpawnFailed, err).WithContext("path", file.Path)
		return gatetype.ValidationResult{
			Validator:  t.Name(),
			Status:     gatetype.StatusError,
			DurationMS: time.Since(start).Milliseconds(),
			Error:      gerr.Error(),
		}
	}
	if res.TimedOut {
		gerr := gateerr.Newf(gateerr.ErrValidatorTimeout, "type-checker timed out after %s", t.timeout())
		return gatetype.ValidationResult{
			Validator:  t.Name(),
			Status:     gatetype.StatusError,
			DurationMS: time.Since(start).Milliseconds(),
			Error:      gerr.Error(),
		}
	}

	issues := diagnosticsForFile(res.Stdout, file.Path, t.ProjectRoot)
	for i := range issues {
		issues[i].Fixable = isMechanicalFix(issues[i].Message)
	}

	return gatetype.ValidationResult{
		Validator:  t.Name(),
		Status:     statusFor(issues),
		Issues:     issues,
		DurationMS: time.Since(start).Milliseconds(),
	}
}

func (t *TypeChecker) timeout() time.Duration {
	if t.Timeout > 0 {
		return t.Timeout
	}
	return 5 * time.Second
}

func (t *TypeChecker) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

func isMechanicalFix(message string) bool {
	for _, allow := range safeMechanicalFixes {
		if containsFold(message, allow) {
			return true
		}
	}
	return false
}

func statusFor(issues []gatetype.Issue) gatetype.Status {
	for _, i := range issues {
		if i.Severity == gatetype.SeverityError {
			return gatetype.StatusError
		}
	}
	if len(issues) > 0 {
		return gatetype.StatusWarning
	}
	return gatetype.StatusSuccess
}
