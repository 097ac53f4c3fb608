// Package posthook implements C9 PostWriteHook (spec §4.9): the state
// machine ADMITTED → ENRICHED → VALIDATED → (FIXED → VERIFIED)? → REPORTED
// that wires every other component together behind a catch-all error
// policy. Grounded on the teacher's internal/hooks.InstallWithOptions for
// its "never let a failure escape, log and degrade" posture, and on
// internal/executor/retry.go for the log/slog usage pattern.
package posthook

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/agentgate/qualitygate/internal/adapter"
	"github.com/agentgate/qualitygate/internal/autofix"
	"github.com/agentgate/qualitygate/internal/config"
	"github.com/agentgate/qualitygate/internal/fixplan"
	"github.com/agentgate/qualitygate/internal/fixverify"
	"github.com/agentgate/qualitygate/internal/gatetype"
	"github.com/agentgate/qualitygate/internal/pathlock"
	"github.com/agentgate/qualitygate/internal/patternmatch"
	"github.com/agentgate/qualitygate/internal/toolversion"
	"github.com/agentgate/qualitygate/internal/validator"
	"github.com/agentgate/qualitygate/internal/validatorcache"
)

// Stage names the state machine's position for logging and diagnostics.
type Stage string

const (
	StageAdmitted  Stage = "ADMITTED"
	StageEnriched  Stage = "ENRICHED"
	StageValidated Stage = "VALIDATED"
	StageFixed     Stage = "FIXED"
	StageVerified  Stage = "VERIFIED"
	StageReported  Stage = "REPORTED"
)

// WriteEvent is the inbound agent-write-event (spec §6).
type WriteEvent struct {
	HookEventName string
	ToolName      string
	FilePath      string
	Content       string
	HasContent    bool
}

// Report is the outbound structured result (spec §6).
type Report struct {
	Success         bool
	Modified        bool
	IssuesFound     int
	IssuesFixed     int
	Messages        []string
	ExecutionTimeMS int64
}

// Hook wires every pipeline component behind the admission filter.
type Hook struct {
	ProjectRoot string
	Cfg         *config.Config
	Locks       *pathlock.Registry
	Cache       *validatorcache.Cache
	Logger      *slog.Logger

	// Explain, when true, appends one diagnostic message per validator
	// describing why it was skipped or degraded (supplemented `--explain`
	// flag; purely additive to the messages array, per spec §6).
	Explain bool
}

func (h *Hook) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Run drives one invocation through the full state machine. It never
// panics or returns an error to the caller: every failure degrades to a
// {success:false, modified:false} Report (spec §4.9 closing error policy).
func (h *Hook) Run(ctx context.Context, event WriteEvent) (report Report) {
	start := time.Now()
	logger := h.logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("posthook: recovered from panic", "recover", r)
			report = Report{Success: false, Modified: false, Messages: []string{"internal error during validation"}, ExecutionTimeMS: time.Since(start).Milliseconds()}
		}
	}()

	if h.Cfg == nil || !h.Cfg.Enabled {
		return Report{Success: true, Modified: false, Messages: []string{"quality gate disabled"}, ExecutionTimeMS: time.Since(start).Milliseconds()}
	}

	stage := StageAdmitted
	relPath := config.RelativeToRoot(h.ProjectRoot, event.FilePath)
	if !patternmatch.Admit(relPath, h.Cfg.Include, h.Cfg.Exclude) {
		logger.Debug("posthook: skipped, pattern mismatch", "path", relPath)
		return Report{Success: true, Modified: false, Messages: []string{"skipped: file excluded by pattern"}, ExecutionTimeMS: time.Since(start).Milliseconds()}
	}

	stage = StageEnriched
	file, err := h.enrich(event)
	if err != nil {
		logger.Warn("posthook: enrichment failed", "stage", stage, "error", err)
		return Report{Success: false, Modified: false, Messages: []string{"failed to read file contents"}, ExecutionTimeMS: time.Since(start).Milliseconds()}
	}

	stage = StageValidated
	manager := h.buildManager(file)
	timeout := h.Cfg.TimeoutDuration()

	key := &validatorcache.Key{
		Path:        file.Path,
		ContentHash: validatorcache.HashContent(file.Content),
		ToolVersion: h.detectedToolVersion(ctx),
	}
	response := manager.Run(ctx, file, timeout, key)

	issuesFound := response.Summary.Total
	messages := []string{}
	if !response.Success {
		messages = append(messages, "validation found issues")
	}
	if h.Explain {
		messages = append(messages, explainMessages(response)...)
	}

	if !h.Cfg.AutoFix.Enabled || !anyFixable(response.AllIssues()) {
		return Report{
			Success:         response.Success,
			Modified:        false,
			IssuesFound:     issuesFound,
			IssuesFixed:     0,
			Messages:        messages,
			ExecutionTimeMS: time.Since(start).Milliseconds(),
		}
	}

	stage = StageFixed
	fixResult := h.fix(ctx, file, response.AllIssues(), timeout)

	if !fixResult.Modified {
		messages = append(messages, fixMessages(fixResult)...)
		return Report{
			Success:         fixResult.Success && response.Success,
			Modified:        false,
			IssuesFound:     issuesFound,
			IssuesFixed:     0,
			Messages:        messages,
			ExecutionTimeMS: time.Since(start).Milliseconds(),
		}
	}

	stage = StageVerified
	verifier := &fixverify.Verifier{Manager: manager, Timeout: timeout}
	verifyResult := verifier.Verify(ctx, file, response.AllIssues(), file.Content, fixResult.Content)

	stage = StageReported
	messages = append(messages, verifyMessages(verifyResult)...)

	return Report{
		Success:         verifyResult.Success,
		Modified:        verifyResult.Integrity.Passed(),
		IssuesFound:     issuesFound,
		IssuesFixed:     len(verifyResult.Comparison.Resolved),
		Messages:        messages,
		ExecutionTimeMS: time.Since(start).Milliseconds(),
	}
}

func (h *Hook) enrich(event WriteEvent) (gatetype.FileRecord, error) {
	file := gatetype.FileRecord{
		Path:      event.FilePath,
		Extension: filepath.Ext(event.FilePath),
	}

	if event.HasContent {
		file.Content = []byte(event.Content)
		file.Exists = true
		file.Size = int64(len(file.Content))
		return file, nil
	}

	info, err := os.Stat(event.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			file.Exists = false
			return file, nil
		}
		return file, err
	}

	content, err := os.ReadFile(event.FilePath)
	if err != nil {
		return file, err
	}

	file.Content = content
	file.Exists = true
	file.Size = info.Size()
	file.LastModified = info.ModTime().Unix()
	return file, nil
}

func (h *Hook) buildManager(file gatetype.FileRecord) *validator.Manager {
	formatterLinter := &validator.FormatterLinter{
		ProjectRoot: h.ProjectRoot,
		Cfg:         h.Cfg.Validators.FormatterLinter,
		Timeout:     h.Cfg.TimeoutDuration(),
	}
	typeChecker := &validator.TypeChecker{
		ProjectRoot: h.ProjectRoot,
		Cfg:         h.Cfg.Validators.TypeChecker,
		Timeout:     h.Cfg.TimeoutDuration(),
	}
	return validator.NewManager(h.Cache, formatterLinter, typeChecker)
}

func (h *Hook) detectedToolVersion(ctx context.Context) string {
	v, _ := toolversion.Detect(ctx, h.ProjectRoot, "formatterlint", h.Cfg.Validators.FormatterLinter.Version)
	return v.String()
}

func (h *Hook) fix(ctx context.Context, file gatetype.FileRecord, issues []gatetype.Issue, timeout time.Duration) autofix.Result {
	descriptors := make([]fixplan.FixDescriptor, 0, len(issues))
	for _, issue := range issues {
		if !issue.Fixable {
			continue
		}
		descriptors = append(descriptors, fixplan.ClassifyIssue(issue, false))
	}

	plan := fixplan.Resolve(descriptors)

	version, _ := toolversion.Detect(ctx, h.ProjectRoot, "formatterlint", h.Cfg.Validators.FormatterLinter.Version)
	engine := &autofix.Engine{
		Adapter:     adapter.ForVersion(version),
		Locks:       h.Locks,
		Timeout:     timeout,
		MaxAttempts: h.Cfg.MaxFixAttempts(),
	}

	return engine.Apply(ctx, file.Path, file.Content, plan, len(issues))
}

// explainMessages renders one diagnostic string per validator that reported
// a skip/degrade note, for the supplemented --explain CLI mode.
func explainMessages(response gatetype.ValidationResponse) []string {
	var messages []string
	for _, r := range response.Results {
		if r.Error != "" {
			messages = append(messages, r.Validator+": "+r.Error)
		}
	}
	return messages
}

func anyFixable(issues []gatetype.Issue) bool {
	for _, i := range issues {
		if i.Fixable {
			return true
		}
	}
	return false
}

func fixMessages(result autofix.Result) []string {
	if !result.Success {
		return append([]string{"auto-fix failed, no changes applied"}, result.Errors...)
	}
	return []string{"no fixable issues applied"}
}

func verifyMessages(result fixverify.Result) []string {
	messages := append([]string{}, result.Warnings...)
	messages = append(messages, "fix effectiveness: "+string(result.Effectiveness))
	return messages
}
