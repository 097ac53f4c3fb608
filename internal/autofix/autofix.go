// Package autofix implements C7 AutoFixEngine (spec §4.7): backup, apply
// bucketed fixes via the adapter's fix command, read back, and roll back on
// error. Grounded on the teacher's internal/executor/retry.go for the
// bounded-attempts subprocess-retry shape and log/slog usage, generalized
// from retrying one command to advancing through priority-ordered buckets.
package autofix

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/agentgate/qualitygate/internal/adapter"
	"github.com/agentgate/qualitygate/internal/fixplan"
	"github.com/agentgate/qualitygate/internal/gateerr"
	"github.com/agentgate/qualitygate/internal/pathlock"
	"github.com/agentgate/qualitygate/internal/procrunner"
)

// Stats are the pre/post counters AutoFixEngine reports; fixedIssues is a
// claimed resolution count, confirmed authoritatively only by FixVerifier
// (spec §4.7 closing note).
type Stats struct {
	TotalIssues     int
	FixedIssues     int
	RemainingIssues int
	DurationMS      int64
	Attempts        int
}

// Result is AutoFixEngine's outcome for one invocation (spec §3 FixResult).
type Result struct {
	Success    bool
	Modified   bool
	Content    []byte
	Stats      Stats
	Errors     []string
	AppliedIDs []string
}

// Engine applies an ordered fix plan to a file, holding a path-level lock
// from the backup write through the fix invocations, read-back and any
// rollback. The lock is released when Apply returns, so a verification run
// that follows Apply is not covered by it.
type Engine struct {
	Adapter     adapter.Adapter
	Locks       *pathlock.Registry
	Timeout     time.Duration
	MaxAttempts int
	Logger      *slog.Logger
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e *Engine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return 5 * time.Second
}

func (e *Engine) maxAttempts() int {
	if e.MaxAttempts > 0 {
		return e.MaxAttempts
	}
	return 3
}

// Apply runs plan's descriptors against path's content in declared bucket
// order (spec §4.7 steps 1-7). originalContent is used verbatim as the
// no-op return value when there is nothing to fix.
func (e *Engine) Apply(ctx context.Context, path string, originalContent []byte, plan fixplan.Plan, totalIssues int) Result {
	if len(plan.Order) == 0 {
		return Result{Success: true, Modified: false, Content: originalContent}
	}

	release := e.Locks.Acquire(path)
	defer release()

	start := time.Now()
	logger := e.logger()

	backupPath := path + ".backup"
	backupWritten := e.writeBackup(backupPath, originalContent, logger)

	buckets := partitionBuckets(plan.Order)

	var errs []string
	var applied []string
	attempts := 0
	bucketsFailed := false

	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		if attempts >= e.maxAttempts() {
			break
		}

		bin, argv := e.Adapter.BuildFixCommand(path, adapter.FixOptions{})
		res, err := procrunner.Run(ctx, e.timeout(), bin, argv...)
		attempts++

		if err != nil || (res.ExitCode != 0 && res.ExitCode != 1) {
			gerr := gateerr.Newf(gateerr.ErrFixCommandFailed, "fix command exited %d for bucket %d", res.ExitCode, i)
			if err != nil {
				gerr = gateerr.Wrap(gateerr.ErrFixCommandFailed, err, "fix command failed to run")
			}
			errs = append(errs, gerr.Error())
			bucketsFailed = true
			break
		}

		for _, d := range bucket {
			applied = append(applied, d.ID)
		}
	}

	current, readErr := os.ReadFile(path)
	if readErr != nil {
		if backupWritten {
			_ = os.WriteFile(path, originalContent, 0644)
		}
		gerr := gateerr.Wrap(gateerr.ErrRollbackFailed, readErr, "catastrophic failure reading back fixed file").WithContext("path", path)
		return Result{
			Success: false,
			Content: originalContent,
			Errors:  append(errs, gerr.Error()),
			Stats:   Stats{TotalIssues: totalIssues, Attempts: attempts, DurationMS: time.Since(start).Milliseconds()},
		}
	}

	result := Result{
		Stats: Stats{
			TotalIssues: totalIssues,
			Attempts:    attempts,
			DurationMS:  time.Since(start).Milliseconds(),
		},
	}

	if bucketsFailed {
		if err := os.WriteFile(path, originalContent, 0644); err != nil {
			logger.Warn("autofix: rollback write failed", "path", path, "error", err)
		}
		result.Success = false
		result.Modified = false
		result.Content = originalContent
		result.Errors = errs
	} else {
		result.Success = true
		result.Content = current
		result.Modified = string(current) != string(originalContent)
		result.AppliedIDs = applied
		result.Stats.FixedIssues = len(applied)
		if result.Stats.FixedIssues <= totalIssues {
			result.Stats.RemainingIssues = totalIssues - result.Stats.FixedIssues
		}
	}

	if backupWritten {
		if err := os.Remove(backupPath); err != nil {
			logger.Warn("autofix: failed to delete backup on normal exit", "path", backupPath, "error", err)
		}
	}

	return result
}

func (e *Engine) writeBackup(backupPath string, content []byte, logger *slog.Logger) bool {
	if err := os.WriteFile(backupPath, content, 0644); err != nil {
		logger.Warn("autofix: failed to create backup, continuing without rollback safety net", "path", backupPath, "error", err)
		return false
	}
	return true
}

// partitionBuckets groups plan.Order by category, preserving priority order,
// into the three applied buckets (spec §4.7 step 2). Other/unsafe
// descriptors never reach here since Resolve already drops unsafe, and
// "other" issues are not adapter-fixable so they carry no bucket.
func partitionBuckets(order []fixplan.FixDescriptor) [][]fixplan.FixDescriptor {
	buckets := map[fixplan.Category][]fixplan.FixDescriptor{}
	for _, d := range order {
		buckets[d.Category] = append(buckets[d.Category], d)
	}
	return [][]fixplan.FixDescriptor{
		buckets[fixplan.CategoryFormatting],
		buckets[fixplan.CategoryImports],
		buckets[fixplan.CategorySafeLint],
	}
}
