package posthook

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentgate/qualitygate/internal/config"
	"github.com/agentgate/qualitygate/internal/pathlock"
)

func newHook(t *testing.T, cfg *config.Config) (*Hook, string) {
	t.Helper()
	dir := t.TempDir()
	return &Hook{
		ProjectRoot: dir,
		Cfg:         cfg,
		Locks:       pathlock.NewRegistry(),
	}, dir
}

func TestRun_DisabledConfigSkipsImmediately(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Enabled = false
	h, dir := newHook(t, cfg)

	report := h.Run(context.Background(), WriteEvent{FilePath: filepath.Join(dir, "a.ts"), Content: "x", HasContent: true})
	if !report.Success || report.Modified {
		t.Errorf("got %+v, want success=true modified=false", report)
	}
}

func TestRun_ExcludedPatternSkipsWithoutSubprocesses(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Exclude = []string{"**/generated/**"}
	h, dir := newHook(t, cfg)

	path := filepath.Join(dir, "generated", "api.ts")
	report := h.Run(context.Background(), WriteEvent{FilePath: path, Content: "const x=1", HasContent: true})

	if !report.Success || report.Modified {
		t.Errorf("got %+v, want success=true modified=false", report)
	}
	if len(report.Messages) == 0 {
		t.Error("expected a skip reason message")
	}
}

func TestRun_MissingFileIsPermitted(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Validators.FormatterLinter.Enabled = false
	cfg.Validators.TypeChecker.Enabled = false
	h, dir := newHook(t, cfg)

	report := h.Run(context.Background(), WriteEvent{FilePath: filepath.Join(dir, "missing.ts")})
	if !report.Success {
		t.Errorf("expected success for an absent file with no enabled validators, got %+v", report)
	}
}

func TestRun_ReadsContentFromDiskWhenNotProvided(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Validators.FormatterLinter.Enabled = false
	cfg.Validators.TypeChecker.Enabled = false
	h, dir := newHook(t, cfg)

	path := filepath.Join(dir, "a.ts")
	if err := os.WriteFile(path, []byte("const x=1"), 0644); err != nil {
		t.Fatal(err)
	}

	report := h.Run(context.Background(), WriteEvent{FilePath: path})
	if !report.Success {
		t.Errorf("expected success, got %+v", report)
	}
}

func TestRun_NoToolsAvailableStillSucceeds(t *testing.T) {
	cfg := config.DefaultConfig()
	h, dir := newHook(t, cfg)

	path := filepath.Join(dir, "a.ts")
	report := h.Run(context.Background(), WriteEvent{FilePath: path, Content: "const x=1", HasContent: true})

	if !report.Success {
		t.Errorf("expected graceful success when external tools are unavailable, got %+v", report)
	}
}

func TestRun_ExplainAddsPerValidatorDiagnostics(t *testing.T) {
	cfg := config.DefaultConfig()
	h, dir := newHook(t, cfg)
	h.Explain = true

	path := filepath.Join(dir, "a.ts")
	report := h.Run(context.Background(), WriteEvent{FilePath: path, Content: "const x=1", HasContent: true})

	if !report.Success {
		t.Fatalf("expected graceful success, got %+v", report)
	}
	if len(report.Messages) == 0 {
		t.Error("expected --explain to surface per-validator skip-reason messages when tools are unavailable")
	}
}

func TestRun_NeverPanicsOnNilConfig(t *testing.T) {
	h := &Hook{ProjectRoot: t.TempDir(), Locks: pathlock.NewRegistry()}
	report := h.Run(context.Background(), WriteEvent{FilePath: "/tmp/a.ts"})
	if !report.Success {
		t.Errorf("expected a nil Config to be treated as disabled, got %+v", report)
	}
}
