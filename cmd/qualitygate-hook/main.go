// Command qualitygate-hook is the PostToolUse entrypoint invoked once per
// agent write event (spec §6): it reads the event JSON from stdin, drives
// PostWriteHook, and writes the agent-facing report JSON to stdout.
// Grounded on the teacher's cmd/sdp-guard/main.go exit-code conventions
// (0=clean, 1=warnings, 2=internal error) and its flag-based posture rather
// than cobra's, since this binary has exactly one job and no subcommands.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/agentgate/qualitygate/internal/config"
	"github.com/agentgate/qualitygate/internal/pathlock"
	"github.com/agentgate/qualitygate/internal/present"
	"github.com/agentgate/qualitygate/internal/posthook"
	"github.com/agentgate/qualitygate/internal/validatorcache"
)

// writeEventJSON mirrors the subset of Claude Code's PostToolUse payload
// the gate cares about (spec §6).
type writeEventJSON struct {
	HookEventName string `json:"hook_event_name"`
	ToolName      string `json:"tool_name"`
	ToolInput     struct {
		FilePath string `json:"file_path"`
		Content  string `json:"content"`
		Edits    []struct {
			OldString string `json:"old_string"`
			NewString string `json:"new_string"`
		} `json:"edits"`
	} `json:"tool_input"`
}

// sharedLocks and sharedCache are the path-lock registry and validation
// cache shared by every invocation, so repeated hook invocations within one long-lived process (e.g. under a
// test harness) share the same state PostWriteHook expects (spec §3
// "Ownership").
var (
	sharedLocks = pathlock.NewRegistry()
	sharedCache = validatorcache.New()
)

func main() {
	explain := flag.Bool("explain", false, "append a diagnostic message per validator explaining why it was skipped or degraded")
	flag.Parse()
	os.Exit(run(os.Stdin, os.Stdout, os.Stderr, *explain))
}

func run(stdin io.Reader, stdout, stderr io.Writer, explain bool) int {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	raw, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "qualitygate-hook: failed to read stdin: %v\n", err)
		return 2
	}

	var asAny interface{}
	if err := json.Unmarshal(raw, &asAny); err != nil {
		fmt.Fprintf(stderr, "qualitygate-hook: malformed event JSON: %v\n", err)
		return 2
	}

	if err := validateEvent(asAny); err != nil {
		logger.Warn("event failed schema validation, proceeding best-effort", "error", err)
	}

	var event writeEventJSON
	if err := json.Unmarshal(raw, &event); err != nil {
		fmt.Fprintf(stderr, "qualitygate-hook: malformed event JSON: %v\n", err)
		return 2
	}

	if !isRecognizedTool(event.ToolName) {
		emitNoop(stdout)
		return 0
	}

	projectRoot, err := config.FindProjectRoot()
	if err != nil {
		projectRoot, _ = os.Getwd()
	}

	cfg, err := config.Load(projectRoot)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	hook := &posthook.Hook{
		ProjectRoot: projectRoot,
		Cfg:         cfg,
		Locks:       sharedLocks,
		Cache:       sharedCache,
		Logger:      logger,
		Explain:     explain,
	}

	writeEvent := posthook.WriteEvent{
		HookEventName: event.HookEventName,
		ToolName:      event.ToolName,
		FilePath:      event.ToolInput.FilePath,
		Content:       event.ToolInput.Content,
		HasContent:    event.ToolInput.Content != "" || event.ToolName == "Write",
	}

	report := hook.Run(context.Background(), writeEvent)

	body, err := present.ToJSON(report)
	if err != nil {
		fmt.Fprintf(stderr, "qualitygate-hook: failed to encode report: %v\n", err)
		return 2
	}

	fmt.Fprintln(stdout, string(body))

	if !report.Success {
		return 1
	}
	return 0
}

func isRecognizedTool(name string) bool {
	switch name {
	case "Write", "Edit", "MultiEdit":
		return true
	default:
		return false
	}
}

func emitNoop(stdout io.Writer) {
	fmt.Fprintln(stdout, `{"success":true,"modified":false,"issues_found":0,"issues_fixed":0,"messages":["skipped: unrecognized tool"],"execution_time_ms":0}`)
}
