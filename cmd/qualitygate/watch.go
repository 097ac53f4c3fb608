package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/agentgate/qualitygate/internal/config"
	"github.com/agentgate/qualitygate/internal/pathlock"
	"github.com/agentgate/qualitygate/internal/patternmatch"
	"github.com/agentgate/qualitygate/internal/posthook"
	"github.com/agentgate/qualitygate/internal/present"
	"github.com/agentgate/qualitygate/internal/validatorcache"
)

// debounceWindow coalesces the burst of events an editor's save produces
// into a single run, mirroring the teacher's QualityWatcher debounce
// interval (internal/watcher/quality_watcher.go DebounceInterval).
const debounceWindow = 150 * time.Millisecond

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path]",
		Short: "Run the quality gate against files as they change, for local development",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runWatch(cmd, path)
		},
	}
}

func runWatch(cmd *cobra.Command, root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := addRecursive(fsw, absRoot); err != nil {
		return err
	}

	hook := &posthook.Hook{
		ProjectRoot: absRoot,
		Cfg:         cfg,
		Locks:       pathlock.NewRegistry(),
		Cache:       validatorcache.New(),
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s for changes. Press Ctrl+C to stop.\n", absRoot)

	pending := map[string]*time.Timer{}
	events := make(chan string, 64)

	for {
		select {
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			scheduleDebounced(pending, ev.Name, events)
		case errEvent, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", errEvent)
		case path := <-events:
			relPath := config.RelativeToRoot(absRoot, path)
			if !patternmatch.Admit(relPath, cfg.Include, cfg.Exclude) {
				continue
			}
			report := hook.Run(context.Background(), posthook.WriteEvent{FilePath: path})
			body, err := present.ToJSON(report)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "encode error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "%s: %s\n", relPath, string(body))
		}
	}
}

func scheduleDebounced(pending map[string]*time.Timer, path string, events chan<- string) {
	if t, ok := pending[path]; ok {
		t.Stop()
	}
	pending[path] = time.AfterFunc(debounceWindow, func() {
		events <- path
	})
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "node_modules" || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return fsw.Add(path)
		}
		return nil
	})
}
