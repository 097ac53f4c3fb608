package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatchCmd_AcceptsAtMostOnePathArg(t *testing.T) {
	cmd := watchCmd()
	if cmd.Use != "watch [path]" {
		t.Errorf("watchCmd().Use = %q", cmd.Use)
	}
	if err := cmd.Args(cmd, []string{}); err != nil {
		t.Errorf("watchCmd() should accept zero args: %v", err)
	}
	if err := cmd.Args(cmd, []string{"a", "b"}); err == nil {
		t.Error("watchCmd() should reject more than one arg")
	}
}

func TestAddRecursive_SkipsNodeModulesAndGit(t *testing.T) {
	tmpDir := t.TempDir()
	for _, dir := range []string{"src", "node_modules/pkg", ".git/objects"} {
		if err := os.MkdirAll(filepath.Join(tmpDir, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatalf("fsnotify.NewWatcher() = %v", err)
	}
	defer fsw.Close()

	if err := addRecursive(fsw, tmpDir); err != nil {
		t.Fatalf("addRecursive() = %v", err)
	}

	watched := fsw.WatchList()
	for _, w := range watched {
		if filepath.Base(filepath.Dir(w)) == "node_modules" || filepath.Base(w) == "node_modules" ||
			filepath.Base(filepath.Dir(w)) == ".git" || filepath.Base(w) == ".git" {
			t.Errorf("addRecursive() watched node_modules or .git path: %s", w)
		}
	}

	foundSrc := false
	for _, w := range watched {
		if w == filepath.Join(tmpDir, "src") {
			foundSrc = true
		}
	}
	if !foundSrc {
		t.Error("addRecursive() did not watch the src directory")
	}
}

func TestScheduleDebounced_CoalescesRepeatedEvents(t *testing.T) {
	pending := map[string]*time.Timer{}
	events := make(chan string, 8)

	scheduleDebounced(pending, "/a.ts", events)
	scheduleDebounced(pending, "/a.ts", events)
	scheduleDebounced(pending, "/a.ts", events)

	select {
	case p := <-events:
		if p != "/a.ts" {
			t.Errorf("got path %q, want /a.ts", p)
		}
	case <-time.After(debounceWindow * 5):
		t.Fatal("timed out waiting for debounced event")
	}

	select {
	case p := <-events:
		t.Errorf("unexpected second event: %s", p)
	case <-time.After(debounceWindow * 2):
	}
}

func TestScheduleDebounced_DistinctPathsBothFire(t *testing.T) {
	pending := map[string]*time.Timer{}
	events := make(chan string, 8)

	scheduleDebounced(pending, "/a.ts", events)
	scheduleDebounced(pending, "/b.ts", events)

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case p := <-events:
			seen[p] = true
		case <-time.After(debounceWindow * 5):
			t.Fatal("timed out waiting for debounced events")
		}
	}
	if !seen["/a.ts"] || !seen["/b.ts"] {
		t.Errorf("seen = %v, want both /a.ts and /b.ts", seen)
	}
}
