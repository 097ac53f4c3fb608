package toolversion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentgate/qualitygate/internal/config"
)

func TestDetect_ConfigOverrideWins(t *testing.T) {
	ClearCache()
	dir := t.TempDir()

	v, source := Detect(context.Background(), dir, "some-unprobeable-tool-xyz", config.Version1x)
	if source != SourceConfig {
		t.Fatalf("source = %v, want %v", source, SourceConfig)
	}
	if v.Major != 1 {
		t.Errorf("Major = %d, want 1", v.Major)
	}
}

func TestDetect_ManifestBeatsProbe(t *testing.T) {
	ClearCache()
	dir := t.TempDir()
	manifest := `{"devDependencies": {"sometool": "^2.4.1"}}`
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}

	v, source := Detect(context.Background(), dir, "sometool", config.VersionAuto)
	if source != SourceManifest {
		t.Fatalf("source = %v, want %v", source, SourceManifest)
	}
	if v != (Version{Major: 2, Minor: 4, Patch: 1}) {
		t.Errorf("version = %v, want 2.4.1", v)
	}
}

func TestDetect_CacheIsHonoredWithinTTL(t *testing.T) {
	ClearCache()
	dir := t.TempDir()

	v1, _ := Detect(context.Background(), dir, "toolname-cache-test", config.Version1x)
	// Change override; cached entry should still win since TTL hasn't elapsed.
	v2, source := Detect(context.Background(), dir, "toolname-cache-test", config.Version2x)
	if v1 != v2 {
		t.Errorf("expected cached version to be reused, got %v then %v", v1, v2)
	}
	if source != SourceConfig {
		t.Errorf("source = %v, want %v", source, SourceConfig)
	}
}

func TestDetect_FallsBackToDefault(t *testing.T) {
	ClearCache()
	dir := t.TempDir()

	v, source := Detect(context.Background(), dir, "definitely-not-a-real-binary-xyz", config.VersionAuto)
	if source != SourceDefault {
		t.Fatalf("source = %v, want %v", source, SourceDefault)
	}
	if v != Default {
		t.Errorf("version = %v, want %v", v, Default)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		raw  string
		want Version
		ok   bool
	}{
		{"^1.2.3", Version{1, 2, 3}, true},
		{"~2.0.0", Version{2, 0, 0}, true},
		{">=3.1", Version{3, 1, 0}, true},
		{"4", Version{4, 0, 0}, true},
		{"", Zero, false},
		{"not-a-version", Zero, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseRange(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVersion_String(t *testing.T) {
	v := Version{Major: 1, Minor: 2, Patch: 3}
	if v.String() != "1.2.3" {
		t.Errorf("String() = %q, want %q", v.String(), "1.2.3")
	}
}

func TestClearCache_ForcesRedetection(t *testing.T) {
	ClearCache()
	dir := t.TempDir()

	Detect(context.Background(), dir, "toolname-clear-test", config.Version1x)
	ClearCache()
	v, _ := Detect(context.Background(), dir, "toolname-clear-test", config.Version2x)
	if v.Major != 2 {
		t.Errorf("after ClearCache, Major = %d, want 2", v.Major)
	}
}
