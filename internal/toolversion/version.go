// Package toolversion implements C1 VersionDetector (spec §4.1): detect an
// external tool's version from a pinned config override, then the workspace
// package manifest, then a CLI probe, else a hard default — with a 60s TTL
// process cache. Grounded on the teacher's internal/quality.Checker project
// type detection (stat-then-fallback cascade) and internal/executor's
// subprocess-probe pattern, generalized to a three-source priority chain.
package toolversion

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agentgate/qualitygate/internal/config"
	"github.com/agentgate/qualitygate/internal/procrunner"
)

// Source records where a detected version came from (spec §3 VersionCacheEntry).
type Source string

const (
	SourceManifest Source = "manifest"
	SourceCLI      Source = "cli"
	SourceConfig   Source = "config"
	SourceDefault  Source = "default"
)

// Version is a semantic version triple.
type Version struct {
	Major, Minor, Patch int
}

// String renders "major.minor.patch".
func (v Version) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
}

// Zero is the malformed-version sentinel (spec §4.1 "malformed version
// strings yield 0.0.0 rather than throwing").
var Zero = Version{}

// Default is returned when no source can determine a version (spec §4.1).
var Default = Version{Major: 2, Minor: 0, Patch: 0}

const ttl = 60 * time.Second

type cacheEntry struct {
	version    Version
	source     Source
	capturedAt time.Time
}

var (
	mu    sync.Mutex
	cache = map[string]cacheEntry{}
)

// ClearCache empties the process-wide version cache (spec §3: "manually clearable").
func ClearCache() {
	mu.Lock()
	defer mu.Unlock()
	cache = map[string]cacheEntry{}
}

// Detect returns toolName's version and its provenance, consulting the
// 60s TTL cache first. configOverride pins a major ("1.x"/"2.x") or is
// config.VersionAuto.
func Detect(ctx context.Context, projectRoot, toolName string, configOverride config.VersionPin) (Version, Source) {
	mu.Lock()
	if entry, ok := cache[toolName]; ok && time.Since(entry.capturedAt) < ttl {
		mu.Unlock()
		return entry.version, entry.source
	}
	mu.Unlock()

	version, source := detectUncached(ctx, projectRoot, toolName, configOverride)

	mu.Lock()
	cache[toolName] = cacheEntry{version: version, source: source, capturedAt: time.Now()}
	mu.Unlock()

	return version, source
}

func detectUncached(ctx context.Context, projectRoot, toolName string, configOverride config.VersionPin) (Version, Source) {
	if v, ok := fromConfigOverride(configOverride); ok {
		return v, SourceConfig
	}
	if v, ok := fromManifest(projectRoot, toolName); ok {
		return v, SourceManifest
	}
	if v, ok := fromCLIProbe(ctx, toolName); ok {
		return v, SourceCLI
	}
	return Default, SourceDefault
}

func fromConfigOverride(pin config.VersionPin) (Version, bool) {
	switch pin {
	case config.Version1x:
		return Version{Major: 1}, true
	case config.Version2x:
		return Version{Major: 2}, true
	default:
		return Zero, false
	}
}

type packageManifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func fromManifest(projectRoot, toolName string) (Version, bool) {
	data, err := os.ReadFile(filepath.Join(projectRoot, "package.json"))
	if err != nil {
		return Zero, false
	}

	var manifest packageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Zero, false
	}

	raw, ok := manifest.Dependencies[toolName]
	if !ok {
		raw, ok = manifest.DevDependencies[toolName]
	}
	if !ok {
		return Zero, false
	}

	v, ok := ParseRange(raw)
	if !ok {
		return Zero, true // present but malformed: caller treats Zero as "found, unparseable"
	}
	return v, true
}

var rangePrefix = regexp.MustCompile(`^[\^~>=<\s]*`)

// ParseRange strips a semver range prefix (^, ~, >=, ...) and parses the
// remainder, accepting partial versions like "1" -> 1.0.0 (spec §4.1).
func ParseRange(raw string) (Version, bool) {
	raw = rangePrefix.ReplaceAllString(strings.TrimSpace(raw), "")
	if raw == "" {
		return Zero, false
	}
	parts := strings.SplitN(raw, ".", 3)

	nums := make([]int, 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			if i == 0 {
				return Zero, false
			}
			break
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, true
}

var versionOutput = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

// probeTimeout bounds each candidate command (spec §4.1: "5-second timeout").
const probeTimeout = 5 * time.Second

func fromCLIProbe(ctx context.Context, toolName string) (Version, bool) {
	candidates := [][]string{
		{toolName, "--version"},
		{"npx", toolName, "--version"},
		{"npx", "@" + toolName + "/cli", "--version"},
	}

	for _, argv := range candidates {
		res, err := procrunner.Run(ctx, probeTimeout, argv[0], argv[1:]...)
		if err != nil || res.TimedOut {
			continue
		}
		if v, ok := parseVersionOutput(res.Stdout + res.Stderr); ok {
			return v, true
		}
	}
	return Zero, false
}

func parseVersionOutput(s string) (Version, bool) {
	m := versionOutput.FindStringSubmatch(s)
	if m == nil {
		return Zero, false
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])
	return Version{Major: major, Minor: minor, Patch: patch}, true
}
