// ValidatorManager (spec §4.5): cache lookup, then parallel fan-out across
// enabled validators with settled semantics, then aggregation. Grounded on
// the teacher's internal/executor/retry.go for the cancellation-aware
// subprocess-orchestration posture, generalized from a single sequential
// retry loop to an unordered parallel fan-out collected via a WaitGroup.
package validator

import (
	"context"
	"sync"
	"time"

	"github.com/agentgate/qualitygate/internal/gatetype"
	"github.com/agentgate/qualitygate/internal/validatorcache"
)

// Manager runs every enabled Validator against one FileRecord and produces
// a ValidationResponse, consulting and populating the shared cache.
type Manager struct {
	Validators []Validator
	Cache      *validatorcache.Cache
}

// NewManager constructs a Manager over validators in declared order (spec
// §5 "ValidationResult order follows the manager's declared validator order").
func NewManager(cache *validatorcache.Cache, validators ...Validator) *Manager {
	return &Manager{Validators: validators, Cache: cache}
}

// Run executes every enabled validator in parallel under the given
// per-validator timeout, honoring ctx cancellation, and aggregates the
// result. cacheKey, when non-nil, gates a cache lookup/store.
func (m *Manager) Run(ctx context.Context, file gatetype.FileRecord, perValidatorTimeout time.Duration, cacheKey *validatorcache.Key) gatetype.ValidationResponse {
	if m.Cache != nil && cacheKey != nil {
		if cached, ok := m.Cache.Get(*cacheKey); ok {
			clone := cached.Clone()
			clone.Cached = true
			return clone
		}
	}

	response := m.runUncached(ctx, file, perValidatorTimeout)

	if m.Cache != nil && cacheKey != nil {
		m.Cache.Put(*cacheKey, response)
	}
	return response
}

// runUncached performs the parallel fan-out without consulting the cache.
// Run reaches it without any cache lookup or store when cacheKey is nil,
// which is how FixVerifier's re-validation bypasses the cache (spec §4.8
// step 2).
func (m *Manager) runUncached(ctx context.Context, file gatetype.FileRecord, perValidatorTimeout time.Duration) gatetype.ValidationResponse {
	if perValidatorTimeout <= 0 {
		perValidatorTimeout = 5 * time.Second
	}

	enabled := make([]Validator, 0, len(m.Validators))
	for _, v := range m.Validators {
		if v.Enabled() {
			enabled = append(enabled, v)
		}
	}

	results := make([]gatetype.ValidationResult, len(enabled))
	durations := make([]time.Duration, len(enabled))

	start := time.Now()
	var wg sync.WaitGroup
	for i, v := range enabled {
		wg.Add(1)
		go func(i int, v Validator) {
			defer wg.Done()
			taskCtx, cancel := context.WithTimeout(ctx, perValidatorTimeout)
			defer cancel()

			taskStart := time.Now()
			results[i] = v.Validate(taskCtx, file)
			durations[i] = time.Since(taskStart)

			if taskCtx.Err() == context.DeadlineExceeded && results[i].Status != gatetype.StatusError {
				results[i] = gatetype.ValidationResult{
					Validator:  v.Name(),
					Status:     gatetype.StatusError,
					DurationMS: durations[i].Milliseconds(),
					Error:      "validator timed out",
				}
			}
		}(i, v)
	}
	wg.Wait()
	wall := time.Since(start)

	return aggregate(results, durations, wall)
}

func aggregate(results []gatetype.ValidationResult, durations []time.Duration, wall time.Duration) gatetype.ValidationResponse {
	summary := gatetype.Summary{}
	var summedDuration time.Duration

	for i, r := range results {
		summary.Total += len(r.Issues)
		for _, issue := range r.Issues {
			switch issue.Severity {
			case gatetype.SeverityError:
				summary.ErrorCount++
			case gatetype.SeverityWarning:
				summary.WarningCount++
			default:
				summary.InfoCount++
			}
		}
		if r.Status == gatetype.StatusError {
			summary.FailedValidators++
		} else {
			summary.SuccessfulValidators++
		}
		summedDuration += durations[i]
	}

	efficiency := 0.0
	if wall > 0 {
		efficiency = gatetype.Clamp01(float64(summedDuration) / float64(wall))
	}

	success := summary.ErrorCount == 0
	for _, r := range results {
		if r.Status == gatetype.StatusError {
			success = false
		}
	}

	return gatetype.ValidationResponse{
		Success: success,
		Results: results,
		Summary: summary,
		Performance: gatetype.Performance{
			TotalDurationMS:    wall.Milliseconds(),
			ParallelEfficiency: efficiency,
		},
	}
}
