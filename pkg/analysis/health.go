package analysis

import (
	"time"

	"jobtree/pkg/model"
)

// Health classifies how a job is doing right now
type Health string

const (
	HealthOK        Health = "ok"        // Terminal success or making normal progress
	HealthStale     Health = "stale"     // Pending longer than the stale threshold
	HealthExpired   Health = "expired"   // Past expires_at without finishing
	HealthExhausted Health = "exhausted" // Failed with no retries left
	HealthRetrying  Health = "retrying"  // Failed but will be attempted again
)

// Default thresholds for health classification
const (
	// DefaultStaleThreshold is how long a job may sit pending before it
	// counts as stuck.
	DefaultStaleThreshold = 10 * time.Minute

	// DefaultRunningThreshold is how long a job may run before its
	// runner is presumed dead.
	DefaultRunningThreshold = 1 * time.Hour
)

// HealthConfig configures health classification
type HealthConfig struct {
	StaleThreshold   time.Duration `json:"stale_threshold"`
	RunningThreshold time.Duration `json:"running_threshold"`
}

// DefaultHealthConfig returns sensible defaults
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		StaleThreshold:   DefaultStaleThreshold,
		RunningThreshold: DefaultRunningThreshold,
	}
}

// Classify determines a job's health at the given instant. Expiry wins
// over staleness: a job that is both past its deadline and stuck in
// pending reports as expired.
func Classify(j *model.Job, now time.Time, cfg HealthConfig) Health {
	if j.ExpiresAt != nil && now.After(*j.ExpiresAt) && !j.Status.IsTerminal() {
		return HealthExpired
	}

	switch j.Status {
	case model.StatusPending:
		if j.Age(now) > cfg.StaleThreshold {
			return HealthStale
		}
	case model.StatusRunning:
		if j.StartedAt != nil && now.Sub(*j.StartedAt) > cfg.RunningThreshold {
			return HealthStale
		}
	case model.StatusFailed:
		if j.Attempt < j.MaxRetries {
			return HealthRetrying
		}
		return HealthExhausted
	}

	return HealthOK
}

// Stale returns jobs classified as stale under cfg.
func Stale(jobs []model.Job, now time.Time, cfg HealthConfig) []model.Job {
	var out []model.Job
	for _, j := range jobs {
		if Classify(&j, now, cfg) == HealthStale {
			out = append(out, j)
		}
	}
	return out
}

// Expired returns jobs past their deadline that never reached a
// terminal state.
func Expired(jobs []model.Job, now time.Time) []model.Job {
	var out []model.Job
	for _, j := range jobs {
		if j.ExpiresAt != nil && now.After(*j.ExpiresAt) && !j.Status.IsTerminal() {
			out = append(out, j)
		}
	}
	return out
}
