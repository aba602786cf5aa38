package analysis

import (
	"fmt"
	"time"

	"jobtree/pkg/loader"
	"jobtree/pkg/model"
)

// ClearOptions controls which stuck jobs get cleared
type ClearOptions struct {
	DryRun           bool          // Report what would be cleared without writing
	Channel          string        // Restrict to one channel; empty matches all
	Threshold        time.Duration // Pending age considered stuck; zero uses the default
	RunningThreshold time.Duration // Running age considered stuck; zero uses the default
	Now              time.Time     // Classification instant; zero means time.Now
}

// ClearResult reports what a clear pass did (or would do)
type ClearResult struct {
	DryRun  bool        `json:"dry_run"`
	Cleared []model.Job `json:"cleared"`
}

// ClearStuck marks jobs that can no longer make progress as failed:
// pending jobs older than the stale threshold, running jobs past the
// running threshold, and jobs past their expiry deadline. With DryRun
// set it only reports the candidates. The db may be nil during a dry
// run; otherwise each cleared job is written back.
func ClearStuck(db *loader.DB, jobs []model.Job, opts ClearOptions) (ClearResult, error) {
	cfg := DefaultHealthConfig()
	if opts.Threshold > 0 {
		cfg.StaleThreshold = opts.Threshold
	}
	if opts.RunningThreshold > 0 {
		cfg.RunningThreshold = opts.RunningThreshold
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	result := ClearResult{DryRun: opts.DryRun}
	for _, j := range jobs {
		if opts.Channel != "" && j.Channel != opts.Channel {
			continue
		}

		var reason string
		switch Classify(&j, now, cfg) {
		case HealthExpired:
			reason = fmt.Sprintf("cleared: expired at %s", j.ExpiresAt.Format(time.RFC3339))
		case HealthStale:
			if j.Status == model.StatusRunning {
				reason = fmt.Sprintf("cleared: running for %s with no result", runningFor(&j, now).Round(time.Second))
			} else {
				reason = fmt.Sprintf("cleared: stuck in pending for %s", j.Age(now).Round(time.Second))
			}
		default:
			continue
		}

		cleared := j.Clone()
		cleared.Status = model.StatusFailed
		finished := now
		cleared.FinishedAt = &finished
		cleared.LastError = reason

		if !opts.DryRun {
			if db == nil {
				return result, fmt.Errorf("clear stuck: no database to write to")
			}
			if err := db.MarkFailed(&cleared); err != nil {
				return result, fmt.Errorf("mark job %s failed: %w", j.ID, err)
			}
		}
		result.Cleared = append(result.Cleared, cleared)
	}

	return result, nil
}

func runningFor(j *model.Job, now time.Time) time.Duration {
	if j.StartedAt != nil {
		return now.Sub(*j.StartedAt)
	}
	return j.Age(now)
}
