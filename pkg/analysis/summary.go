package analysis

import (
	"sort"
	"time"

	"jobtree/pkg/model"
)

// Summary provides a quick overview of a job snapshot for display
type Summary struct {
	Total         int                  `json:"total"`
	ByStatus      map[model.Status]int `json:"by_status"`
	ByChannel     map[string]int       `json:"by_channel"`
	MostRecent    *model.Job           `json:"most_recent,omitempty"`
	OldestPending *model.Job           `json:"oldest_pending,omitempty"`
}

// Summarize computes status and channel counts over a job snapshot.
// Handles edge cases: nil slice, jobs without a channel.
func Summarize(jobs []model.Job) Summary {
	s := Summary{
		ByStatus:  make(map[model.Status]int),
		ByChannel: make(map[string]int),
	}

	for i := range jobs {
		j := &jobs[i]
		s.Total++
		s.ByStatus[j.Status]++

		channel := j.Channel
		if channel == "" {
			channel = "(none)"
		}
		s.ByChannel[channel]++

		if s.MostRecent == nil || j.Created.After(s.MostRecent.Created) {
			s.MostRecent = j
		}
		if j.Status == model.StatusPending {
			if s.OldestPending == nil || j.Created.Before(s.OldestPending.Created) {
				s.OldestPending = j
			}
		}
	}

	return s
}

// Channels returns the channel names in a summary sorted by job count
// (descending), ties broken alphabetically.
func (s Summary) Channels() []string {
	type channelCount struct {
		name  string
		count int
	}

	var cc []channelCount
	for name, count := range s.ByChannel {
		cc = append(cc, channelCount{name: name, count: count})
	}

	sort.Slice(cc, func(i, j int) bool {
		if cc[i].count != cc[j].count {
			return cc[i].count > cc[j].count
		}
		return cc[i].name < cc[j].name
	})

	result := make([]string, len(cc))
	for i, c := range cc {
		result[i] = c.name
	}
	return result
}

// FindOldPending returns pending jobs created more than maxAge before now,
// oldest first.
func FindOldPending(jobs []model.Job, now time.Time, maxAge time.Duration) []model.Job {
	var old []model.Job
	for _, j := range jobs {
		if j.Status == model.StatusPending && j.Age(now) > maxAge {
			old = append(old, j)
		}
	}
	sort.Slice(old, func(i, k int) bool {
		return old[i].Created.Before(old[k].Created)
	})
	return old
}
