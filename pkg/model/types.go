package model

import (
	"fmt"
	"time"
)

// Group represents an organizational unit that jobs are filed under.
// Groups form a hierarchy through the optional Parent reference.
type Group struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Kind      string     `json:"kind,omitempty"`
	Parent    *GroupRef  `json:"parent,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// GroupRef is an embedded reference to a parent group. Only ID is
// guaranteed; Name and Kind are display hints and may be stale or absent.
type GroupRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Kind string `json:"kind,omitempty"`
}

// Clone creates a deep copy of the group
func (g Group) Clone() Group {
	clone := g
	if g.Parent != nil {
		v := *g.Parent
		clone.Parent = &v
	}
	if g.UpdatedAt != nil {
		v := *g.UpdatedAt
		clone.UpdatedAt = &v
	}
	return clone
}

// Validate checks if the group data is logically valid
func (g *Group) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("group ID cannot be empty")
	}
	if g.Parent != nil && g.Parent.ID == "" {
		return fmt.Errorf("group %s has a parent reference without an ID", g.ID)
	}
	return nil
}

// Job represents one unit of background work owned by a group.
type Job struct {
	ID         string     `json:"id"`
	GroupID    string     `json:"group_id"`
	Channel    string     `json:"channel"`
	Func       string     `json:"func,omitempty"`
	Status     Status     `json:"status"`
	Attempt    int        `json:"attempt"`
	MaxRetries int        `json:"max_retries"`
	RunnerID   string     `json:"runner_id,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
	Payload    string     `json:"payload,omitempty"`
	Created    time.Time  `json:"created"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// Clone creates a deep copy of the job
func (j Job) Clone() Job {
	clone := j
	if j.StartedAt != nil {
		v := *j.StartedAt
		clone.StartedAt = &v
	}
	if j.FinishedAt != nil {
		v := *j.FinishedAt
		clone.FinishedAt = &v
	}
	if j.ExpiresAt != nil {
		v := *j.ExpiresAt
		clone.ExpiresAt = &v
	}
	return clone
}

// Validate checks if the job data is logically valid
func (j *Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job ID cannot be empty")
	}
	if !j.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", j.Status)
	}
	if j.FinishedAt != nil && j.StartedAt != nil && j.FinishedAt.Before(*j.StartedAt) {
		return fmt.Errorf("finished_at (%v) cannot be before started_at (%v)", j.FinishedAt, j.StartedAt)
	}
	return nil
}

// Age returns how long the job has existed relative to now.
func (j *Job) Age(now time.Time) time.Duration {
	return now.Sub(j.Created)
}

// Status represents the queue state of a job
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsValid returns true if the status is a recognized value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if the job can no longer make progress
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsActive returns true if the job is waiting or running
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusRunning
}
