package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"jobtree/pkg/model"
)

// Snapshot is a point-in-time view of the job system: the group
// hierarchy records plus the jobs attached to them.
type Snapshot struct {
	Groups []model.Group
	Jobs   []model.Job
}

// LoadSnapshot reads groups and jobs from the .jobtree directory under
// root. When a jobs.db file exists it takes precedence over the JSONL
// files; otherwise both JSONL files are loaded concurrently. A missing
// jobs file is not an error; a snapshot with only groups is valid.
func LoadSnapshot(ctx context.Context, root string) (*Snapshot, error) {
	dir := Dir(root)
	dbPath := filepath.Join(dir, DBFile)

	if _, err := os.Stat(dbPath); err == nil {
		return loadSnapshotDB(dbPath)
	}

	snap := &Snapshot{}
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		groups, err := LoadGroups(root)
		if err != nil {
			return fmt.Errorf("load groups: %w", err)
		}
		snap.Groups = groups
		return nil
	})

	g.Go(func() error {
		jobsPath := filepath.Join(dir, JobsFile)
		if _, err := os.Stat(jobsPath); os.IsNotExist(err) {
			return nil
		}
		jobs, err := LoadJobs(root)
		if err != nil {
			return fmt.Errorf("load jobs: %w", err)
		}
		snap.Jobs = jobs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func loadSnapshotDB(dbPath string) (*Snapshot, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	groups, err := db.Groups()
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	jobs, err := db.Jobs("")
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	return &Snapshot{Groups: groups, Jobs: jobs}, nil
}
