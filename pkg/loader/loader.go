// Package loader reads group and job snapshots from a .jobtree data
// directory, in either JSONL or SQLite form.
package loader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"jobtree/pkg/model"
)

// DataDir is the snapshot directory name relative to the project root.
const DataDir = ".jobtree"

// File names inside DataDir.
const (
	GroupsFile = "groups.jsonl"
	JobsFile   = "jobs.jsonl"
	DBFile     = "jobs.db"
)

// Dir resolves the data directory under root. An empty root means the
// current directory.
func Dir(root string) string {
	if root == "" {
		root = "."
	}
	return filepath.Join(root, DataDir)
}

// LoadGroups reads groups from the JSONL snapshot under root.
func LoadGroups(root string) ([]model.Group, error) {
	return LoadGroupsFromFile(filepath.Join(Dir(root), GroupsFile))
}

// LoadGroupsFromFile reads groups directly from a specific JSONL path.
func LoadGroupsFromFile(path string) ([]model.Group, error) {
	var groups []model.Group
	err := readJSONL(path, func(line []byte) {
		var g model.Group
		if err := json.Unmarshal(line, &g); err != nil {
			// Skip malformed lines but continue loading the rest
			return
		}
		groups = append(groups, g)
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// LoadJobs reads jobs from the JSONL snapshot under root.
func LoadJobs(root string) ([]model.Job, error) {
	return LoadJobsFromFile(filepath.Join(Dir(root), JobsFile))
}

// LoadJobsFromFile reads jobs directly from a specific JSONL path.
func LoadJobsFromFile(path string) ([]model.Job, error) {
	var jobs []model.Job
	err := readJSONL(path, func(line []byte) {
		var j model.Job
		if err := json.Unmarshal(line, &j); err != nil {
			return
		}
		jobs = append(jobs, j)
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// readJSONL streams non-empty lines of a JSONL file through fn.
func readJSONL(path string, fn func(line []byte)) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("no snapshot found at %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	// Payloads can be large; raise the line limit well past the default.
	const maxCapacity = 1024 * 1024 * 10 // 10MB
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		fn(line)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading snapshot file: %w", err)
	}
	return nil
}
