package analysis

import (
	"time"

	"jobtree/pkg/model"
)

// GroupRollup aggregates job counts for one group. Direct counts cover
// jobs filed under the group itself; Subtree counts include every
// descendant group as well.
type GroupRollup struct {
	Direct        int                  `json:"direct"`
	Subtree       int                  `json:"subtree"`
	ByStatus      map[model.Status]int `json:"by_status"`
	StaleCount    int                  `json:"stale_count"`
	NewestCreated time.Time            `json:"newest_created"`
}

// BuildChildrenMap indexes groups by parent ID for descendant walks.
// Parent references to unknown groups are treated as absent.
func BuildChildrenMap(groups []model.Group) map[string][]string {
	known := make(map[string]bool, len(groups))
	for _, g := range groups {
		known[g.ID] = true
	}

	children := make(map[string][]string)
	for _, g := range groups {
		if g.Parent == nil || !known[g.Parent.ID] {
			continue
		}
		children[g.Parent.ID] = append(children[g.Parent.ID], g.ID)
	}
	return children
}

// RollupJobs computes per-group job aggregates across a snapshot.
// Every group gets an entry, even with no jobs. Jobs pointing at an
// unknown group are counted nowhere.
func RollupJobs(groups []model.Group, jobs []model.Job, now time.Time, cfg HealthConfig) map[string]*GroupRollup {
	rollups := make(map[string]*GroupRollup, len(groups))
	for _, g := range groups {
		rollups[g.ID] = &GroupRollup{ByStatus: make(map[model.Status]int)}
	}

	// Direct counts first.
	for i := range jobs {
		j := &jobs[i]
		r, ok := rollups[j.GroupID]
		if !ok {
			continue
		}
		r.Direct++
		r.ByStatus[j.Status]++
		if Classify(j, now, cfg) == HealthStale {
			r.StaleCount++
		}
		if j.Created.After(r.NewestCreated) {
			r.NewestCreated = j.Created
		}
	}

	// Subtree counts: BFS over descendants from each group. Raw
	// snapshots can contain parent cycles, so track visited IDs.
	children := BuildChildrenMap(groups)
	for _, g := range groups {
		r := rollups[g.ID]
		r.Subtree = r.Direct

		visited := map[string]bool{g.ID: true}
		queue := append([]string(nil), children[g.ID]...)
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			if visited[id] {
				continue
			}
			visited[id] = true
			if child, ok := rollups[id]; ok {
				r.Subtree += child.Direct
			}
			queue = append(queue, children[id]...)
		}
	}

	return rollups
}
