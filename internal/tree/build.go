// Package tree assembles a flat process listing into a rooted forest.
package tree

import (
	"sort"
	"time"

	"github.com/Dicklesworthstone/proctree/internal/model"
)

// Build turns one enumeration's records into a Snapshot. It never fails:
// duplicate pids keep their first occurrence, records whose parent is not in
// the listing become roots, and a record that would close a parent cycle is
// promoted to a root instead of being attached.
func Build(records []model.ProcessRecord) model.Snapshot {
	stats := model.Stats{Records: len(records)}

	kept := make([]model.ProcessRecord, 0, len(records))
	index := make(map[int32]int, len(records))
	for _, r := range records {
		if _, dup := index[r.PID]; dup {
			stats.Duplicates++
			continue
		}
		index[r.PID] = len(kept)
		kept = append(kept, r)
	}
	stats.Processes = len(kept)

	// parent[i] is the index of the node i hangs under, -1 for roots.
	parent := make([]int, len(kept))
	for i := range parent {
		parent[i] = -1
	}
	for i, r := range kept {
		p, ok := index[r.PPID]
		if !ok {
			continue
		}
		if closesCycle(parent, i, p) {
			stats.Promoted++
			continue
		}
		parent[i] = p
	}

	nodes := make([]*model.TreeNode, len(kept))
	for i := range kept {
		nodes[i] = &model.TreeNode{ProcessRecord: kept[i]}
	}
	var roots []*model.TreeNode
	for i, n := range nodes {
		if parent[i] < 0 {
			roots = append(roots, n)
			continue
		}
		pn := nodes[parent[i]]
		pn.Children = append(pn.Children, n)
	}
	sort.SliceStable(roots, func(a, b int) bool { return roots[a].PID < roots[b].PID })

	return model.Snapshot{
		TakenAt: time.Now(),
		Roots:   roots,
		Stats:   stats,
	}
}

// closesCycle reports whether hanging child under p would make child its own
// ancestor. Only links already made are followed; they always form a forest,
// so the walk terminates.
func closesCycle(parent []int, child, p int) bool {
	for cur := p; cur >= 0; cur = parent[cur] {
		if cur == child {
			return true
		}
	}
	return false
}
