// Package wire converts snapshots into the nested document served as the
// get_processes response. Field names and the "children" key are a fixed
// contract with clients.
package wire

import (
	"github.com/Dicklesworthstone/proctree/internal/model"
)

// Node is one process in transport form.
type Node struct {
	Name     string `json:"name" yaml:"name"`
	PID      int32  `json:"pid" yaml:"pid"`
	PPID     int32  `json:"ppid" yaml:"ppid"`
	State    string `json:"state" yaml:"state"`
	VMSize   uint64 `json:"vmsize" yaml:"vmsize"`
	Nice     int32  `json:"nice" yaml:"nice"`
	CPUTime  uint64 `json:"cpu_time" yaml:"cpu_time"`
	Username string `json:"username" yaml:"username"`
	RSS      uint64 `json:"rss" yaml:"rss"`
	Children []Node `json:"children" yaml:"children"`
}

// Document is the whole forest, roots first.
type Document struct {
	Children []Node `json:"children" yaml:"children"`
}

// Serialize mirrors the snapshot's ordering exactly. Leaves get an empty,
// non-nil Children slice so they encode as [] rather than null.
func Serialize(s model.Snapshot) Document {
	return Document{Children: nodes(s.Roots)}
}

func nodes(in []*model.TreeNode) []Node {
	out := make([]Node, 0, len(in))
	for _, n := range in {
		out = append(out, Node{
			Name:     n.Name,
			PID:      n.PID,
			PPID:     n.PPID,
			State:    string(n.State),
			VMSize:   n.VMSize,
			Nice:     n.Nice,
			CPUTime:  n.CPUTime,
			Username: n.Username,
			RSS:      n.RSS,
			Children: nodes(n.Children),
		})
	}
	return out
}

// Count returns the number of nodes in the document.
func (d Document) Count() int {
	return count(d.Children)
}

func count(ns []Node) int {
	total := len(ns)
	for _, n := range ns {
		total += count(n.Children)
	}
	return total
}
