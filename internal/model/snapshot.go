package model

import "time"

// TreeNode is a process and the processes it parented, in enumeration order.
type TreeNode struct {
	ProcessRecord
	Children []*TreeNode
}

// Stats describes how a Snapshot was assembled from raw records.
type Stats struct {
	Records    int // records handed to the builder
	Processes  int // records kept in the forest
	Duplicates int // records dropped because their pid was already seen
	Promoted   int // records made roots to break a parent cycle
}

// Snapshot is the process forest captured by one enumeration. It is never
// modified after it has been built.
type Snapshot struct {
	TakenAt time.Time
	Roots   []*TreeNode
	Stats   Stats
}

// Walk visits every node depth-first in tree order. Returning false from fn
// stops the walk.
func (s Snapshot) Walk(fn func(n *TreeNode, depth int) bool) {
	for _, r := range s.Roots {
		if !walk(r, 0, fn) {
			return
		}
	}
}

func walk(n *TreeNode, depth int, fn func(*TreeNode, int) bool) bool {
	if !fn(n, depth) {
		return false
	}
	for _, c := range n.Children {
		if !walk(c, depth+1, fn) {
			return false
		}
	}
	return true
}

// Len returns the number of processes in the forest.
func (s Snapshot) Len() int {
	n := 0
	s.Walk(func(*TreeNode, int) bool {
		n++
		return true
	})
	return n
}

// Zero returns an empty snapshot for initialization.
func Zero() Snapshot { return Snapshot{TakenAt: time.Now()} }
