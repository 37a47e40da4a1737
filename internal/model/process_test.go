package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateFromCode(t *testing.T) {
	cases := map[string]State{
		"R":  StateRunning,
		"S":  StateSleeping,
		"D":  StateWaiting,
		"T":  StateStopped,
		"t":  StateStopped,
		"Z":  StateZombie,
		"X":  StateDead,
		"I":  StateIdle,
		"P":  StateIdle,
		"":   StateUnknown,
		"?":  StateUnknown,
		"S+": StateSleeping,
	}
	for code, want := range cases {
		assert.Equal(t, want, StateFromCode(code), "code %q", code)
	}
}

func TestStateFromStatus(t *testing.T) {
	assert.Equal(t, StateRunning, StateFromStatus("running"))
	assert.Equal(t, StateSleeping, StateFromStatus("sleep"))
	assert.Equal(t, StateWaiting, StateFromStatus("blocked"))
	assert.Equal(t, StateStopped, StateFromStatus("stop"))
	assert.Equal(t, StateZombie, StateFromStatus("zombie"))
	assert.Equal(t, StateUnknown, StateFromStatus("daemon"))
}

func TestSnapshotWalk(t *testing.T) {
	s := Snapshot{Roots: []*TreeNode{
		{ProcessRecord: ProcessRecord{PID: 1}, Children: []*TreeNode{
			{ProcessRecord: ProcessRecord{PID: 2, PPID: 1}},
			{ProcessRecord: ProcessRecord{PID: 3, PPID: 1}, Children: []*TreeNode{
				{ProcessRecord: ProcessRecord{PID: 4, PPID: 3}},
			}},
		}},
		{ProcessRecord: ProcessRecord{PID: 9, PPID: 99}},
	}}

	var pids []int32
	var depths []int
	s.Walk(func(n *TreeNode, depth int) bool {
		pids = append(pids, n.PID)
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []int32{1, 2, 3, 4, 9}, pids)
	assert.Equal(t, []int{0, 1, 1, 2, 0}, depths)
	assert.Equal(t, 5, s.Len())

	var seen int
	s.Walk(func(*TreeNode, int) bool {
		seen++
		return seen < 2
	})
	assert.Equal(t, 2, seen)
}
