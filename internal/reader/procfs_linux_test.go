//go:build linux

package reader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/proctree/internal/model"
)

type fixtureProc struct {
	pid, ppid    int
	comm, state  string
	utime, stime uint64
	nice         int
	vsize        uint64
	rssPages     int64
	uid          int
}

// writeProc lays out /proc/<pid>/stat and status the way the kernel does.
func writeProc(t *testing.T, root string, p fixtureProc) {
	t.Helper()
	dir := filepath.Join(root, fmt.Sprint(p.pid))
	require.NoError(t, os.MkdirAll(dir, 0o755))

	stat := fmt.Sprintf("%d (%s) %s %d %d %d 0 -1 4194560 100 0 0 0 %d %d 0 0 20 %d 1 0 42 %d %d "+
		"18446744073709551615 1 1 0 0 0 0 0 4096 1088 0 0 0 17 0 0 0 0 0 0 0 0 0 0 0 0 0 0\n",
		p.pid, p.comm, p.state, p.ppid, p.pid, p.pid, p.utime, p.stime, p.nice, p.vsize, p.rssPages)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stat"), []byte(stat), 0o644))

	status := fmt.Sprintf("Name:\t%s\nState:\t%s (x)\nTgid:\t%d\nPid:\t%d\nPPid:\t%d\nUid:\t%d\t%d\t%d\t%d\nGid:\t0\t0\t0\t0\n",
		p.comm, p.state, p.pid, p.pid, p.ppid, p.uid, p.uid, p.uid, p.uid)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "status"), []byte(status), 0o644))
}

func TestProcfsReadsFixture(t *testing.T) {
	root := t.TempDir()
	writeProc(t, root, fixtureProc{pid: 1, ppid: 0, comm: "init", state: "S", utime: 250, stime: 150, vsize: 24723456, rssPages: 10})
	writeProc(t, root, fixtureProc{pid: 42, ppid: 1, comm: "my daemon", state: "R", utime: 99, nice: -5, vsize: 4096, rssPages: 1})
	writeProc(t, root, fixtureProc{pid: 7, ppid: 1, comm: "zomb", state: "Z", nice: 19})

	// listed but gone before its stat could be read
	require.NoError(t, os.MkdirAll(filepath.Join(root, "77"), 0o755))
	// garbled stat, treated the same way
	require.NoError(t, os.MkdirAll(filepath.Join(root, "88"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "88", "stat"), []byte("88 (x"), 0o644))
	// not a process
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sys"), 0o755))

	records, err := NewProcfs(root, 2).ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []int32{1, 7, 42}, []int32{records[0].PID, records[1].PID, records[2].PID})

	initRec := records[0]
	assert.Equal(t, "init", initRec.Name)
	assert.Equal(t, int32(0), initRec.PPID)
	assert.Equal(t, model.StateSleeping, initRec.State)
	assert.Equal(t, uint64(24723456), initRec.VMSize)
	assert.Equal(t, uint64(10*os.Getpagesize()), initRec.RSS)
	assert.Equal(t, uint64(4), initRec.CPUTime)
	assert.NotEmpty(t, initRec.Username)

	assert.Equal(t, model.StateZombie, records[1].State)
	assert.Equal(t, int32(19), records[1].Nice)

	daemon := records[2]
	assert.Equal(t, "my daemon", daemon.Name)
	assert.Equal(t, int32(1), daemon.PPID)
	assert.Equal(t, model.StateRunning, daemon.State)
	assert.Equal(t, int32(-5), daemon.Nice)
	assert.Equal(t, uint64(0), daemon.CPUTime)
}

func TestProcfsLive(t *testing.T) {
	if _, err := os.Stat("/proc/self/stat"); err != nil {
		t.Skip("no procfs mounted")
	}
	records, err := NewProcfs(DefaultProcRoot, 4).ReadAll(context.Background())
	require.NoError(t, err)

	self := int32(os.Getpid())
	var found bool
	for _, r := range records {
		if r.PID == self {
			found = true
			assert.Equal(t, int32(os.Getppid()), r.PPID)
		}
	}
	assert.True(t, found)
}
