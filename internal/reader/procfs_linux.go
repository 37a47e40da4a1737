//go:build linux

package reader

import (
	"context"
	"sort"

	"github.com/prometheus/procfs"
	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/proctree/internal/model"
)

// DefaultProcRoot is where the kernel's process table is normally mounted.
const DefaultProcRoot = procfs.DefaultMountPoint

// Procfs reads /proc/<pid>/stat and /proc/<pid>/status directly.
type Procfs struct {
	Root    string
	Workers int
}

func NewProcfs(root string, workers int) *Procfs {
	return &Procfs{Root: root, Workers: workers}
}

func (r *Procfs) ReadAll(ctx context.Context) ([]model.ProcessRecord, error) {
	fs, err := procfs.NewFS(r.Root)
	if err != nil {
		return nil, &EnumerationError{Op: "open " + r.Root, Err: err}
	}
	procs, err := fs.AllProcs()
	if err != nil {
		return nil, &EnumerationError{Op: "list " + r.Root, Err: err}
	}
	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })

	slots := make([]*model.ProcessRecord, len(procs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.Workers)
	for i, p := range procs {
		i, p := i, p
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if rec, ok := readProc(p); ok {
				slots[i] = &rec
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, &EnumerationError{Op: "read process details", Err: err}
	}
	return compact(slots), nil
}

// readProc builds a record from stat. A missing or unparsable stat file
// means the process went away. The owner comes from status and is optional.
func readProc(p procfs.Proc) (model.ProcessRecord, bool) {
	stat, err := p.Stat()
	if err != nil {
		return model.ProcessRecord{}, false
	}

	r := model.ProcessRecord{
		PID:     int32(stat.PID),
		PPID:    int32(stat.PPID),
		Name:    stat.Comm,
		State:   model.StateFromCode(stat.State),
		VMSize:  uint64(stat.VirtualMemory()),
		Nice:    int32(stat.Nice),
		CPUTime: uint64(stat.CPUTime()),
	}
	if rss := stat.ResidentMemory(); rss > 0 {
		r.RSS = uint64(rss)
	}
	if status, err := p.NewStatus(); err == nil {
		r.Username = users.name(uint32(status.UIDs[1]))
	}
	return r, true
}
