package reader

import (
	"context"
	"sort"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/proctree/internal/model"
)

// Gopsutil reads the process table through gopsutil, which covers every
// platform gopsutil supports.
type Gopsutil struct {
	Workers int
}

func NewGopsutil(workers int) *Gopsutil {
	return &Gopsutil{Workers: workers}
}

func (g *Gopsutil) ReadAll(ctx context.Context) ([]model.ProcessRecord, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, &EnumerationError{Op: "list processes", Err: err}
	}
	sort.Slice(procs, func(i, j int) bool { return procs[i].Pid < procs[j].Pid })

	slots := make([]*model.ProcessRecord, len(procs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.Workers)
	for i, p := range procs {
		i, p := i, p
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if r, ok := readGopsutil(ctx, p); ok {
				slots[i] = &r
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, &EnumerationError{Op: "read process details", Err: err}
	}
	return compact(slots), nil
}

// readGopsutil fills one record. Name, parent and state must be readable or
// the process is treated as gone. Times, memory and nice can be denied for
// other users' processes on some platforms; those fall back to zero as long
// as the process is still running.
func readGopsutil(ctx context.Context, p *process.Process) (model.ProcessRecord, bool) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return model.ProcessRecord{}, false
	}
	ppid, err := p.PpidWithContext(ctx)
	if err != nil {
		return model.ProcessRecord{}, false
	}
	status, err := p.StatusWithContext(ctx)
	if err != nil {
		return model.ProcessRecord{}, false
	}

	r := model.ProcessRecord{
		PID:   p.Pid,
		PPID:  ppid,
		Name:  name,
		State: model.StateUnknown,
	}
	if len(status) > 0 {
		r.State = model.StateFromStatus(status[0])
	}

	var denied bool
	if times, err := p.TimesWithContext(ctx); err == nil && times != nil {
		r.CPUTime = uint64(times.User + times.System)
	} else {
		denied = true
	}
	if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		r.VMSize = mem.VMS
		r.RSS = mem.RSS
	} else {
		denied = true
	}
	if nice, err := p.NiceWithContext(ctx); err == nil {
		r.Nice = nice
	} else {
		denied = true
	}
	if denied {
		if running, err := p.IsRunningWithContext(ctx); err != nil || !running {
			return model.ProcessRecord{}, false
		}
	}

	// best-effort
	if username, err := p.UsernameWithContext(ctx); err == nil {
		r.Username = username
	}
	return r, true
}
