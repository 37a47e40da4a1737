// Package reader enumerates the host process table into flat records.
//
// A Reader returns every process it could read in enumeration order. Only a
// failure of the listing as a whole is an error; a process that exits between
// being listed and having its details read is left out of the result.
package reader

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Dicklesworthstone/proctree/internal/model"
)

var log = logrus.WithField("source", "reader")

// Backend names accepted by New.
const (
	BackendGopsutil = "gopsutil"
	BackendProcfs   = "procfs"
)

// Reader lists the processes currently on the host.
type Reader interface {
	ReadAll(ctx context.Context) ([]model.ProcessRecord, error)
}

// Func adapts a plain function to the Reader interface.
type Func func(ctx context.Context) ([]model.ProcessRecord, error)

func (f Func) ReadAll(ctx context.Context) ([]model.ProcessRecord, error) { return f(ctx) }

// EnumerationError reports that the process table could not be listed at all.
type EnumerationError struct {
	Op  string
	Err error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumerate processes: %s: %v", e.Op, e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

// IsEnumerationError reports whether err carries an EnumerationError.
func IsEnumerationError(err error) bool {
	var ee *EnumerationError
	return errors.As(err, &ee)
}

// Options select and tune a backend.
type Options struct {
	Backend  string
	ProcRoot string // procfs mount point, procfs backend only
	Workers  int    // concurrent per-process reads
	Timeout  time.Duration
}

// DefaultWorkers bounds per-process fan-out when Options.Workers is unset.
func DefaultWorkers() int { return runtime.NumCPU() * 2 }

// New builds the Reader described by opts, wrapped in WithTimeout when a
// timeout is set.
func New(opts Options) (Reader, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = DefaultWorkers()
	}

	var r Reader
	switch opts.Backend {
	case "", BackendGopsutil:
		r = NewGopsutil(workers)
	case BackendProcfs:
		root := opts.ProcRoot
		if root == "" {
			root = DefaultProcRoot
		}
		r = NewProcfs(root, workers)
	default:
		return nil, errors.Errorf("unknown reader backend %q", opts.Backend)
	}

	if opts.Timeout > 0 {
		r = WithTimeout(r, opts.Timeout)
	}
	return r, nil
}

// compact drops the slots of processes that vanished mid-read.
func compact(slots []*model.ProcessRecord) []model.ProcessRecord {
	out := make([]model.ProcessRecord, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	if skipped := len(slots) - len(out); skipped > 0 {
		log.WithFields(logrus.Fields{"listed": len(slots), "skipped": skipped}).Debug("processes exited during enumeration")
	}
	return out
}
