//go:build !linux

package reader

import (
	"context"
	"runtime"

	"github.com/pkg/errors"

	"github.com/Dicklesworthstone/proctree/internal/model"
)

const DefaultProcRoot = "/proc"

// Procfs is only functional on Linux.
type Procfs struct {
	Root    string
	Workers int
}

func NewProcfs(root string, workers int) *Procfs {
	return &Procfs{Root: root, Workers: workers}
}

func (r *Procfs) ReadAll(context.Context) ([]model.ProcessRecord, error) {
	return nil, &EnumerationError{
		Op:  "open " + r.Root,
		Err: errors.Errorf("procfs backend is not available on %s", runtime.GOOS),
	}
}
