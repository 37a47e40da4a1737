package reader

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/proctree/internal/model"
)

func TestNewBackends(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)
	assert.IsType(t, &Gopsutil{}, r)

	r, err = New(Options{Backend: BackendProcfs, ProcRoot: "/nonexistent", Workers: 3})
	require.NoError(t, err)
	require.IsType(t, &Procfs{}, r)
	assert.Equal(t, "/nonexistent", r.(*Procfs).Root)
	assert.Equal(t, 3, r.(*Procfs).Workers)

	r, err = New(Options{Backend: BackendGopsutil, Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &timeoutReader{}, r)

	_, err = New(Options{Backend: "wmi"})
	assert.Error(t, err)
}

func TestIsEnumerationError(t *testing.T) {
	base := &EnumerationError{Op: "list processes", Err: errors.New("permission denied")}
	assert.True(t, IsEnumerationError(base))
	assert.True(t, IsEnumerationError(errors.Wrap(base, "snapshot")))
	assert.False(t, IsEnumerationError(errors.New("other")))
	assert.Contains(t, base.Error(), "permission denied")
}

func TestCompactKeepsOrder(t *testing.T) {
	a := model.ProcessRecord{PID: 1}
	c := model.ProcessRecord{PID: 3}
	out := compact([]*model.ProcessRecord{&a, nil, &c, nil})
	assert.Equal(t, []model.ProcessRecord{a, c}, out)
}

func TestProcfsMissingRoot(t *testing.T) {
	_, err := NewProcfs("/nonexistent/proc", 1).ReadAll(context.Background())
	require.Error(t, err)
	assert.True(t, IsEnumerationError(err))
}
