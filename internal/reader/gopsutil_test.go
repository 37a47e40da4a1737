package reader

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGopsutilSeesSelf(t *testing.T) {
	records, err := NewGopsutil(4).ReadAll(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, records)

	self := int32(os.Getpid())
	var found bool
	for i, r := range records {
		if i > 0 {
			assert.Less(t, records[i-1].PID, r.PID, "records must be in ascending pid order")
		}
		if r.PID != self {
			continue
		}
		found = true
		assert.Equal(t, int32(os.Getppid()), r.PPID)
		assert.NotEmpty(t, r.Name)
		assert.NotZero(t, r.VMSize)
	}
	assert.True(t, found, "test process %d missing from listing", self)
}

func TestGopsutilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGopsutil(1).ReadAll(ctx)
	if err != nil {
		assert.True(t, IsEnumerationError(err))
	}
}
