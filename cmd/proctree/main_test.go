package main

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/proctree/internal/wire"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSnapshotCommand(t *testing.T) {
	out, err := run(t, "snapshot", "--log-level", "error")
	require.NoError(t, err)

	doc, err := wire.Decode(bytes.NewBufferString(out))
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Children)

	self := int32(os.Getpid())
	var found bool
	var walk func([]wire.Node)
	walk = func(nodes []wire.Node) {
		for _, n := range nodes {
			if n.PID == self {
				found = true
			}
			walk(n.Children)
		}
	}
	walk(doc.Children)
	assert.True(t, found, "snapshot should include the test process")
}

func TestSnapshotYAML(t *testing.T) {
	out, err := run(t, "snapshot", "-o", "yaml", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "children:")
}

func TestRejectsShortInterval(t *testing.T) {
	_, err := run(t, "watch", "--interval", "200ms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below the minimum")
}

func TestRejectsUnknownBackend(t *testing.T) {
	_, err := run(t, "snapshot", "--backend", "wmi")
	assert.ErrorContains(t, err, "unknown backend")
}
