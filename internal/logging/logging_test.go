package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	require.NoError(t, configure(l, &buf, "warn", "json"))

	l.WithField("source", "test").Info("hidden")
	l.WithField("source", "test").Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"source":"test"`)
}

func TestConfigureText(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	require.NoError(t, configure(l, &buf, "debug", "text"))
	l.Debug("details")
	assert.Contains(t, buf.String(), "msg=details")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
}

func TestConfigureRejectsBadInput(t *testing.T) {
	l := logrus.New()
	assert.Error(t, configure(l, &bytes.Buffer{}, "loud", "text"))
	assert.Error(t, configure(l, &bytes.Buffer{}, "info", "xml"))
}
