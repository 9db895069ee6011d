package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Stderr: &buf})
	require.NoError(t, err)

	logger.Info("subscribed to change feed")
	logger.Warn("remote write failed")
	require.NoError(t, logger.Sync())

	assert.NotContains(t, buf.String(), "subscribed to change feed")
	assert.Contains(t, buf.String(), "remote write failed")
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Stderr: &buf})
	require.NoError(t, err)

	logger.Debug("remote write")
	assert.Contains(t, buf.String(), "remote write")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.log")
	logger, err := New(Options{Level: "info", File: path})
	require.NoError(t, err)

	logger.Info("local-only mode")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "local-only mode")
}
