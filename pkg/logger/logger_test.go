package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "warn")
	require.NoError(t, err)

	log.Info("info message %d", 1)
	log.Warn("warn message %d", 2)
	log.Error("error message %d", 3)

	out := buf.String()
	assert.NotContains(t, out, "info message 1")
	assert.Contains(t, out, "warn message 2")
	assert.Contains(t, out, "error message 3")
}

func TestLogger_UnknownLevel(t *testing.T) {
	_, err := NewWithWriter(&bytes.Buffer{}, "verbose")
	assert.Error(t, err)
}

func TestLogger_EmptyLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "")
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}
