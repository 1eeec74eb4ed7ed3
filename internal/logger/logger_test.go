package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Init(Options{Output: &buf, Service: "drive"})

	log.Debug("hidden")
	log.Info("folder created", "folder_id", "f1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "folder created", entry["msg"])
	assert.Equal(t, "drive", entry["service"])
	assert.Equal(t, "f1", entry["folder_id"])
	assert.Same(t, log, Log)
}

func TestInitDevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Output: &buf, Development: true})

	slog.Debug("walking ancestors", "depth", 3)
	assert.Contains(t, buf.String(), "walking ancestors")
	assert.Contains(t, buf.String(), "depth=3")
}
