package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	log, err := New("tracker", Options{Level: "debug", Dir: dir})
	require.NoError(t, err)

	log.Debug("hello")
	log.Info("meal logged")
	_ = log.Sync()

	files, err := filepath.Glob(filepath.Join(dir, "tracker_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "tracker", entry["logger"])
	assert.Equal(t, "meal logged", entry["msg"])
}

func TestNewLevelFilters(t *testing.T) {
	dir := t.TempDir()
	log, err := New("quiet", Options{Level: "warn", Dir: dir})
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept")
	_ = log.Sync()

	files, err := filepath.Glob(filepath.Join(dir, "quiet_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New("x", Options{Level: "loud"})
	assert.Error(t, err)
}
