package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runStart = time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

func TestLogFilePath(t *testing.T) {
	tests := []struct {
		name    string
		logsDir string
		want    string
	}{
		{"relative", "markerlogs", filepath.Join("markerlogs", "markerctl.20260212_213836.log")},
		{"dot prefix", "./markerlogs", filepath.Join("markerlogs", "markerctl.20260212_213836.log")},
		{"absolute", filepath.Join("/var", "log", "markerset"), filepath.Join("/var", "log", "markerset", "markerctl.20260212_213836.log")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LogFilePath(tt.logsDir, "markerctl", runStart))
		})
	}
}

func TestOpenLogFile_CreatesDirAndAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	for _, line := range []string{"first\n", "second\n"} {
		f, err := OpenLogFile(dir, "markerctl", runStart)
		require.NoError(t, err)
		_, err = f.WriteString(line)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}

	data, err := os.ReadFile(LogFilePath(dir, "markerctl", runStart))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestOpenLogFile_DirIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := OpenLogFile(filepath.Join(blocker, "sub"), "markerctl", runStart)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create logs directory")
}
