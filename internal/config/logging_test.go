package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  LogLevel
	}{
		{input: "off", want: LogLevelOff},
		{input: "none", want: LogLevelOff},
		{input: "error", want: LogLevelError},
		{input: "debug", want: LogLevelDebug},
		{input: " DEBUG ", want: LogLevelDebug},
		{input: "unknown", want: LogLevelError},
		{input: "", want: LogLevelError},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseLogLevel(tc.input), tc.input)
	}
}

func TestLogLevel_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "off", LogLevelOff.String())
	assert.Equal(t, "error", LogLevelError.String())
	assert.Equal(t, "debug", LogLevelDebug.String())
}

func TestLogger_WritesAtLevel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vigil.log")

	logger, err := NewLogger(LogLevelDebug, path)
	require.NoError(t, err)

	logger.Debug("debug message %d", 1)
	logger.Error("error message")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[DEBUG] debug message 1")
	assert.Contains(t, string(content), "[ERROR] error message")
}

func TestLogger_LevelFiltersDebug(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vigil.log")

	logger, err := NewLogger(LogLevelError, path)
	require.NoError(t, err)

	logger.Debug("should not appear")
	logger.Error("should appear")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "should not appear")
	assert.Contains(t, string(content), "should appear")
}

func TestLogger_OffWritesNothing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vigil.log")

	logger, err := NewLogger(LogLevelOff, path)
	require.NoError(t, err)

	logger.Error("dropped")
	require.NoError(t, logger.Close())

	// Level off never opens the file.
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLogger_SetLevel(t *testing.T) {
	t.Parallel()

	logger := NullLogger()
	assert.Equal(t, LogLevelOff, logger.Level())

	logger.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, logger.Level())
}

func TestLogger_Writer(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vigil.log")

	logger, err := NewLogger(LogLevelDebug, path)
	require.NoError(t, err)

	n, err := logger.Writer(LogLevelDebug).Write([]byte("piped line\n"))
	require.NoError(t, err)
	assert.Equal(t, len("piped line\n"), n)
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "piped line")
}

func TestNullLogger_Safe(t *testing.T) {
	t.Parallel()

	logger := NullLogger()
	logger.Debug("ignored")
	logger.Error("ignored")
	assert.NoError(t, logger.Close())
}
