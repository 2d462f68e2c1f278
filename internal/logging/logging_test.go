package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	logger, err := New("info", FormatJSON, WithOutput(path), WithField("profile", "48k"))
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("channel analyzed", zap.Int("channel", 3))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "channel analyzed", entry["msg"])
	assert.Equal(t, "48k", entry["profile"])
	assert.Equal(t, 3.0, entry["channel"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := New(tt.level, FormatConsole)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New("verbose", FormatConsole)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")

	_, err = New("info", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log format")
}
