package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected slog.Level
		wantErr  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("json output", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, Options{Level: "info", Format: FormatJSON})
		require.NoError(t, err)

		logger.Info("rows decoded", "schema", "people", "rows", 3)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "rows decoded", entry["msg"])
		assert.Equal(t, "people", entry["schema"])
		assert.Equal(t, float64(3), entry["rows"])
	})

	t.Run("text output filters by level", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, Options{Level: "warn"})
		require.NoError(t, err)

		logger.Info("hidden")
		assert.Zero(t, buf.Len())

		logger.Warn("shown", "line", 2)
		assert.Contains(t, buf.String(), "msg=shown")
		assert.Contains(t, buf.String(), "line=2")
	})

	t.Run("secrets redacted", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, Options{Format: FormatText})
		require.NoError(t, err)

		logger.Info("auth", "api_key", "abc123")
		assert.NotContains(t, buf.String(), "abc123")
		assert.Contains(t, buf.String(), "REDACTED")
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := New(&bytes.Buffer{}, Options{Format: "xml"})
		assert.Error(t, err)

		_, err = New(&bytes.Buffer{}, Options{Level: "loud"})
		assert.Error(t, err)

		_, err = New(nil, Options{})
		assert.Error(t, err)
	})
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}
