package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorHandlerColors(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, Options{Level: slog.LevelDebug, Color: true})

	log.Error("boom")
	log.Warn("careful")
	log.Info("Graph documents loaded", "nodes", 3)
	log.Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], colorRed))
	assert.True(t, strings.HasPrefix(lines[1], colorYellow))
	assert.True(t, strings.HasPrefix(lines[2], colorGreen))
	assert.Contains(t, lines[2], "nodes=3")
	assert.False(t, strings.HasPrefix(lines[3], "\033["))
}

func TestColorHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, Options{Level: slog.LevelWarn, Color: true})

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestColorHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, Options{Level: slog.LevelInfo, Color: true}).
		With("component", "chain").
		WithGroup("qa")

	log.Info("answered", "top_k", 10)

	out := buf.String()
	assert.Contains(t, out, "component=chain")
	assert.Contains(t, out, "qa.top_k=10")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, Options{Level: slog.LevelInfo, Format: "json"})

	log.Info("hello", "k", "v")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}
