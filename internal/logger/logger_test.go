package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlain(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{Writer: buf, Format: FormatPretty, Level: level, NoColor: true})
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		env      string
		wantJSON bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Writer: &buf, Environment: tt.env, NoColor: true})
			l.Info("hello", "k", "v")

			var decoded map[string]any
			isJSON := json.Unmarshal(buf.Bytes(), &decoded) == nil
			assert.Equal(t, tt.wantJSON, isJSON, buf.String())
		})
	}
}

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Format: FormatJSON})
	l.Info("flag created", "flag_id", "bookmark")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "flag created", decoded["msg"])
	assert.Equal(t, "bookmark", decoded["flag_id"])
	assert.Equal(t, "INFO", decoded["level"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestPrettyHandler_Line(t *testing.T) {
	var buf bytes.Buffer
	l := newPlain(&buf, slog.LevelDebug)

	l.Info("entity flagged", "flag_id", "bookmark", "entity_id", 42, "label", "two words")

	line := buf.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, " INF entity flagged ")
	assert.Contains(t, line, "flag_id=bookmark")
	assert.Contains(t, line, "entity_id=42")
	assert.Contains(t, line, `label="two words"`)
	assert.NotContains(t, line, "\x1b[", "colors are disabled")
}

func TestPrettyHandler_Colors(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Format: FormatPretty})
	l.Warn("careful")
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestPrettyHandler_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := newPlain(&buf, slog.LevelDebug)

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	out := buf.String()
	for _, lvl := range []string{"DBG d", "INF i", "WRN w", "ERR e"} {
		assert.Contains(t, out, lvl)
	}
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newPlain(&buf, slog.LevelWarn)

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandler_GroupsAreFlattened(t *testing.T) {
	var buf bytes.Buffer
	l := newPlain(&buf, slog.LevelInfo)

	l.With("component", "api").
		WithGroup("req").
		Info("done",
			"method", "GET",
			slog.Group("stats", slog.Int("delivered", 2)))

	line := buf.String()
	assert.Contains(t, line, "component=api")
	assert.Contains(t, line, "req.method=GET")
	assert.Contains(t, line, "req.stats.delivered=2")
}

func TestPrettyHandler_Values(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-01T12:00:00Z", formatValue(slog.TimeValue(ts)))
	assert.Equal(t, "1.5s", formatValue(slog.DurationValue(1500*time.Millisecond)))
	assert.Equal(t, `""`, formatValue(slog.StringValue("")))
	assert.Equal(t, "true", formatValue(slog.BoolValue(true)))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	l := newPlain(&buf, slog.LevelInfo)

	l.WithError(errors.New("boom")).
		WithFields(map[string]any{"flag_id": "like"}).
		Info("failed")
	l.Component("sse").Info("started")

	out := buf.String()
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "flag_id=like")
	assert.Contains(t, out, "component=sse")
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().Info("nothing")
	})
}
