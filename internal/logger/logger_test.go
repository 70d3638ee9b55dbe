package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/config"
)

// captureOutput redirects stdout to a buffer during f()
func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	_ = r.Close()

	return buf.String()
}

func logConfig(level, format, component string) *config.Config {
	c := &config.Config{}
	c.Log.Level = level
	c.Log.Format = format
	c.Log.Component = component
	return c
}

func TestLogger_TextFormat(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(logConfig("debug", "text", "test"), nil)
		Info("hello cars", "key", "value")
	})

	assert.Contains(t, out, "hello cars")
	assert.Contains(t, out, "component=test")
	assert.Contains(t, out, "key=value")
}

func TestLogger_JSONFormat(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(logConfig("info", "json", "json_test"), nil)
		Info("json log", "foo", "bar")
	})

	assert.Contains(t, out, `"msg":"json log"`)
	assert.Contains(t, out, `"component":"json_test"`)
	assert.Contains(t, out, `"foo":"bar"`)
}

func TestLogger_LevelFilter(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(logConfig("error", "text", ""), nil)
		Info("should not appear")
		Error("should appear")
	})

	if strings.Contains(out, "should not appear") {
		t.Errorf("info log should not appear, got: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("error log should appear, got: %s", out)
	}
}

func TestLogger_WithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	Init(&Config{Level: "debug", Format: FormatText, Output: &buf})

	With("req_id", "123").Info("processing request")

	assert.Contains(t, buf.String(), "req_id=123")
}

func TestLogger_ExtraHandlerReceivesRecords(t *testing.T) {
	var stdout, extra bytes.Buffer
	Init(&Config{
		Level:     "info",
		Format:    FormatText,
		Component: "fan",
		Output:    &stdout,
		Extra:     slog.NewJSONHandler(&extra, &slog.HandlerOptions{Level: slog.LevelWarn}),
	})

	Info("only stdout")
	Warn("both sinks", "ad_id", "a1")

	assert.Contains(t, stdout.String(), "only stdout")
	assert.Contains(t, stdout.String(), "both sinks")
	assert.NotContains(t, extra.String(), "only stdout")
	assert.Contains(t, extra.String(), `"msg":"both sinks"`)
	assert.Contains(t, extra.String(), `"component":"fan"`)
}

func TestFanout_Enabled(t *testing.T) {
	var a, b bytes.Buffer
	h := fanout{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}

	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "input %q", in)
	}
}
