package internal

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewLoggerInstallsJSONDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	cfg := NewDefaultConfig()
	cfg.App.LogLevel = slog.LevelWarn
	app, err := newApplication([]Option{WithConfig(cfg), WithLogOutput(&buf)})
	if err != nil {
		t.Fatal(err)
	}

	logger := newLogger(app)
	if slog.Default() != logger {
		t.Fatal("logger not installed as default")
	}

	// Components built after newLogger, such as the SSE broker, log through it.
	slog.Default().Info("dropped below level")
	slog.Default().Warn("kept", slog.String("kind", "subject.added"))

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("want one JSON line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "kept" || line["kind"] != "subject.added" {
		t.Errorf("line = %v", line)
	}
}

func TestNewApplicationRequiresConfig(t *testing.T) {
	if _, err := newApplication(nil); err == nil {
		t.Fatal("expected error without config")
	}
}
