package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))
	logger = WithComponent(logger, "syncer")

	logger.Info("history ingested", slog.Int("inserted", 12), slog.String("mode", "full"))

	line := buf.String()
	if !strings.Contains(line, "INFO syncer: history ingested") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "inserted=12") || !strings.Contains(line, "mode=full") {
		t.Fatalf("missing attrs: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, new(slog.LevelVar)))

	logger.Warn("no match", slog.String("title", "The Long Goodbye"), Error(errors.New("not found")))

	line := buf.String()
	if !strings.Contains(line, `title="The Long Goodbye"`) {
		t.Fatalf("expected quoted title, got %q", line)
	}
	if !strings.Contains(line, `error="not found"`) {
		t.Fatalf("expected error attr, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevel(t *testing.T) {
	if got := parseLevel("debug"); got != slog.LevelDebug {
		t.Fatalf("debug parsed as %v", got)
	}
	if got := parseLevel(""); got != slog.LevelInfo {
		t.Fatalf("empty parsed as %v", got)
	}
	if got := parseLevel("bogus"); got != slog.LevelInfo {
		t.Fatalf("bogus parsed as %v", got)
	}
}
