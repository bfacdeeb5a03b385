package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/user/shortgen/pkg/ports"
)

func TestWriterLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelInfo, &buf)

	log.Debug("hidden %d", 1)
	log.Info("saved %s", "a.mp4")
	log.Warn("careful")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out, "saved a.mp4") {
		t.Errorf("info message missing: %q", out)
	}
	if !strings.Contains(out, "careful") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestWriterLogger_ComponentAndTimestamp(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelDebug, &buf)
	log.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	log.WithComponent("encoder").Debug("frame %d/%d", 3, 30)

	line := strings.TrimSpace(buf.String())
	want := "2026-01-02T03:04:05Z debug [encoder] frame 3/30"
	if line != want {
		t.Errorf("got %q, want %q", line, want)
	}
}

func TestWriterLogger_Quiet(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelQuiet, &buf)
	log.Error("boom")
	if buf.Len() != 0 {
		t.Errorf("quiet logger wrote %q", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	for _, lvl := range []ports.LogLevel{ports.LevelDebug, ports.LevelInfo, ports.LevelWarn, ports.LevelError, ports.LevelQuiet} {
		if got := ports.ParseLogLevel(lvl.String()); got != lvl {
			t.Errorf("ParseLogLevel(%q) = %v", lvl.String(), got)
		}
	}
	if ports.ParseLogLevel("verbose") != ports.LevelInfo {
		t.Error("unknown level should default to info")
	}
}
