package ffmpegbin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFind_CustomPath(t *testing.T) {
	dir := t.TempDir()
	fake := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := Find(fake)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if got != fake {
		t.Errorf("Find = %q, want %q", got, fake)
	}

	if _, err := Find(filepath.Join(dir, "missing")); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing custom path: got %v, want ErrNotFound", err)
	}
}

func TestFind_EnvPath(t *testing.T) {
	t.Setenv("FFMPEG_PATH", filepath.Join(t.TempDir(), "nope"))
	if _, err := Find(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("bad FFMPEG_PATH: got %v, want ErrNotFound", err)
	}
	if Available("") {
		t.Error("Available should be false with a bad FFMPEG_PATH")
	}
}
