package logger

import "testing"

func TestNoopLogger_WithComponent(t *testing.T) {
	l := NewNoop()
	if got := l.WithComponent("encoder"); got != l {
		t.Errorf("WithComponent returned %v, want the same logger", got)
	}
	l.Debug("Validated %s: %s", "a.mp4", "ok")
	l.Error("Upload failed: %s", "boom")
}
