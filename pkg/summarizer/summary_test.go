package summarizer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/shortgen/pkg/mocks"
	"github.com/user/shortgen/pkg/video"
)

func testSpec(title string) video.Spec {
	return video.Spec{
		Title:           title,
		Template:        video.NewSimpleText(),
		DurationSeconds: 15,
		BackgroundColor: "#000000",
		TextColor:       "#ffffff",
		FontSize:        72,
	}
}

func validation(valid bool) video.Validation {
	return video.Validation{
		CorrectDimensions: true, DurationInRange: valid, FileSizeUnderLimit: true, IsPlayable: true,
		Width: 1080, Height: 1920, DurationSeconds: 15, FileSize: 2 * 1024 * 1024, HasAudio: true,
	}
}

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder_Counts(t *testing.T) {
	summary := NewBuilder().
		WithSource("specs.yaml").
		AddSuccess(testSpec("A"), "output/A.mp4", time.Second, validation(true)).
		AddSuccess(testSpec("B"), "output/B.mp4", 2*time.Second, validation(false)).
		AddFailure(testSpec("C"), 500*time.Millisecond, video.ErrFontLoad).
		Build()

	ok, failed := summary.Counts()
	if ok != 1 || failed != 2 {
		t.Errorf("counts = %d, %d, want 1, 2", ok, failed)
	}
	if summary.TotalElapsed() != 3500*time.Millisecond {
		t.Errorf("total = %v", summary.TotalElapsed())
	}
	if summary.Entries[0].Template != "SimpleText" || summary.Entries[0].OutputPath != "output/A.mp4" {
		t.Errorf("entry = %+v", summary.Entries[0])
	}
	if !errors.Is(summary.Entries[2].Err, video.ErrFontLoad) {
		t.Errorf("err = %v", summary.Entries[2].Err)
	}
}

func TestMarkdownFormatter_Format(t *testing.T) {
	summary := NewBuilder().
		WithSource("specs.yaml").
		AddSuccess(testSpec("Daily | Tip"), "output/DailyTip.mp4", 1234*time.Millisecond, validation(true)).
		AddFailure(testSpec("Broken"), 0, errors.New("video: font load failure")).
		Build()
	summary.GeneratedAt = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	result := NewMarkdownFormatter().Format(summary)

	checks := []string{
		"# Batch Summary",
		"2026-10-14T09:00:00Z",
		"`specs.yaml`",
		"1 succeeded, 1 failed",
		`Daily \| Tip`,
		"1080x1920",
		"2.00 MB",
		"1.234s",
		"VALID",
		"FAILED",
		"## Failures",
		"- **Broken**: video: font load failure",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
}

func TestMarkdownFormatter_Empty(t *testing.T) {
	result := NewMarkdownFormatter().Format(NewSummary())
	if !strings.Contains(result, "No specs were processed.") {
		t.Errorf("unexpected output:\n%s", result)
	}
	if strings.Contains(result, "## Failures") {
		t.Error("empty summary should have no failures section")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(FormatFunc(func(*Summary) string { return "report" }), fs)

	if err := w.Write("out/report.md", NewSummary()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, ok := fs.GetFile("out/report.md")
	if !ok || string(data) != "report" {
		t.Errorf("file = %q, %v", data, ok)
	}

	fs.WriteFileFunc = func(string, []byte) error { return errors.New("disk full") }
	if err := w.Write("out/report.md", NewSummary()); err == nil {
		t.Error("expected error")
	}
}
