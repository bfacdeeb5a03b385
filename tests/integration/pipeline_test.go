// Package integration contains integration tests for the shortgen pipeline.
package integration

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/shortgen/pkg/adapters/ffmpegbin"
	"github.com/user/shortgen/pkg/adapters/ggrenderer"
	"github.com/user/shortgen/pkg/adapters/h264decoder"
	"github.com/user/shortgen/pkg/adapters/h264encoder"
	"github.com/user/shortgen/pkg/adapters/logger"
	"github.com/user/shortgen/pkg/adapters/mockplatform"
	"github.com/user/shortgen/pkg/adapters/nullsink"
	"github.com/user/shortgen/pkg/adapters/osfilesystem"
	"github.com/user/shortgen/pkg/adapters/sqlitehistory"
	"github.com/user/shortgen/pkg/content"
	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/publisher"
	"github.com/user/shortgen/pkg/synthesizer"
	"github.com/user/shortgen/pkg/validator"
	"github.com/user/shortgen/pkg/video"
)

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping ffmpeg integration test in short mode")
	}
	if !ffmpegbin.Available("") {
		t.Skip("ffmpeg not available")
	}
}

func newSynthesizer(t *testing.T, dir string) *synthesizer.Synthesizer {
	t.Helper()
	tempDir := filepath.Join(dir, "temp")
	newEncoder := func() ports.FrameEncoder {
		return h264encoder.NewSession(h264encoder.WithTempDir(tempDir))
	}
	synth, err := synthesizer.NewDefault(
		filepath.Join(dir, "output"),
		tempDir,
		ggrenderer.New(),
		newEncoder,
		osfilesystem.New(),
		nullsink.New(),
		logger.NewNoop(),
	)
	if err != nil {
		t.Fatalf("NewDefault failed: %v", err)
	}
	return synth
}

func newValidator(t *testing.T) *validator.Validator {
	t.Helper()
	dec := h264decoder.New("")
	if err := dec.Init(); err != nil {
		t.Fatalf("decoder init: %v", err)
	}
	return validator.New(validator.WithDecodeCheck(dec))
}

func spec(title string, seconds uint32) video.Spec {
	return video.Spec{
		Title:           title,
		Template:        video.NewSimpleText(),
		DurationSeconds: seconds,
		BackgroundColor: "#1E1E1E",
		TextColor:       "#FFFFFF",
		FontSize:        72,
	}
}

// TestSynthesizeAndValidate renders a silent clip and checks it against every limit
func TestSynthesizeAndValidate(t *testing.T) {
	requireFFmpeg(t)

	dir := t.TempDir()
	synth := newSynthesizer(t, dir)
	s := spec("Integration Test", 10)

	path, err := synth.Synthesize(context.Background(), s)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if path != filepath.Join(dir, "output", "IntegrationTest.mp4") {
		t.Errorf("path = %q", path)
	}

	v, err := newValidator(t).Validate(path)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !v.IsProductionReady(s.DurationSeconds) {
		t.Errorf("not production ready: %s", v.Summary())
	}
	if v.HasAudio {
		t.Error("silent clip reports audio")
	}
	if v.VideoCodec != "h264" {
		t.Errorf("video codec = %q", v.VideoCodec)
	}

	t.Logf("Synthesized: %s", v.Summary())
}

// TestSynthesizeIdempotent renders the same spec twice into the same path
func TestSynthesizeIdempotent(t *testing.T) {
	requireFFmpeg(t)

	synth := newSynthesizer(t, t.TempDir())
	val := newValidator(t)
	s := spec("Same Twice", 8)

	var paths [2]string
	var results [2]video.Validation
	for i := range paths {
		path, err := synth.Synthesize(context.Background(), s)
		if err != nil {
			t.Fatalf("Synthesize %d failed: %v", i, err)
		}
		v, err := val.Validate(path)
		if err != nil {
			t.Fatalf("Validate %d failed: %v", i, err)
		}
		paths[i], results[i] = path, v
	}

	if paths[0] != paths[1] {
		t.Errorf("paths differ: %q vs %q", paths[0], paths[1])
	}
	a, b := results[0], results[1]
	if a.CorrectDimensions != b.CorrectDimensions || a.Width != b.Width || a.Height != b.Height {
		t.Errorf("dimensions differ: %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}
	if a.DurationInRange != b.DurationInRange || a.DurationSeconds != b.DurationSeconds {
		t.Errorf("duration differs: %ds vs %ds", a.DurationSeconds, b.DurationSeconds)
	}
	if a.FileSizeUnderLimit != b.FileSizeUnderLimit {
		t.Errorf("size verdict differs: %d vs %d bytes", a.FileSize, b.FileSize)
	}
	if !b.IsProductionReady(s.DurationSeconds) {
		t.Errorf("second run not production ready: %s", b.Summary())
	}
}

// TestSynthesizeWithAudio attaches a generated tone
func TestSynthesizeWithAudio(t *testing.T) {
	requireFFmpeg(t)

	ffmpeg, err := ffmpegbin.Find("")
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	tone := filepath.Join(dir, "tone.wav")
	out, err := exec.Command(ffmpeg, "-y", "-f", "lavfi", "-i", "sine=frequency=440:duration=12", tone).CombinedOutput()
	if err != nil {
		t.Fatalf("generate tone: %v\n%s", err, out)
	}

	s := spec("With Audio", 12)
	s.AudioTrack = tone
	path, err := newSynthesizer(t, dir).Synthesize(context.Background(), s)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	v, err := newValidator(t).Validate(path)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !v.HasAudio || v.AudioCodec != "aac" {
		t.Errorf("audio = %v %q", v.HasAudio, v.AudioCodec)
	}
	if v.DurationSeconds != 12 {
		t.Errorf("duration = %d, want 12", v.DurationSeconds)
	}
}

// TestSynthesizeMissingAudio checks the audio failure classification
func TestSynthesizeMissingAudio(t *testing.T) {
	requireFFmpeg(t)

	dir := t.TempDir()
	s := spec("Missing Audio", 10)
	s.AudioTrack = filepath.Join(dir, "nope.mp3")

	_, err := newSynthesizer(t, dir).Synthesize(context.Background(), s)
	if err == nil {
		t.Fatal("expected error for missing audio")
	}
	if !errors.Is(err, video.ErrAudioSourceUnavailable) {
		t.Errorf("error = %v, want ErrAudioSourceUnavailable", err)
	}
}

// TestDailyRun publishes through the mock platform with a real history store
func TestDailyRun(t *testing.T) {
	requireFFmpeg(t)

	dir := t.TempDir()
	store, err := sqlitehistory.Open(filepath.Join(dir, "history.db"), logger.NewNoop())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	items := []content.Item{
		{ID: "a", Platform: content.PlatformAny, ScheduleType: content.ScheduleDaily, Template: "simple_text", Title: "First"},
		{ID: "b", Platform: content.PlatformAny, ScheduleType: content.ScheduleDaily, Template: "simple_text", Title: "Second"},
	}
	platform := mockplatform.New()
	fs := osfilesystem.New()

	pub := publisher.New(
		content.NewSelector(items, store),
		newSynthesizer(t, dir),
		newValidator(t),
		[]publisher.Target{{Platform: platform, Privacy: ports.PrivacyPrivate, MaxDailyUploads: 1}},
		store,
		fs,
		publisher.Config{DurationSeconds: 10, FontSize: 72, CleanupAfterUpload: true, Location: time.UTC},
		logger.NewNoop(),
	)

	day := time.Now().UTC()
	report, err := pub.Run(context.Background(), day)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Uploaded() != 1 {
		t.Fatalf("uploaded = %d, want 1", report.Uploaded())
	}
	res := report.Results[0]
	if _, err := os.Stat(res.Path); !os.IsNotExist(err) {
		t.Errorf("output %s should be removed after upload", res.Path)
	}

	// Next day picks the other item.
	next, err := pub.Run(context.Background(), day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if next.Results[0].ContentID == res.ContentID {
		t.Errorf("second day reused %s", res.ContentID)
	}
	if len(platform.Uploads()) != 2 {
		t.Errorf("platform uploads = %d, want 2", len(platform.Uploads()))
	}
}
