package encode

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/shortgen/pkg/adapters/logger"
	"github.com/user/shortgen/pkg/mocks"
	"github.com/user/shortgen/pkg/pipeline"
	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

func testPicture() *video.YUV420 {
	return video.NewFrame(1080, 1920).ToYUV420()
}

func defaultInput(picture *video.YUV420, frames int, outputPath, audioPath string) pipeline.EncodeInput {
	return pipeline.EncodeInput{
		Picture:    picture,
		FrameCount: frames,
		OutputPath: outputPath,
		AudioPath:  audioPath,
		Profile:    ports.DefaultProfile(),
	}
}

func TestStage_Execute(t *testing.T) {
	mockEncoder := &mocks.FrameEncoder{}
	stage := NewStage(mockEncoder.Factory(), logger.NewNoop())

	out := filepath.Join(t.TempDir(), "out.mp4")
	result, err := stage.Execute(context.Background(), defaultInput(testPicture(), 300, out, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !mockEncoder.OpenCalled || !mockEncoder.WriteHeaderCalled || !mockEncoder.FlushCalled || !mockEncoder.FinalizeCalled {
		t.Error("expected the full Open, WriteHeader, Flush, Finalize sequence")
	}
	if mockEncoder.AbandonCalled {
		t.Error("Abandon should not be called on success")
	}

	if len(mockEncoder.EncodeFrameCalls) != 300 {
		t.Fatalf("expected 300 EncodeFrame calls, got %d", len(mockEncoder.EncodeFrameCalls))
	}
	for i, pts := range mockEncoder.EncodeFrameCalls {
		if pts != int64(i) {
			t.Fatalf("frame %d has pts %d", i, pts)
		}
	}

	if mockEncoder.Config.Audio != nil {
		t.Error("expected no audio input")
	}
	if result.DurationMs != 10000 {
		t.Errorf("expected duration 10000ms, got %d", result.DurationMs)
	}
	if result.OutputPath != out || result.HasAudio {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestStage_Execute_WithAudio(t *testing.T) {
	mockEncoder := &mocks.FrameEncoder{}
	stage := NewStage(mockEncoder.Factory(), logger.NewNoop())

	input := defaultInput(testPicture(), 450, filepath.Join(t.TempDir(), "out.mp4"), "/music/track.mp3")
	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	audio := mockEncoder.Config.Audio
	if audio == nil {
		t.Fatal("expected audio input")
	}
	if audio.Path != "/music/track.mp3" {
		t.Errorf("audio path = %s", audio.Path)
	}
	if audio.MaxDuration != 15*time.Second {
		t.Errorf("audio max duration = %v, want 15s", audio.MaxDuration)
	}
	if !result.HasAudio {
		t.Error("expected HasAudio")
	}
}

func TestStage_Execute_NoFrames(t *testing.T) {
	stage := NewStage((&mocks.FrameEncoder{}).Factory(), logger.NewNoop())

	if _, err := stage.Execute(context.Background(), defaultInput(testPicture(), 0, "out.mp4", "")); err == nil {
		t.Error("expected error for zero frames")
	}
	if _, err := stage.Execute(context.Background(), defaultInput(nil, 10, "out.mp4", "")); err == nil {
		t.Error("expected error for missing picture")
	}
}

func TestStage_Execute_EncoderErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		setup func(*mocks.FrameEncoder)
	}{
		{"open", func(m *mocks.FrameEncoder) {
			m.OpenFunc = func(context.Context, ports.EncoderConfig) error { return boom }
		}},
		{"header", func(m *mocks.FrameEncoder) {
			m.WriteHeaderFunc = func() error { return boom }
		}},
		{"frame", func(m *mocks.FrameEncoder) {
			m.EncodeFrameFunc = func(_ *video.YUV420, pts int64) error {
				if pts == 42 {
					return boom
				}
				return nil
			}
		}},
		{"flush", func(m *mocks.FrameEncoder) {
			m.FlushFunc = func() error { return boom }
		}},
		{"finalize", func(m *mocks.FrameEncoder) {
			m.FinalizeFunc = func() (ports.EncodeStats, error) { return ports.EncodeStats{}, boom }
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockEncoder := &mocks.FrameEncoder{}
			tt.setup(mockEncoder)
			stage := NewStage(mockEncoder.Factory(), logger.NewNoop())

			_, err := stage.Execute(context.Background(), defaultInput(testPicture(), 60, filepath.Join(t.TempDir(), "out.mp4"), ""))
			if !errors.Is(err, boom) {
				t.Errorf("error = %v, want boom", err)
			}
			if !mockEncoder.AbandonCalled {
				t.Error("expected Abandon after failure")
			}
		})
	}
}

func TestStage_Execute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mockEncoder := &mocks.FrameEncoder{
		EncodeFrameFunc: func(_ *video.YUV420, pts int64) error {
			if pts == 9 {
				cancel()
			}
			return nil
		},
	}
	stage := NewStage(mockEncoder.Factory(), logger.NewNoop())

	_, err := stage.Execute(ctx, defaultInput(testPicture(), 300, filepath.Join(t.TempDir(), "out.mp4"), ""))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if len(mockEncoder.EncodeFrameCalls) != 10 {
		t.Errorf("expected 10 frames before cancellation, got %d", len(mockEncoder.EncodeFrameCalls))
	}
	if !mockEncoder.AbandonCalled {
		t.Error("expected Abandon after cancellation")
	}
}

