// Package encode implements the video encoding stage.
package encode

import (
	"context"
	"fmt"
	"time"

	"github.com/user/shortgen/pkg/pipeline"
	"github.com/user/shortgen/pkg/ports"
)

// progressInterval is how many frames pass between progress logs.
const progressInterval = 150

// Stage encodes a static picture into an MP4 file.
type Stage struct {
	newEncoder ports.FrameEncoderFactory
	logger     ports.Logger
}

// NewStage creates a new encode stage. Each Execute uses a fresh encoder.
func NewStage(newEncoder ports.FrameEncoderFactory, logger ports.Logger) *Stage {
	return &Stage{
		newEncoder: newEncoder,
		logger:     logger.WithComponent("encode"),
	}
}

// Execute feeds the picture FrameCount times with PTS 0..FrameCount-1.
// On any failure the session is abandoned and the partial file is left behind.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}

	if input.Picture == nil {
		return result, fmt.Errorf("no picture to encode")
	}
	if input.FrameCount <= 0 {
		return result, fmt.Errorf("no frames to encode")
	}

	profile := input.Profile
	cfg := ports.EncoderConfig{
		OutputPath: input.OutputPath,
		Profile:    profile,
	}
	if input.AudioPath != "" {
		s.logger.Debug("Attaching audio track %s", input.AudioPath)
		cfg.Audio = &ports.AudioInput{
			Path:        input.AudioPath,
			MaxDuration: time.Duration(input.FrameCount) * time.Second / time.Duration(profile.FrameRate),
		}
	}

	enc := s.newEncoder()
	ok := false
	defer func() {
		if !ok {
			enc.Abandon()
		}
	}()

	if err := enc.Open(ctx, cfg); err != nil {
		return result, fmt.Errorf("open encoder: %w", err)
	}
	if err := enc.WriteHeader(); err != nil {
		return result, fmt.Errorf("write header: %w", err)
	}

	s.logger.Debug("Encoding %d frames at %d fps", input.FrameCount, profile.FrameRate)
	for i := 0; i < input.FrameCount; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := enc.EncodeFrame(input.Picture, int64(i)); err != nil {
			return result, fmt.Errorf("encode frame %d: %w", i, err)
		}
		if (i+1)%progressInterval == 0 {
			s.logger.Debug("Encoded frame %d/%d", i+1, input.FrameCount)
		}
	}

	if err := enc.Flush(); err != nil {
		return result, fmt.Errorf("flush encoder: %w", err)
	}
	stats, err := enc.Finalize()
	if err != nil {
		return result, fmt.Errorf("finalize: %w", err)
	}
	ok = true

	s.logger.Debug("Video encoded: %d packets, %d bytes", stats.VideoPackets, stats.Bytes)

	result.OutputPath = input.OutputPath
	result.Frames = stats.Frames
	result.DurationMs = stats.Frames * 1000 / profile.FrameRate
	result.FileSize = stats.Bytes
	result.HasAudio = stats.AudioPackets > 0
	return result, nil
}
