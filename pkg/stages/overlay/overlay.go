// Package overlay implements the overlay rasterization stage.
package overlay

import (
	"context"
	"fmt"

	"github.com/user/shortgen/pkg/pipeline"
	"github.com/user/shortgen/pkg/ports"
)

// Stage renders the title overlay once and converts it to 4:2:0.
type Stage struct {
	renderer ports.OverlayRenderer
	sink     ports.DebugSink
	logger   ports.Logger
}

// NewStage creates a new overlay stage.
func NewStage(renderer ports.OverlayRenderer, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		sink:     sink,
		logger:   logger.WithComponent("overlay"),
	}
}

// Execute rasterizes the overlay described by input.
func (s *Stage) Execute(ctx context.Context, input pipeline.OverlayInput) (pipeline.OverlayResult, error) {
	result := pipeline.OverlayResult{}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	s.logger.Debug("Rendering overlay %q at %dpx", input.Title, input.FontSize)

	frame, err := s.renderer.RenderOverlay(ports.OverlayRequest{
		Width:      input.Width,
		Height:     input.Height,
		Title:      input.Title,
		Background: input.Background,
		Foreground: input.Foreground,
		FontSize:   float64(input.FontSize),
	})
	if err != nil {
		return result, fmt.Errorf("render overlay: %w", err)
	}
	if frame.Width != input.Width || frame.Height != input.Height {
		return result, fmt.Errorf("render overlay: got %dx%d, want %dx%d",
			frame.Width, frame.Height, input.Width, input.Height)
	}

	result.Frame = frame
	result.Picture = frame.ToYUV420()
	s.logger.Debug("Overlay rendered: %dx%d", frame.Width, frame.Height)

	// Save to debug sink if enabled
	if s.sink.Enabled() {
		if err := s.sink.SaveOverlay(input.Name, ports.FrameImage(frame)); err != nil {
			s.logger.Warn("Failed to save debug output: %s", err)
		}
	}

	return result, nil
}
