// Package synthesizer turns a video.Spec into a finished MP4 file by running
// the overlay and encode stages.
package synthesizer

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/user/shortgen/pkg/adapters/logger"
	"github.com/user/shortgen/pkg/adapters/nullsink"
	"github.com/user/shortgen/pkg/metrics"
	"github.com/user/shortgen/pkg/pipeline"
	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/stages/encode"
	"github.com/user/shortgen/pkg/stages/overlay"
	"github.com/user/shortgen/pkg/video"
)

// Synthesizer coordinates the overlay and encode stages.
type Synthesizer struct {
	outputDir string
	tempDir   string

	overlayStage pipeline.Stage[pipeline.OverlayInput, pipeline.OverlayResult]
	encodeStage  pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	fs           ports.FileSystem
	sink         ports.DebugSink
	logger       ports.Logger
	profile      ports.EncoderProfile
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithDebugSink sets the sink for intermediate output.
func WithDebugSink(sink ports.DebugSink) Option {
	return func(s *Synthesizer) {
		s.sink = sink
	}
}

// WithLogger sets the logger.
func WithLogger(log ports.Logger) Option {
	return func(s *Synthesizer) {
		s.logger = log
	}
}

// WithProfile overrides the encoder profile.
func WithProfile(p ports.EncoderProfile) Option {
	return func(s *Synthesizer) {
		s.profile = p
	}
}

// New creates a Synthesizer writing into outputDir. Both directories are
// created if missing.
func New(
	outputDir, tempDir string,
	overlayStage pipeline.Stage[pipeline.OverlayInput, pipeline.OverlayResult],
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	fs ports.FileSystem,
	opts ...Option,
) (*Synthesizer, error) {
	s := &Synthesizer{
		outputDir:    outputDir,
		tempDir:      tempDir,
		overlayStage: overlayStage,
		encodeStage:  encodeStage,
		fs:           fs,
		sink:         nullsink.New(),
		logger:       logger.NewNoop(),
		profile:      ports.DefaultProfile(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, dir := range []string{outputDir, tempDir} {
		if err := fs.MkdirAll(dir); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return s, nil
}

// OutputDir returns the directory finished videos are written to.
func (s *Synthesizer) OutputDir() string {
	return s.outputDir
}

// TempDir returns the directory for intermediate files.
func (s *Synthesizer) TempDir() string {
	return s.tempDir
}

// OutputPath returns the path spec will be written to.
func (s *Synthesizer) OutputPath(spec video.Spec) string {
	return filepath.Join(s.outputDir, spec.OutputFileName())
}

// Synthesize renders spec to disk and returns the output path.
func (s *Synthesizer) Synthesize(ctx context.Context, spec video.Spec) (string, error) {
	template := spec.Template.Kind.String()
	path, err := s.synthesize(ctx, spec)
	metrics.ObserveSynthesis(template, err == nil)
	return path, err
}

func (s *Synthesizer) synthesize(ctx context.Context, spec video.Spec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}

	switch spec.Template.Kind {
	case video.SimpleText:
		return s.simpleText(ctx, spec)
	case video.TitleCard, video.Slideshow:
		return "", &video.TemplateNotImplementedError{Template: spec.Template.Name()}
	default:
		return "", fmt.Errorf("%w: unknown template %d", video.ErrInvalidSpec, spec.Template.Kind)
	}
}

func (s *Synthesizer) simpleText(ctx context.Context, spec video.Spec) (string, error) {
	overlayInput, err := pipeline.OverlayInputFromSpec(spec)
	if err != nil {
		return "", err
	}
	overlayInput.Width = s.profile.Width
	overlayInput.Height = s.profile.Height

	path := s.OutputPath(spec)
	if exists, _ := s.fs.Exists(path); exists {
		s.logger.Warn("Overwriting existing file %s", path)
	}

	// 1. Overlay
	overlay, err := s.overlayStage.Execute(ctx, overlayInput)
	if err != nil {
		return "", fmt.Errorf("overlay stage: %w", err)
	}

	if s.sink.Enabled() {
		if data, err := json.MarshalIndent(spec, "", "  "); err == nil {
			if err := s.sink.SaveSpecJSON(overlayInput.Name, data); err != nil {
				s.logger.Warn("Failed to save debug output: %s", err)
			}
		}
	}

	// 2. Encode
	frames := int(spec.DurationSeconds) * s.profile.FrameRate
	start := time.Now()
	encoded, err := s.encodeStage.Execute(ctx, pipeline.EncodeInput{
		Picture:    overlay.Picture,
		FrameCount: frames,
		OutputPath: path,
		AudioPath:  spec.AudioTrack,
		Profile:    s.profile,
	})
	if err != nil {
		return "", fmt.Errorf("encode stage: %w", err)
	}
	metrics.ObserveEncode(time.Since(start))

	return encoded.OutputPath, nil
}

// NewDefault wires the standard overlay and encode stages around renderer
// and newEncoder.
func NewDefault(
	outputDir, tempDir string,
	renderer ports.OverlayRenderer,
	newEncoder ports.FrameEncoderFactory,
	fs ports.FileSystem,
	sink ports.DebugSink,
	log ports.Logger,
) (*Synthesizer, error) {
	return New(outputDir, tempDir,
		overlay.NewStage(renderer, sink, log),
		encode.NewStage(newEncoder, log),
		fs,
		WithDebugSink(sink),
		WithLogger(log),
	)
}
