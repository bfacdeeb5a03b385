// Package batch generates and validates a list of specs read from a YAML file.
package batch

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/shortgen/pkg/adapters/logger"
	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/summarizer"
	"github.com/user/shortgen/pkg/video"
)

// Defaults fill in spec fields left empty in the batch file.
type Defaults struct {
	DurationSeconds uint32 `yaml:"duration_seconds"`
	BackgroundColor string `yaml:"background_color"`
	TextColor       string `yaml:"text_color"`
	FontSize        uint32 `yaml:"font_size"`
	AudioTrack      string `yaml:"audio_track"`
}

type file struct {
	Defaults Defaults     `yaml:"defaults"`
	Specs    []video.Spec `yaml:"specs"`
}

// LoadSpecs reads a batch file. Fields missing from a spec are taken from
// the file's defaults block, then from fallback.
func LoadSpecs(path string, fallback Defaults) ([]video.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Specs) == 0 {
		return nil, fmt.Errorf("%s: no specs", path)
	}

	for i := range f.Specs {
		apply(&f.Specs[i], f.Defaults)
		apply(&f.Specs[i], fallback)
	}
	return f.Specs, nil
}

func apply(s *video.Spec, d Defaults) {
	if s.DurationSeconds == 0 {
		s.DurationSeconds = d.DurationSeconds
	}
	if s.BackgroundColor == "" {
		s.BackgroundColor = d.BackgroundColor
	}
	if s.TextColor == "" {
		s.TextColor = d.TextColor
	}
	if s.FontSize == 0 {
		s.FontSize = d.FontSize
	}
	if s.AudioTrack == "" {
		s.AudioTrack = d.AudioTrack
	}
}

// Synthesizer produces a video file from a spec.
type Synthesizer interface {
	Synthesize(ctx context.Context, spec video.Spec) (string, error)
}

// Validator checks a produced file.
type Validator interface {
	Validate(path string) (video.Validation, error)
}

// Runner processes specs one after another.
type Runner struct {
	synth     Synthesizer
	validator Validator
	logger    ports.Logger
	now       func() time.Time
}

// NewRunner creates a Runner.
func NewRunner(synth Synthesizer, validator Validator, log ports.Logger) *Runner {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Runner{synth: synth, validator: validator, logger: log, now: time.Now}
}

// Run generates every spec. A failing spec is recorded and the batch goes
// on; cancellation stops it and returns the partial summary with ctx.Err().
func (r *Runner) Run(ctx context.Context, source string, specs []video.Spec) (*summarizer.Summary, error) {
	b := summarizer.NewBuilder().WithSource(source)

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return b.Build(), err
		}

		r.logger.Info("Generating %s (%s, %ds)...", spec.Title, spec.Template, spec.DurationSeconds)
		start := r.now()

		path, err := r.synth.Synthesize(ctx, spec)
		if err != nil {
			r.logger.Error("Failed to generate %s: %s", spec.Title, err)
			b.AddFailure(spec, r.now().Sub(start), err)
			continue
		}

		v, err := r.validator.Validate(path)
		elapsed := r.now().Sub(start)
		if err != nil {
			r.logger.Error("Failed to generate %s: %s", spec.Title, err)
			b.AddFailure(spec, elapsed, err)
			continue
		}
		r.logger.Info("Validation: %s", v.Summary())
		b.AddSuccess(spec, path, elapsed, v)
	}

	summary := b.Build()
	ok, failed := summary.Counts()
	r.logger.Info("Batch completed: %d succeeded, %d failed", ok, failed)
	return summary, nil
}
