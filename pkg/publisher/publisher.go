// Package publisher runs the daily select, synthesize, validate and upload cycle.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/shortgen/pkg/adapters/logger"
	"github.com/user/shortgen/pkg/content"
	"github.com/user/shortgen/pkg/metrics"
	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

// ErrNotProductionReady is returned when a synthesized file fails validation.
var ErrNotProductionReady = errors.New("publisher: video is not production ready")

// Synthesizer produces a video file from a spec.
type Synthesizer interface {
	Synthesize(ctx context.Context, spec video.Spec) (string, error)
}

// Validator checks a produced file.
type Validator interface {
	Validate(path string) (video.Validation, error)
}

// Target is an enabled platform with its posting rules.
type Target struct {
	Platform        ports.VideoPlatform
	Privacy         ports.PrivacyLevel
	MaxDailyUploads int // 0 means unlimited
}

// Config holds the per-run settings.
type Config struct {
	DurationSeconds    uint32
	FontSize           uint32
	CleanupAfterUpload bool
	Location           *time.Location
}

// Result is the outcome for one platform.
type Result struct {
	Platform   string
	ContentID  string
	Path       string
	VideoID    string
	Validation *video.Validation
	Skipped    string
	Err        error
}

// Report summarizes one run.
type Report struct {
	Date    time.Time
	Results []Result
}

// Uploaded returns the number of successful uploads.
func (r Report) Uploaded() int {
	n := 0
	for _, res := range r.Results {
		if res.VideoID != "" {
			n++
		}
	}
	return n
}

// Publisher wires selection, synthesis, validation and upload together.
type Publisher struct {
	selector  *content.Selector
	synth     Synthesizer
	validator Validator
	targets   []Target
	history   ports.HistoryStore
	fs        ports.FileSystem
	cfg       Config
	logger    ports.Logger
}

// New creates a Publisher. history records every upload and enforces the
// daily limits.
func New(
	selector *content.Selector,
	synth Synthesizer,
	validator Validator,
	targets []Target,
	history ports.HistoryStore,
	fs ports.FileSystem,
	cfg Config,
	log ports.Logger,
) *Publisher {
	if log == nil {
		log = logger.NewNoop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Publisher{
		selector:  selector,
		synth:     synth,
		validator: validator,
		targets:   targets,
		history:   history,
		fs:        fs,
		cfg:       cfg,
		logger:    log,
	}
}

// Run publishes one video per target for the given date. Platforms are
// handled independently; the returned error joins every platform failure.
func (p *Publisher) Run(ctx context.Context, date time.Time) (Report, error) {
	date = date.In(p.cfg.Location)
	report := Report{Date: date}
	metrics.MarkRun(date)

	var errs []error
	for _, t := range p.targets {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := p.publish(ctx, date, t)
		report.Results = append(report.Results, res)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Platform, res.Err))
		}
	}
	return report, errors.Join(errs...)
}

func (p *Publisher) publish(ctx context.Context, date time.Time, t Target) Result {
	name := t.Platform.Name()
	res := Result{Platform: name}

	if t.MaxDailyUploads > 0 {
		start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, p.cfg.Location)
		n, err := p.history.CountSince(ctx, name, start)
		if err != nil {
			res.Err = fmt.Errorf("count uploads: %w", err)
			return res
		}
		if n >= t.MaxDailyUploads {
			p.logger.Info("Daily upload limit reached for %s", name)
			res.Skipped = "daily limit reached"
			return res
		}
	}

	item, err := p.selector.SelectForDate(ctx, date, name)
	if errors.Is(err, content.ErrNoContent) {
		p.logger.Info("No content available for %s", name)
		res.Skipped = "no content"
		return res
	}
	if err != nil {
		res.Err = err
		return res
	}
	res.ContentID = item.ID
	p.logger.Info("Selected content %s for %s", item.ID, name)

	spec, err := item.ToSpec(p.cfg.DurationSeconds, p.cfg.FontSize)
	if err != nil {
		res.Err = err
		return res
	}

	path, err := p.synth.Synthesize(ctx, spec)
	if err != nil {
		p.logger.Error("Failed to generate %s: %s", spec.Title, err)
		res.Err = err
		return res
	}
	res.Path = path

	v, err := p.validator.Validate(path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Validation = &v
	if !v.IsProductionReady(spec.DurationSeconds) {
		p.logger.Warn("Video is not production ready: %s", v.Summary())
		res.Err = fmt.Errorf("%w: %s", ErrNotProductionReady, v.Summary())
		return res
	}

	up, err := t.Platform.Upload(ctx, path, item.Metadata(t.Privacy))
	metrics.ObserveUpload(name, err == nil)
	if err != nil {
		p.logger.Error("Failed to upload to %s: %s", name, err)
		res.Err = err
		return res
	}
	res.VideoID = up.VideoID
	p.logger.Info("Uploaded to %s: %s", name, up.VideoID)

	rec := ports.PostRecord{ContentID: item.ID, Platform: name, VideoID: up.VideoID, PostedAt: up.UploadTime}
	if err := p.history.Record(ctx, rec); err != nil {
		res.Err = fmt.Errorf("record history: %w", err)
		return res
	}

	if p.cfg.CleanupAfterUpload {
		if err := p.fs.Remove(path); err != nil {
			p.logger.Warn("Failed to remove %s: %s", path, err)
		} else {
			p.logger.Info("Removed %s after upload", path)
		}
	}
	return res
}
