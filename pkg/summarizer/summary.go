// Package summarizer builds human-readable reports of batch generation runs.
package summarizer

import (
	"time"

	"github.com/user/shortgen/pkg/video"
)

// Summary contains all results collected during a batch run.
type Summary struct {
	GeneratedAt time.Time
	Source      string
	Entries     []Entry
}

// Entry is the outcome of one spec.
type Entry struct {
	Title           string
	Template        string
	DurationSeconds uint32
	OutputPath      string
	Elapsed         time.Duration
	Validation      *video.Validation
	Err             error
}

// OK reports whether the entry produced a valid file.
func (e Entry) OK() bool {
	return e.Err == nil && e.Validation != nil && e.Validation.IsValid()
}

// Counts returns the number of succeeded and failed entries.
func (s *Summary) Counts() (succeeded, failed int) {
	for _, e := range s.Entries {
		if e.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// TotalElapsed returns the summed generation time.
func (s *Summary) TotalElapsed() time.Duration {
	var d time.Duration
	for _, e := range s.Entries {
		d += e.Elapsed
	}
	return d
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource records the batch file the specs came from.
func (b *Builder) WithSource(path string) *Builder {
	b.summary.Source = path
	return b
}

// AddSuccess records a generated and validated spec.
func (b *Builder) AddSuccess(spec video.Spec, path string, elapsed time.Duration, v video.Validation) *Builder {
	e := entryFor(spec, elapsed)
	e.OutputPath = path
	e.Validation = &v
	b.summary.Entries = append(b.summary.Entries, e)
	return b
}

// AddFailure records a spec that could not be generated or validated.
func (b *Builder) AddFailure(spec video.Spec, elapsed time.Duration, err error) *Builder {
	e := entryFor(spec, elapsed)
	e.Err = err
	b.summary.Entries = append(b.summary.Entries, e)
	return b
}

func entryFor(spec video.Spec, elapsed time.Duration) Entry {
	return Entry{
		Title:           spec.Title,
		Template:        spec.Template.Name(),
		DurationSeconds: spec.DurationSeconds,
		Elapsed:         elapsed,
	}
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
