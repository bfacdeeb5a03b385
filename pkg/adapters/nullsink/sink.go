// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/shortgen/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveOverlay does nothing.
func (s *Sink) SaveOverlay(name string, img image.Image) error {
	return nil
}

// SaveSpecJSON does nothing.
func (s *Sink) SaveSpecJSON(name string, data []byte) error {
	return nil
}

// SaveValidationJSON does nothing.
func (s *Sink) SaveValidationJSON(name string, data []byte) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
