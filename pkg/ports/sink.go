package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveOverlay saves the rasterized overlay frame.
	SaveOverlay(name string, img image.Image) error

	// SaveSpecJSON saves the spec a video was generated from.
	SaveSpecJSON(name string, data []byte) error

	// SaveValidationJSON saves a validation report.
	SaveValidationJSON(name string, data []byte) error
}
