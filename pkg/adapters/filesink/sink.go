// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"

	"github.com/user/shortgen/pkg/ports"
)

// Sink saves debug output under baseDir, one file per artifact and video name.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveOverlay saves the rasterized overlay as <name>.overlay.png.
func (s *Sink) SaveOverlay(name string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode overlay: %w", err)
	}
	return s.write(name+".overlay.png", buf.Bytes())
}

// SaveSpecJSON saves the spec as <name>.spec.json.
func (s *Sink) SaveSpecJSON(name string, data []byte) error {
	return s.write(name+".spec.json", data)
}

// SaveValidationJSON saves a validation report as <name>.validation.json.
func (s *Sink) SaveValidationJSON(name string, data []byte) error {
	return s.write(name+".validation.json", data)
}

func (s *Sink) write(file string, data []byte) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, file), data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
