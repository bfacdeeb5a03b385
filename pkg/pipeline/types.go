package pipeline

import (
	"github.com/user/shortgen/pkg/colormodel"
	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

// =============================================================================
// Overlay Stage Types
// =============================================================================

// OverlayInput contains parameters for rasterizing the title card.
type OverlayInput struct {
	Name       string // Debug output name, usually the sanitized title
	Width      int
	Height     int
	Title      string
	Background colormodel.RGB
	Foreground colormodel.RGB
	FontSize   int
}

// OverlayInputFromSpec builds an overlay input for a validated spec.
func OverlayInputFromSpec(spec video.Spec) (OverlayInput, error) {
	bg, err := colormodel.ParseHex(spec.BackgroundColor)
	if err != nil {
		return OverlayInput{}, err
	}
	fg, err := colormodel.ParseHex(spec.TextColor)
	if err != nil {
		return OverlayInput{}, err
	}
	return OverlayInput{
		Name:       video.SanitizeTitle(spec.Title),
		Width:      video.Width,
		Height:     video.Height,
		Title:      spec.Title,
		Background: bg,
		Foreground: fg,
		FontSize:   int(spec.FontSize),
	}, nil
}

// OverlayResult contains the rendered frame in both color models.
type OverlayResult struct {
	Frame   *video.Frame
	Picture *video.YUV420
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput contains parameters for encoding a static picture.
type EncodeInput struct {
	Picture    *video.YUV420
	FrameCount int
	OutputPath string
	AudioPath  string // Optional
	Profile    ports.EncoderProfile
}

// EncodeResult contains the encoding output.
type EncodeResult struct {
	OutputPath string
	Frames     int
	DurationMs int
	FileSize   int64
	HasAudio   bool
}
