// Package video defines the data model shared by synthesis and validation.
package video

import (
	"fmt"
	"strings"
	"unicode"
)

// Fixed output geometry and rate.
const (
	Width           = 1080
	Height          = 1920
	FrameRate       = 30
	MinDurationSecs = 10
	MaxDurationSecs = 60
	MaxFileSize     = 50 * 1024 * 1024
)

// Spec describes one video to synthesize.
type Spec struct {
	Title           string   `yaml:"title" json:"title"`
	Template        Template `yaml:"template" json:"template"`
	DurationSeconds uint32   `yaml:"duration_seconds" json:"duration_seconds"`
	BackgroundColor string   `yaml:"background_color" json:"background_color"`
	TextColor       string   `yaml:"text_color" json:"text_color"`
	FontSize        uint32   `yaml:"font_size" json:"font_size"`
	AudioTrack      string   `yaml:"audio_track,omitempty" json:"audio_track,omitempty"`
}

// Validate checks field ranges. Colors are checked when they are parsed.
func (s Spec) Validate() error {
	if s.DurationSeconds == 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidSpec)
	}
	if s.FontSize == 0 {
		return fmt.Errorf("%w: font size must be positive", ErrInvalidSpec)
	}
	return nil
}

// FrameCount returns the number of frames the video will contain.
func (s Spec) FrameCount() int {
	return int(s.DurationSeconds) * FrameRate
}

// HasAudio reports whether an audio track was requested.
func (s Spec) HasAudio() bool {
	return s.AudioTrack != ""
}

// SanitizeTitle keeps letters, digits, '-' and '_' and drops everything else.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// OutputFileName returns "<sanitized title>.mp4".
func (s Spec) OutputFileName() string {
	return SanitizeTitle(s.Title) + ".mp4"
}
