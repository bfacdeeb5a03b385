package video

import "fmt"

// Validation is the result of checking a produced file against publishing limits.
type Validation struct {
	CorrectDimensions  bool `json:"correct_dimensions"`
	DurationInRange    bool `json:"duration_in_range"`
	FileSizeUnderLimit bool `json:"file_size_under_limit"`
	HasAudio           bool `json:"has_audio"`
	IsPlayable         bool `json:"is_playable"`

	Width           int    `json:"width"`
	Height          int    `json:"height"`
	DurationSeconds int64  `json:"duration_seconds"`
	FileSize        int64  `json:"file_size"`
	VideoCodec      string `json:"video_codec,omitempty"`
	AudioCodec      string `json:"audio_codec,omitempty"`
}

// IsValid reports whether every gating check passed. Audio never gates.
func (v Validation) IsValid() bool {
	return v.CorrectDimensions && v.DurationInRange && v.FileSizeUnderLimit && v.IsPlayable
}

// IsProductionReady additionally requires the requested duration to be within limits.
func (v Validation) IsProductionReady(requestedSeconds uint32) bool {
	return v.IsValid() &&
		requestedSeconds >= MinDurationSecs &&
		requestedSeconds <= MaxDurationSecs
}

// Summary returns a one-line description of the checks.
func (v Validation) Summary() string {
	status := "INVALID"
	if v.IsValid() {
		status = "VALID"
	}
	return fmt.Sprintf("%s: %dx%d %s, %ds %s, %.2f MB %s, audio %s, playable %s",
		status,
		v.Width, v.Height, mark(v.CorrectDimensions),
		v.DurationSeconds, mark(v.DurationInRange),
		float64(v.FileSize)/(1024*1024), mark(v.FileSizeUnderLimit),
		mark(v.HasAudio),
		mark(v.IsPlayable),
	)
}

func mark(ok bool) string {
	if ok {
		return "ok"
	}
	return "no"
}
