package h264encoder

import (
	"errors"

	"github.com/user/shortgen/pkg/video"
)

var (
	// ErrInvalidState is returned when session methods are called out of order.
	ErrInvalidState = errors.New("h264encoder: invalid session state")

	// ErrEncodingFailed is returned when the encoder process fails.
	ErrEncodingFailed = errors.New("h264encoder: encoding failed")

	// ErrNoParameterSets is returned when SPS or PPS cannot be obtained.
	ErrNoParameterSets = errors.New("h264encoder: parameter sets not found")

	// ErrFrameSize is returned when a picture does not match the configured profile.
	ErrFrameSize = errors.New("h264encoder: frame size mismatch")

	// ErrUnsupportedProfile is returned for profiles the encoder cannot produce.
	ErrUnsupportedProfile = errors.New("h264encoder: unsupported profile")
)

func errorsIsAudio(err error) bool {
	return errors.Is(err, video.ErrAudioSourceUnavailable)
}
