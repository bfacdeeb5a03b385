package video

import (
	"errors"
	"fmt"

	"github.com/user/shortgen/pkg/colormodel"
)

var (
	// ErrInvalidColorFormat is returned when a color string is not six hex digits.
	ErrInvalidColorFormat = colormodel.ErrInvalidColorFormat

	// ErrFontLoad is returned when the overlay font cannot be loaded or parsed.
	ErrFontLoad = errors.New("video: font load failure")

	// ErrTemplateNotImplemented is returned for template variants that are not supported yet.
	ErrTemplateNotImplemented = errors.New("video: template not implemented")

	// ErrAudioSourceUnavailable is returned when the requested audio track cannot be used.
	ErrAudioSourceUnavailable = errors.New("video: audio source unavailable")

	// ErrEncoderSession is returned when encoding or muxing fails.
	ErrEncoderSession = errors.New("video: encoder session failure")

	// ErrNoVideoStream is returned when a file contains no video track.
	ErrNoVideoStream = errors.New("video: no video stream")

	// ErrValidationOpen is returned when a file cannot be opened for validation.
	ErrValidationOpen = errors.New("video: cannot open file for validation")

	// ErrInvalidSpec is returned when a Spec has out-of-range fields.
	ErrInvalidSpec = errors.New("video: invalid spec")
)

// TemplateNotImplementedError names the template variant that was requested.
type TemplateNotImplementedError struct {
	Template string
}

func (e *TemplateNotImplementedError) Error() string {
	return fmt.Sprintf("video: template not implemented: %s", e.Template)
}

// Is reports whether target is ErrTemplateNotImplemented.
func (e *TemplateNotImplementedError) Is(target error) bool {
	return target == ErrTemplateNotImplemented
}
