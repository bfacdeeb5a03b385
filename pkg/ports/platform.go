package ports

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// VideoPlatform uploads finished videos to a publishing service.
type VideoPlatform interface {
	// Upload sends the file at path with the given metadata.
	Upload(ctx context.Context, path string, meta VideoMetadata) (UploadResult, error)

	// Name returns the platform identifier used in config and history.
	Name() string

	// MaxFileSize returns the largest accepted upload in bytes.
	MaxFileSize() int64

	// SupportedFormats returns accepted container extensions.
	SupportedFormats() []string
}

// PrivacyLevel controls who can see an upload.
type PrivacyLevel int

const (
	PrivacyPublic PrivacyLevel = iota
	PrivacyPrivate
	PrivacyUnlisted
)

func (p PrivacyLevel) String() string {
	switch p {
	case PrivacyPrivate:
		return "private"
	case PrivacyUnlisted:
		return "unlisted"
	default:
		return "public"
	}
}

// ParsePrivacyLevel parses "public", "private" or "unlisted".
func ParsePrivacyLevel(s string) (PrivacyLevel, error) {
	switch s {
	case "public", "":
		return PrivacyPublic, nil
	case "private":
		return PrivacyPrivate, nil
	case "unlisted":
		return PrivacyUnlisted, nil
	default:
		return PrivacyPublic, fmt.Errorf("unknown privacy level %q", s)
	}
}

// VideoMetadata is attached to an upload.
type VideoMetadata struct {
	Title       string
	Description string
	Tags        []string
	Privacy     PrivacyLevel
}

// UploadResult identifies a completed upload.
type UploadResult struct {
	VideoID    string
	Platform   string
	UploadTime time.Time
}

// ErrorCategory classifies upload failures.
type ErrorCategory int

const (
	CategoryNetwork ErrorCategory = iota
	CategoryAuth
	CategoryAPI
	CategoryFile
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryNetwork:
		return "network"
	case CategoryAuth:
		return "authentication"
	case CategoryAPI:
		return "api"
	case CategoryFile:
		return "file"
	default:
		return "unknown"
	}
}

// PlatformError is a categorized upload failure.
type PlatformError struct {
	Platform string
	Category ErrorCategory
	Err      error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s %s error: %v", e.Platform, e.Category, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// NewPlatformError wraps err with a category.
func NewPlatformError(platform string, category ErrorCategory, err error) *PlatformError {
	return &PlatformError{Platform: platform, Category: category, Err: err}
}

// IsCategory reports whether err is a PlatformError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var pe *PlatformError
	return errors.As(err, &pe) && pe.Category == category
}
