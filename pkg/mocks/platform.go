package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

// UploadCall records one Upload invocation.
type UploadCall struct {
	Path     string
	Metadata ports.VideoMetadata
}

// VideoPlatform is a mock implementation of ports.VideoPlatform.
type VideoPlatform struct {
	mu sync.Mutex

	PlatformName string
	UploadFunc   func(ctx context.Context, path string, meta ports.VideoMetadata) (ports.UploadResult, error)

	UploadCalls []UploadCall
}

// NewVideoPlatform creates a mock platform with the given name.
func NewVideoPlatform(name string) *VideoPlatform {
	return &VideoPlatform{PlatformName: name}
}

func (m *VideoPlatform) Upload(ctx context.Context, path string, meta ports.VideoMetadata) (ports.UploadResult, error) {
	m.mu.Lock()
	m.UploadCalls = append(m.UploadCalls, UploadCall{Path: path, Metadata: meta})
	n := len(m.UploadCalls)
	m.mu.Unlock()

	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, path, meta)
	}
	return ports.UploadResult{
		VideoID:    fmt.Sprintf("%s-%d", m.PlatformName, n),
		Platform:   m.PlatformName,
		UploadTime: time.Now(),
	}, nil
}

func (m *VideoPlatform) Name() string {
	return m.PlatformName
}

func (m *VideoPlatform) MaxFileSize() int64 {
	return video.MaxFileSize
}

func (m *VideoPlatform) SupportedFormats() []string {
	return []string{"mp4"}
}

var _ ports.VideoPlatform = (*VideoPlatform)(nil)
