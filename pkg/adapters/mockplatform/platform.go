// Package mockplatform is an offline VideoPlatform that accepts uploads
// without sending them anywhere.
package mockplatform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/shortgen/pkg/adapters/logger"
	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

// Name is the platform identifier.
const Name = "mock"

// ErrSimulated is wrapped by simulated failures.
var ErrSimulated = errors.New("mockplatform: simulated failure")

// Upload is one accepted upload.
type Upload struct {
	Path     string
	Metadata ports.VideoMetadata
	Result   ports.UploadResult
}

// Platform implements ports.VideoPlatform.
type Platform struct {
	mu       sync.Mutex
	failEach int
	attempts int
	uploads  []Upload
	now      func() time.Time
	logger   ports.Logger
}

// Option configures a Platform.
type Option func(*Platform)

// WithSimulatedFailures makes every n-th upload attempt fail. Failures
// alternate between network and API errors.
func WithSimulatedFailures(n int) Option {
	return func(p *Platform) {
		p.failEach = n
	}
}

// WithLogger sets the logger.
func WithLogger(l ports.Logger) Option {
	return func(p *Platform) {
		p.logger = l
	}
}

// New creates a mock platform.
func New(opts ...Option) *Platform {
	p := &Platform{now: time.Now, logger: logger.NewNoop()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.WithComponent("mockplatform")
	return p
}

func (p *Platform) Name() string {
	return Name
}

func (p *Platform) MaxFileSize() int64 {
	return video.MaxFileSize
}

func (p *Platform) SupportedFormats() []string {
	return []string{"mp4"}
}

// Upload checks the file and records it under a fresh id.
func (p *Platform) Upload(ctx context.Context, path string, meta ports.VideoMetadata) (ports.UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.UploadResult{}, ports.NewPlatformError(Name, ports.CategoryNetwork, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return ports.UploadResult{}, ports.NewPlatformError(Name, ports.CategoryFile, err)
	}
	if info.Size() > p.MaxFileSize() {
		return ports.UploadResult{}, ports.NewPlatformError(Name, ports.CategoryFile,
			fmt.Errorf("%s is %d bytes, limit %d", path, info.Size(), p.MaxFileSize()))
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !supported(p.SupportedFormats(), ext) {
		return ports.UploadResult{}, ports.NewPlatformError(Name, ports.CategoryFile,
			fmt.Errorf("unsupported format %q", ext))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.attempts++
	if p.failEach > 0 && p.attempts%p.failEach == 0 {
		category := ports.CategoryNetwork
		if (p.attempts/p.failEach)%2 == 0 {
			category = ports.CategoryAPI
		}
		p.logger.Debug("Simulating %s failure for %s", category, path)
		return ports.UploadResult{}, ports.NewPlatformError(Name, category, ErrSimulated)
	}

	res := ports.UploadResult{
		VideoID:    uuid.NewString(),
		Platform:   Name,
		UploadTime: p.now(),
	}
	p.uploads = append(p.uploads, Upload{Path: path, Metadata: meta, Result: res})
	p.logger.Debug("Accepted %s as %s", path, res.VideoID)
	return res, nil
}

// Uploads returns the accepted uploads in order.
func (p *Platform) Uploads() []Upload {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Upload(nil), p.uploads...)
}

func supported(formats []string, ext string) bool {
	for _, f := range formats {
		if f == ext {
			return true
		}
	}
	return false
}

var _ ports.VideoPlatform = (*Platform)(nil)
