package mocks

import (
	"sync"

	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

// OverlayRenderer is a mock implementation of ports.OverlayRenderer.
// By default it fills the frame with the background color.
type OverlayRenderer struct {
	mu sync.Mutex

	RenderOverlayFunc func(req ports.OverlayRequest) (*video.Frame, error)

	// Recorded calls for verification
	RenderOverlayCalls []ports.OverlayRequest
}

func (m *OverlayRenderer) RenderOverlay(req ports.OverlayRequest) (*video.Frame, error) {
	m.mu.Lock()
	m.RenderOverlayCalls = append(m.RenderOverlayCalls, req)
	m.mu.Unlock()

	if m.RenderOverlayFunc != nil {
		return m.RenderOverlayFunc(req)
	}
	frame := video.NewFrame(req.Width, req.Height)
	for y := 0; y < req.Height; y++ {
		for x := 0; x < req.Width; x++ {
			frame.Set(x, y, req.Background.R, req.Background.G, req.Background.B)
		}
	}
	return frame, nil
}

var _ ports.OverlayRenderer = (*OverlayRenderer)(nil)
