package mocks

import (
	"image"
	"sync"

	"github.com/user/shortgen/pkg/ports"
)

// FrameDecoder is a mock implementation of ports.FrameDecoder.
type FrameDecoder struct {
	mu sync.Mutex

	DecodeFrameFunc func(data []byte) (image.Image, error)

	DecodeFrameCalls [][]byte
	CloseCalled      bool
}

func (m *FrameDecoder) DecodeFrame(data []byte) (image.Image, error) {
	m.mu.Lock()
	m.DecodeFrameCalls = append(m.DecodeFrameCalls, data)
	m.mu.Unlock()

	if m.DecodeFrameFunc != nil {
		return m.DecodeFrameFunc(data)
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func (m *FrameDecoder) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
}

var _ ports.FrameDecoder = (*FrameDecoder)(nil)
