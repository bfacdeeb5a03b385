package mocks

import (
	"image"
	"sync"

	"github.com/user/shortgen/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	Overlays       map[string]image.Image
	SpecJSON       map[string][]byte
	ValidationJSON map[string][]byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:        enabled,
		Overlays:       make(map[string]image.Image),
		SpecJSON:       make(map[string][]byte),
		ValidationJSON: make(map[string][]byte),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveOverlay(name string, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Overlays[name] = img
	return nil
}

func (m *DebugSink) SaveSpecJSON(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SpecJSON[name] = data
	return nil
}

func (m *DebugSink) SaveValidationJSON(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationJSON[name] = data
	return nil
}

// GetOverlay returns a saved overlay (for test verification).
func (m *DebugSink) GetOverlay(name string) (image.Image, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	img, ok := m.Overlays[name]
	return img, ok
}

var _ ports.DebugSink = (*DebugSink)(nil)
