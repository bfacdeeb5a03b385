package mocks

import (
	"context"
	"os"

	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

// FrameEncoder is a mock implementation of ports.FrameEncoder.
// Finalize writes a small placeholder file to the configured output path.
type FrameEncoder struct {
	OpenFunc        func(ctx context.Context, cfg ports.EncoderConfig) error
	WriteHeaderFunc func() error
	EncodeFrameFunc func(pic *video.YUV420, pts int64) error
	FlushFunc       func() error
	FinalizeFunc    func() (ports.EncodeStats, error)

	// Recorded calls for verification
	Config            ports.EncoderConfig
	OpenCalled        bool
	WriteHeaderCalled bool
	EncodeFrameCalls  []int64
	FlushCalled       bool
	FinalizeCalled    bool
	AbandonCalled     bool
}

func (m *FrameEncoder) Open(ctx context.Context, cfg ports.EncoderConfig) error {
	m.OpenCalled = true
	m.Config = cfg
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, cfg)
	}
	return nil
}

func (m *FrameEncoder) WriteHeader() error {
	m.WriteHeaderCalled = true
	if m.WriteHeaderFunc != nil {
		return m.WriteHeaderFunc()
	}
	return nil
}

func (m *FrameEncoder) EncodeFrame(pic *video.YUV420, pts int64) error {
	m.EncodeFrameCalls = append(m.EncodeFrameCalls, pts)
	if m.EncodeFrameFunc != nil {
		return m.EncodeFrameFunc(pic, pts)
	}
	return nil
}

func (m *FrameEncoder) Flush() error {
	m.FlushCalled = true
	if m.FlushFunc != nil {
		return m.FlushFunc()
	}
	return nil
}

func (m *FrameEncoder) Finalize() (ports.EncodeStats, error) {
	m.FinalizeCalled = true
	if m.FinalizeFunc != nil {
		return m.FinalizeFunc()
	}
	data := []byte{0x00, 0x00, 0x00, 0x08, 'f', 't', 'y', 'p'}
	if m.Config.OutputPath != "" {
		if err := os.WriteFile(m.Config.OutputPath, data, 0644); err != nil {
			return ports.EncodeStats{}, err
		}
	}
	stats := ports.EncodeStats{
		Frames:       len(m.EncodeFrameCalls),
		VideoPackets: len(m.EncodeFrameCalls),
		Bytes:        int64(len(data)),
	}
	if m.Config.Audio != nil {
		stats.AudioPackets = 1
	}
	return stats, nil
}

func (m *FrameEncoder) Abandon() {
	m.AbandonCalled = true
}

// Factory returns a ports.FrameEncoderFactory that always yields m.
func (m *FrameEncoder) Factory() ports.FrameEncoderFactory {
	return func() ports.FrameEncoder { return m }
}

var _ ports.FrameEncoder = (*FrameEncoder)(nil)
