package ports

import "image"

// FrameDecoder decodes single H.264 access units.
type FrameDecoder interface {
	// DecodeFrame decodes an Annex B access unit that carries its own parameter sets.
	DecodeFrame(data []byte) (image.Image, error)

	// Close releases decoder resources.
	Close()
}
