package ports

import (
	"image"

	"github.com/user/shortgen/pkg/colormodel"
	"github.com/user/shortgen/pkg/video"
)

// OverlayRenderer rasterizes a text overlay into an RGB frame.
type OverlayRenderer interface {
	// RenderOverlay draws the request onto a new opaque frame.
	RenderOverlay(req OverlayRequest) (*video.Frame, error)
}

// OverlayRequest describes one overlay.
type OverlayRequest struct {
	Width      int
	Height     int
	Title      string
	Background colormodel.RGB
	Foreground colormodel.RGB
	FontSize   float64
}

// FrameImage wraps a Frame as an image.Image.
func FrameImage(f *video.Frame) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		src := f.Pix[y*f.Stride : y*f.Stride+f.Width*3]
		dst := img.Pix[y*img.Stride : y*img.Stride+f.Width*4]
		for x := 0; x < f.Width; x++ {
			dst[x*4] = src[x*3]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
	return img
}
