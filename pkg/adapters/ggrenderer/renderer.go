// Package ggrenderer rasterizes text overlays using the gg library.
package ggrenderer

import (
	"fmt"
	"image"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

// Layout constants for the centered title.
const (
	charWidthFactor = 0.6
	minLeftMargin   = 50.0
)

// Renderer implements ports.OverlayRenderer using gg and a TrueType font.
type Renderer struct {
	fontPath string

	once    sync.Once
	font    *truetype.Font
	fontErr error
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFontPath uses the TrueType font at path instead of the bundled Go Regular font.
func WithFontPath(path string) Option {
	return func(r *Renderer) {
		r.fontPath = path
	}
}

// New creates a new Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// loadFont parses the font once. A failure is sticky and never falls back.
func (r *Renderer) loadFont() (*truetype.Font, error) {
	r.once.Do(func() {
		data := goregular.TTF
		if r.fontPath != "" {
			b, err := os.ReadFile(r.fontPath)
			if err != nil {
				r.fontErr = fmt.Errorf("%w: %v", video.ErrFontLoad, err)
				return
			}
			data = b
		}

		f, err := truetype.Parse(data)
		if err != nil {
			r.fontErr = fmt.Errorf("%w: parse %s: %v", video.ErrFontLoad, r.fontName(), err)
			return
		}
		r.font = f
	})
	return r.font, r.fontErr
}

func (r *Renderer) fontName() string {
	if r.fontPath != "" {
		return r.fontPath
	}
	return "bundled font"
}

// TextPosition returns the top-left corner of the title. Width is estimated
// as 0.6 x fontSize per character; the title is centered horizontally with a
// 50px minimum left margin and vertically around the canvas midline.
func TextPosition(title string, fontSize float64, width, height int) (x, y int) {
	estimated := float64(utf8.RuneCountInString(title)) * fontSize * charWidthFactor

	left := (float64(width) - estimated) / 2
	if left < minLeftMargin {
		left = minLeftMargin
	}
	top := float64(height)/2 - fontSize/2

	return int(left), int(top)
}

// RenderOverlay draws the title over a solid background.
func (r *Renderer) RenderOverlay(req ports.OverlayRequest) (*video.Frame, error) {
	f, err := r.loadFont()
	if err != nil {
		return nil, err
	}

	face := truetype.NewFace(f, &truetype.Options{Size: req.FontSize})
	defer face.Close()

	dc := gg.NewContext(req.Width, req.Height)
	dc.SetColor(req.Background.Color())
	dc.Clear()

	if req.Title != "" {
		dc.SetFontFace(face)
		dc.SetColor(req.Foreground.Color())

		x, y := TextPosition(req.Title, req.FontSize, req.Width, req.Height)
		ascent := float64(face.Metrics().Ascent) / 64
		dc.DrawString(req.Title, float64(x), float64(y)+ascent)
	}

	return toFrame(dc.Image()), nil
}

// toFrame drops alpha from an opaque image.
func toFrame(img image.Image) *video.Frame {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		bounds := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()
	frame := video.NewFrame(w, h)
	for y := 0; y < h; y++ {
		src := rgba.Pix[y*rgba.Stride:]
		dst := frame.Pix[y*frame.Stride:]
		for x := 0; x < w; x++ {
			dst[x*3] = src[x*4]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+2]
		}
	}
	return frame
}

// Ensure Renderer implements ports.OverlayRenderer
var _ ports.OverlayRenderer = (*Renderer)(nil)
