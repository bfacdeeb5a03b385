// Package colormodel converts between hex color strings, RGB and YUV.
package colormodel

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidColorFormat is returned when a color string is not six hex digits.
var ErrInvalidColorFormat = errors.New("colormodel: invalid color format")

// RGB is an opaque 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Color returns the color as an opaque color.RGBA.
func (c RGB) Color() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// ParseHex parses "rrggbb" or "#rrggbb".
// Only one leading '#' is stripped.
func ParseHex(text string) (RGB, error) {
	hex := strings.TrimPrefix(text, "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, text)
	}

	var channels [3]uint8
	for i := range channels {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, text)
		}
		channels[i] = uint8(v)
	}

	return RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
}

// RGBToYUV converts an 8-bit RGB triple to 8-bit YUV using BT.601 weights.
// Each component is clamped to [0,1] before scaling and rounded to nearest.
func RGBToYUV(r, g, b uint8) (y, u, v uint8) {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	yf := 0.299*rf + 0.587*gf + 0.114*bf
	uf := -0.169*rf - 0.331*gf + 0.5*bf + 0.5
	vf := 0.5*rf - 0.419*gf - 0.081*bf + 0.5

	return scale(yf), scale(uf), scale(vf)
}

// YUV converts c with RGBToYUV.
func (c RGB) YUV() (y, u, v uint8) {
	return RGBToYUV(c.R, c.G, c.B)
}

func scale(f float64) uint8 {
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return uint8(math.Round(f * 255))
}
