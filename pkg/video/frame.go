package video

import "github.com/user/shortgen/pkg/colormodel"

// Frame is an interleaved 8-bit RGB image with no alpha.
type Frame struct {
	Width  int
	Height int
	Stride int
	Pix    []byte
}

// NewFrame allocates a zeroed (black) frame.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Stride: width * 3,
		Pix:    make([]byte, width*height*3),
	}
}

// At returns the RGB value at (x, y).
func (f *Frame) At(x, y int) (r, g, b uint8) {
	i := y*f.Stride + x*3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Set stores the RGB value at (x, y).
func (f *Frame) Set(x, y int, r, g, b uint8) {
	i := y*f.Stride + x*3
	f.Pix[i] = r
	f.Pix[i+1] = g
	f.Pix[i+2] = b
}

// YUV420 is a planar 4:2:0 picture.
type YUV420 struct {
	Width  int
	Height int
	Y      []byte
	U      []byte
	V      []byte
}

// Bytes returns the planes concatenated in Y, U, V order.
func (p *YUV420) Bytes() []byte {
	out := make([]byte, 0, len(p.Y)+len(p.U)+len(p.V))
	out = append(out, p.Y...)
	out = append(out, p.U...)
	return append(out, p.V...)
}

// ToYUV420 converts the frame to planar 4:2:0. Luma is computed per pixel;
// each chroma sample is taken from the top-left pixel of its 2x2 block.
func (f *Frame) ToYUV420() *YUV420 {
	cw, ch := f.Width/2, f.Height/2
	p := &YUV420{
		Width:  f.Width,
		Height: f.Height,
		Y:      make([]byte, f.Width*f.Height),
		U:      make([]byte, cw*ch),
		V:      make([]byte, cw*ch),
	}

	for y := 0; y < f.Height; y++ {
		row := f.Pix[y*f.Stride:]
		for x := 0; x < f.Width; x++ {
			i := x * 3
			yy, u, v := colormodel.RGBToYUV(row[i], row[i+1], row[i+2])
			p.Y[y*f.Width+x] = yy
			if x%2 == 0 && y%2 == 0 && x/2 < cw && y/2 < ch {
				ci := (y/2)*cw + x/2
				p.U[ci] = u
				p.V[ci] = v
			}
		}
	}

	return p
}
