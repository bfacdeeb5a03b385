// Package media provides time base arithmetic and the compressed packet type
// passed from encoders to muxers.
package media

import "fmt"

// Rational is a time base expressed as Num/Den seconds per tick.
type Rational struct {
	Num int64
	Den int64
}

// R returns num/den.
func R(num, den int64) Rational {
	return Rational{Num: num, Den: den}
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Rescale converts ts from time base from to time base to, rounding to nearest
// with ties away from zero.
func Rescale(ts int64, from, to Rational) int64 {
	num := ts * from.Num * to.Den
	den := from.Den * to.Num
	if den == 0 {
		return 0
	}
	if den < 0 {
		num, den = -num, -den
	}
	if num >= 0 {
		return (num + den/2) / den
	}
	return -((-num + den/2) / den)
}

// Packet is one compressed access unit.
type Packet struct {
	Data        []byte
	PTS         int64
	DTS         int64
	Duration    int64
	TimeBase    Rational
	StreamIndex int
	Keyframe    bool
}

// Rescale converts the packet timestamps to time base tb in place.
func (p *Packet) Rescale(tb Rational) {
	if p.TimeBase == tb {
		return
	}
	p.PTS = Rescale(p.PTS, p.TimeBase, tb)
	p.DTS = Rescale(p.DTS, p.TimeBase, tb)
	p.Duration = Rescale(p.Duration, p.TimeBase, tb)
	p.TimeBase = tb
}
