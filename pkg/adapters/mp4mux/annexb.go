package mp4mux

import (
	"bytes"
	"encoding/binary"

	"github.com/Eyevinn/mp4ff/avc"
)

// toAVCC converts an Annex B access unit to 4-byte length-prefixed NAL units.
// Access unit delimiters are dropped, as are parameter sets identical to the
// ones carried in avcC. Differing parameter sets stay in-band.
func toAVCC(annexB []byte, sps, pps [][]byte) (out []byte, inBand int) {
	nalus := avc.ExtractNalusFromByteStream(annexB)
	if len(nalus) == 0 {
		return nil, 0
	}

	size := 0
	for _, nalu := range nalus {
		size += 4 + len(nalu)
	}
	out = make([]byte, 0, size)

	for _, nalu := range nalus {
		if len(nalu) == 0 {
			continue
		}
		switch avc.GetNaluType(nalu[0]) {
		case avc.NALU_AUD:
			continue
		case avc.NALU_SPS:
			if containsNalu(sps, nalu) {
				continue
			}
			inBand++
		case avc.NALU_PPS:
			if containsNalu(pps, nalu) {
				continue
			}
			inBand++
		}
		out = binary.BigEndian.AppendUint32(out, uint32(len(nalu)))
		out = append(out, nalu...)
	}
	return out, inBand
}

func containsNalu(set [][]byte, nalu []byte) bool {
	for _, s := range set {
		if bytes.Equal(s, nalu) {
			return true
		}
	}
	return false
}
