package h264encoder

import (
	"bytes"

	"github.com/Eyevinn/mp4ff/avc"
)

// accessUnit is one encoded picture in Annex B form.
type accessUnit struct {
	data     []byte
	keyframe bool
}

func newAccessUnit(data []byte) accessUnit {
	return accessUnit{data: data, keyframe: containsIDR(data)}
}

func containsIDR(data []byte) bool {
	for _, nalu := range avc.ExtractNalusFromByteStream(data) {
		if len(nalu) > 0 && avc.GetNaluType(nalu[0]) == avc.NALU_IDR {
			return true
		}
	}
	return false
}

// splitAccessUnits cuts an Annex B stream at access unit delimiters.
// Without final, the trailing unit may be incomplete and is returned as rest.
func splitAccessUnits(buf []byte, final bool) (units [][]byte, rest []byte) {
	starts := delimiterOffsets(buf)
	if len(starts) == 0 {
		if final && len(buf) > 0 {
			return [][]byte{buf}, nil
		}
		return nil, buf
	}

	// Bytes ahead of the first delimiter belong to the first unit.
	starts[0] = 0
	for i := 0; i < len(starts)-1; i++ {
		units = append(units, buf[starts[i]:starts[i+1]])
	}

	last := buf[starts[len(starts)-1]:]
	if final {
		if len(last) > 0 {
			units = append(units, last)
		}
		return units, nil
	}
	return units, last
}

// delimiterOffsets returns the start code offsets of every AUD NAL unit.
func delimiterOffsets(buf []byte) []int {
	var offsets []int
	startCode := []byte{0, 0, 1}
	for i := 0; i+3 < len(buf); {
		j := bytes.Index(buf[i:], startCode)
		if j < 0 || i+j+3 >= len(buf) {
			break
		}
		p := i + j
		if avc.GetNaluType(buf[p+3]) == avc.NALU_AUD {
			start := p
			if start > 0 && buf[start-1] == 0 {
				start--
			}
			offsets = append(offsets, start)
		}
		i = p + 3
	}
	return offsets
}

// parameterSets collects distinct SPS and PPS units from an Annex B stream.
func parameterSets(data []byte) (sps, pps [][]byte) {
	for _, nalu := range avc.ExtractNalusFromByteStream(data) {
		if len(nalu) == 0 {
			continue
		}
		switch avc.GetNaluType(nalu[0]) {
		case avc.NALU_SPS:
			if !containsNalu(sps, nalu) {
				sps = append(sps, append([]byte(nil), nalu...))
			}
		case avc.NALU_PPS:
			if !containsNalu(pps, nalu) {
				pps = append(pps, append([]byte(nil), nalu...))
			}
		}
	}
	return sps, pps
}

func containsNalu(set [][]byte, nalu []byte) bool {
	for _, s := range set {
		if bytes.Equal(s, nalu) {
			return true
		}
	}
	return false
}
