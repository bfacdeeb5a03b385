package h264decoder

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/mp4"
)

// RawFrame is one H.264 sample in Annex B form. Keyframes are prefixed with
// the SPS and PPS from avcC so they decode on their own.
type RawFrame struct {
	Data        []byte
	TimestampMs int
	Duration    int
	IsKeyframe  bool
}

// ExtractFrames extracts up to limit raw frames from MP4 data. A limit of
// zero or less extracts every frame.
func ExtractFrames(mp4Data []byte, limit int) ([]RawFrame, error) {
	reader := bytes.NewReader(mp4Data)

	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}
	return ExtractFromFile(mp4File, reader, limit)
}

// ExtractFromFile extracts frames from an already decoded file. reader must
// be the source of mp4File.
func ExtractFromFile(mp4File *mp4.File, reader io.ReadSeeker, limit int) ([]RawFrame, error) {
	if mp4File.IsFragmented() {
		return extractFramesFragmented(mp4File, limit)
	}
	return extractFramesProgressive(mp4File, reader, limit)
}

// videoTrack holds what extraction needs from the first video track.
type videoTrack struct {
	trak      *mp4.TrakBox
	timescale uint32
	spsPPS    []byte
}

func findVideoTrack(traks []*mp4.TrakBox) *videoTrack {
	for _, trak := range traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		vt := &videoTrack{trak: trak, timescale: 1000}
		if trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale != 0 {
			vt.timescale = trak.Mdia.Mdhd.Timescale
		}

		// SPS/PPS in Annex B format
		if trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil && trak.Mdia.Minf.Stbl.Stsd != nil {
			for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
				avc1, ok := child.(*mp4.VisualSampleEntryBox)
				if !ok || avc1.AvcC == nil {
					continue
				}
				for _, sps := range avc1.AvcC.SPSnalus {
					vt.spsPPS = append(vt.spsPPS, 0, 0, 0, 1)
					vt.spsPPS = append(vt.spsPPS, sps...)
				}
				for _, pps := range avc1.AvcC.PPSnalus {
					vt.spsPPS = append(vt.spsPPS, 0, 0, 0, 1)
					vt.spsPPS = append(vt.spsPPS, pps...)
				}
			}
		}
		return vt
	}
	return nil
}

func (vt *videoTrack) frame(sample []byte, decodeTime uint64, dur uint32, keyframe bool) RawFrame {
	annexB := avccToAnnexB(sample)
	data := annexB
	if keyframe {
		data = make([]byte, len(vt.spsPPS)+len(annexB))
		copy(data, vt.spsPPS)
		copy(data[len(vt.spsPPS):], annexB)
	}
	return RawFrame{
		Data:        data,
		TimestampMs: int(decodeTime * 1000 / uint64(vt.timescale)),
		Duration:    int(uint64(dur) * 1000 / uint64(vt.timescale)),
		IsKeyframe:  keyframe,
	}
}

func extractFramesProgressive(mp4File *mp4.File, reader io.ReadSeeker, limit int) ([]RawFrame, error) {
	if mp4File.Moov == nil {
		return nil, fmt.Errorf("no moov box found")
	}
	vt := findVideoTrack(mp4File.Moov.Traks)
	if vt == nil {
		return nil, fmt.Errorf("no video track found")
	}

	// Get stbl (sample table)
	if vt.trak.Mdia.Minf == nil || vt.trak.Mdia.Minf.Stbl == nil {
		return nil, fmt.Errorf("no sample table found")
	}
	stbl := vt.trak.Mdia.Minf.Stbl
	if stbl.Stsz == nil {
		return nil, fmt.Errorf("no stsz box found")
	}

	// Build sync sample set (keyframes)
	syncSamples := make(map[uint32]bool)
	if stbl.Stss != nil {
		for _, sampleNr := range stbl.Stss.SampleNumber {
			syncSamples[sampleNr] = true
		}
	}

	var frames []RawFrame
	for sampleNr := uint32(1); sampleNr <= stbl.Stsz.SampleNumber; sampleNr++ {
		if limit > 0 && len(frames) >= limit {
			break
		}
		sample, err := getSampleData(stbl, reader, sampleNr)
		if err != nil {
			continue
		}

		var decodeTime uint64
		var dur uint32
		if stbl.Stts != nil {
			decodeTime, dur = stbl.Stts.GetDecodeTime(sampleNr)
		}
		keyframe := syncSamples[sampleNr] || len(syncSamples) == 0
		frames = append(frames, vt.frame(sample, decodeTime, dur, keyframe))
	}

	return frames, nil
}

func extractFramesFragmented(mp4File *mp4.File, limit int) ([]RawFrame, error) {
	if mp4File.Init == nil || mp4File.Init.Moov == nil {
		return nil, fmt.Errorf("no init segment found")
	}
	vt := findVideoTrack(mp4File.Init.Moov.Traks)
	if vt == nil {
		return nil, fmt.Errorf("no video track found")
	}
	trackID := vt.trak.Tkhd.TrackID

	var trex *mp4.TrexBox
	if mp4File.Init.Moov.Mvex != nil {
		for _, t := range mp4File.Init.Moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var frames []RawFrame
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != trackID {
					continue
				}

				samples, err := frag.GetFullSamples(trex)
				if err != nil {
					return nil, fmt.Errorf("get samples: %w", err)
				}
				for i, sample := range samples {
					if limit > 0 && len(frames) >= limit {
						return frames, nil
					}
					keyframe := sample.Flags == mp4.SyncSampleFlags || (len(frames) == 0 && i == 0)
					frames = append(frames, vt.frame(sample.Data, sample.DecodeTime, sample.Dur, keyframe))
				}
			}
		}
	}

	return frames, nil
}

// getSampleData reads sample data from a progressive MP4 file
func getSampleData(stbl *mp4.StblBox, reader io.ReadSeeker, sampleNr uint32) ([]byte, error) {
	if stbl.Stsc == nil || stbl.Stsz == nil {
		return nil, fmt.Errorf("missing stsc or stsz box")
	}

	chunkNr, firstSampleInChunk, err := stbl.Stsc.ChunkNrFromSampleNr(int(sampleNr))
	if err != nil {
		return nil, fmt.Errorf("get chunk nr: %w", err)
	}

	var chunkOffset uint64
	if stbl.Stco != nil {
		chunkOffset, err = stbl.Stco.GetOffset(chunkNr)
		if err != nil {
			return nil, fmt.Errorf("get chunk offset: %w", err)
		}
	} else if stbl.Co64 != nil {
		if chunkNr < 1 || chunkNr > len(stbl.Co64.ChunkOffset) {
			return nil, fmt.Errorf("chunk nr out of range")
		}
		chunkOffset = stbl.Co64.ChunkOffset[chunkNr-1]
	} else {
		return nil, fmt.Errorf("no stco or co64 box")
	}

	offset := chunkOffset
	for s := uint32(firstSampleInChunk); s < sampleNr; s++ {
		offset += uint64(stbl.Stsz.GetSampleSize(int(s)))
	}
	sampleSize := stbl.Stsz.GetSampleSize(int(sampleNr))

	if _, err := reader.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to sample: %w", err)
	}
	data := make([]byte, sampleSize)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("read sample: %w", err)
	}
	return data, nil
}

// avccToAnnexB converts AVCC format (length-prefixed NALUs) to Annex B format (start code prefixed)
func avccToAnnexB(data []byte) []byte {
	var result []byte
	offset := 0

	for offset+4 <= len(data) {
		naluLen := int(data[offset])<<24 | int(data[offset+1])<<16 |
			int(data[offset+2])<<8 | int(data[offset+3])
		offset += 4

		if offset+naluLen > len(data) {
			break
		}

		result = append(result, 0, 0, 0, 1)
		result = append(result, data[offset:offset+naluLen]...)
		offset += naluLen
	}

	return result
}
