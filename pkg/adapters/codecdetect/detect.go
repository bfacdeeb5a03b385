// Package codecdetect identifies the video and audio codecs of an MP4 file
// from its sample entries.
package codecdetect

import (
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Codec represents a codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecAAC     Codec = "aac"
	CodecOpus    Codec = "opus"
	CodecAC3     Codec = "ac3"
	CodecUnknown Codec = "unknown"
	CodecNone    Codec = ""
)

// Result holds the first video and audio codec found.
type Result struct {
	Video Codec
	Audio Codec
}

// Detect inspects the tracks of a decoded file. A file without any video
// track is an error.
func Detect(mp4File *mp4.File) (Result, error) {
	res := Result{}
	sawVideo := false
	for _, trak := range Tracks(mp4File) {
		switch handler(trak) {
		case "vide":
			if !sawVideo {
				sawVideo = true
				res.Video = VideoCodec(trak)
			}
		case "soun":
			if res.Audio == CodecNone {
				res.Audio = AudioCodec(trak)
			}
		}
	}
	if !sawVideo {
		return res, fmt.Errorf("no video track found")
	}
	return res, nil
}

// Tracks returns the tracks of a fragmented or progressive file.
func Tracks(mp4File *mp4.File) []*mp4.TrakBox {
	if mp4File.IsFragmented() && mp4File.Init != nil && mp4File.Init.Moov != nil {
		return mp4File.Init.Moov.Traks
	}
	if mp4File.Moov != nil {
		return mp4File.Moov.Traks
	}
	return nil
}

func handler(trak *mp4.TrakBox) string {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
		return ""
	}
	return trak.Mdia.Hdlr.HandlerType
}

func sampleEntries(trak *mp4.TrakBox) []mp4.Box {
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return nil
	}
	return trak.Mdia.Minf.Stbl.Stsd.Children
}

// VideoCodec returns the codec of a video track.
func VideoCodec(trak *mp4.TrakBox) Codec {
	for _, child := range sampleEntries(trak) {
		switch child.Type() {
		case "avc1", "avc3":
			return CodecH264
		case "hvc1", "hev1":
			return CodecHEVC
		case "av01":
			return CodecAV1
		}
	}
	return CodecUnknown
}

// AudioCodec returns the codec of an audio track.
func AudioCodec(trak *mp4.TrakBox) Codec {
	for _, child := range sampleEntries(trak) {
		switch child.Type() {
		case "mp4a":
			return CodecAAC
		case "Opus":
			return CodecOpus
		case "ac-3":
			return CodecAC3
		}
	}
	return CodecUnknown
}
