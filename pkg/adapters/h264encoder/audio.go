package h264encoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/Eyevinn/mp4ff/aac"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

// samplesPerAACFrame is fixed for AAC-LC.
const samplesPerAACFrame = 1024

// audioTrack is an AAC-LC elementary stream split into raw frames.
type audioTrack struct {
	sampleRate int
	channels   int
	frames     [][]byte
}

// audioSource prepares an AAC track from an arbitrary input file.
type audioSource interface {
	prepare(ctx context.Context, in ports.AudioInput) (*audioTrack, error)
}

// ffmpegAudio transcodes through ffmpeg into a temporary ADTS file.
type ffmpegAudio struct {
	ffmpegPath string
	tempDir    string
}

func audioArgs(in ports.AudioInput, output string) []string {
	return ffmpeg.Input(in.Path).Output(output, ffmpeg.KwArgs{
		"map": "0:a:0",
		"t":   fmt.Sprintf("%.3f", in.MaxDuration.Seconds()),
		"c:a": "aac",
		"b:a": "128k",
		"ac":  "2",
		"f":   "adts",
	}).GlobalArgs("-hide_banner", "-loglevel", "error").OverWriteOutput().GetArgs()
}

func (a *ffmpegAudio) prepare(ctx context.Context, in ports.AudioInput) (*audioTrack, error) {
	if _, err := os.Stat(in.Path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", video.ErrAudioSourceUnavailable, in.Path, err)
	}

	// ffmpeg writes a path that does not exist yet.
	tmpDir, err := os.MkdirTemp(a.tempDir, "audio_")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp dir: %v", video.ErrAudioSourceUnavailable, err)
	}
	defer os.RemoveAll(tmpDir)
	tmpPath := filepath.Join(tmpDir, "audio.aac")

	cmd := exec.CommandContext(ctx, a.ffmpegPath, audioArgs(in, tmpPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%w: transcode %s: %v: %s", video.ErrAudioSourceUnavailable, in.Path, err, bytes.TrimSpace(out))
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", video.ErrAudioSourceUnavailable, err)
	}

	track, err := parseADTS(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", video.ErrAudioSourceUnavailable, in.Path, err)
	}
	track.trim(in.MaxDuration)
	if len(track.frames) == 0 {
		return nil, fmt.Errorf("%w: %s: no audio frames", video.ErrAudioSourceUnavailable, in.Path)
	}
	return track, nil
}

// parseADTS splits an ADTS stream into raw AAC frames. Bytes before a sync
// word are skipped and a truncated final frame is dropped.
func parseADTS(data []byte) (*audioTrack, error) {
	track := &audioTrack{}
	for off := 0; off < len(data); {
		hdr, skipped, err := aac.DecodeADTSHeader(bytes.NewReader(data[off:]))
		if err != nil {
			if len(track.frames) > 0 {
				break
			}
			return nil, fmt.Errorf("decode ADTS header at %d: %w", off, err)
		}

		start := off + skipped
		headerLen := int(hdr.HeaderLength)
		payloadLen := int(hdr.PayloadLength)
		if headerLen == 0 || start+headerLen+payloadLen > len(data) {
			break
		}

		if track.sampleRate == 0 {
			track.sampleRate = int(hdr.Frequency())
			track.channels = int(hdr.ChannelConfig)
		}
		track.frames = append(track.frames, data[start+headerLen:start+headerLen+payloadLen])
		off = start + headerLen + payloadLen
	}

	if track.sampleRate == 0 {
		return nil, fmt.Errorf("no ADTS frames")
	}
	return track, nil
}

// trim drops frames that start at or after maxDur.
func (a *audioTrack) trim(maxDur time.Duration) {
	if maxDur <= 0 || a.sampleRate == 0 {
		return
	}
	limit := int64(maxDur) * int64(a.sampleRate) / int64(time.Second)
	n := 0
	for n < len(a.frames) && int64(n)*samplesPerAACFrame < limit {
		n++
	}
	a.frames = a.frames[:n]
}
