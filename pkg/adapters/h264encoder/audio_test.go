package h264encoder

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/shortgen/pkg/adapters/ffmpegbin"
	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

// adtsFrame builds one AAC-LC ADTS frame at 48 kHz stereo without CRC.
func adtsFrame(payload []byte) []byte {
	frameLen := 7 + len(payload)
	hdr := []byte{
		0xff,
		0xf1,
		0x01<<6 | 0x03<<2 | 0x02>>2,
		byte(0x02&0x03)<<6 | byte(frameLen>>11)&0x03,
		byte(frameLen >> 3),
		byte(frameLen&0x07)<<5 | 0x1f,
		0xfc,
	}
	return append(hdr, payload...)
}

func adtsStream(frames int) []byte {
	var out []byte
	for i := 0; i < frames; i++ {
		out = append(out, adtsFrame([]byte{0x21, byte(i), 0x00, 0x49, 0x90})...)
	}
	return out
}

func TestParseADTS(t *testing.T) {
	track, err := parseADTS(adtsStream(10))
	if err != nil {
		t.Fatalf("parseADTS failed: %v", err)
	}
	if track.sampleRate != 48000 {
		t.Errorf("sampleRate = %d, want 48000", track.sampleRate)
	}
	if track.channels != 2 {
		t.Errorf("channels = %d, want 2", track.channels)
	}
	if len(track.frames) != 10 {
		t.Fatalf("frames = %d, want 10", len(track.frames))
	}
	for i, f := range track.frames {
		if len(f) != 5 || f[1] != byte(i) {
			t.Errorf("frame %d = %x, header not stripped", i, f)
		}
	}
}

func TestParseADTS_LeadingJunk(t *testing.T) {
	data := append([]byte{0x00, 0x12, 0x34}, adtsFrame([]byte{0xaa, 0xbb})...)
	data = append(data, 0x00)
	data = append(data, adtsFrame([]byte{0xcc, 0xdd, 0xee})...)

	track, err := parseADTS(data)
	if err != nil {
		t.Fatalf("parseADTS failed: %v", err)
	}
	if len(track.frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(track.frames))
	}
	if string(track.frames[0]) != "\xaa\xbb" {
		t.Errorf("frame 0 = %x, want aabb", track.frames[0])
	}
	if string(track.frames[1]) != "\xcc\xdd\xee" {
		t.Errorf("frame 1 = %x, want ccddee", track.frames[1])
	}
}

func TestParseADTS_TruncatedTail(t *testing.T) {
	data := adtsStream(3)
	data = append(data, adtsFrame([]byte{1, 2, 3, 4, 5, 6})[:9]...)

	track, err := parseADTS(data)
	if err != nil {
		t.Fatalf("parseADTS failed: %v", err)
	}
	if len(track.frames) != 3 {
		t.Errorf("frames = %d, want 3 (partial frame dropped)", len(track.frames))
	}
}

func TestParseADTS_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("definitely not an adts stream")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseADTS(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestAudioTrack_Trim(t *testing.T) {
	tests := []struct {
		name   string
		frames int
		max    time.Duration
		want   int
	}{
		// 10s at 48 kHz is 480000 samples; frame 468 starts at 479232.
		{"longer than video", 1000, 10 * time.Second, 469},
		{"shorter than video", 100, 10 * time.Second, 100},
		{"exact boundary", 375, 8 * time.Second, 375},
		{"no limit", 50, 0, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := &audioTrack{sampleRate: 48000, channels: 2, frames: make([][]byte, tt.frames)}
			track.trim(tt.max)
			if len(track.frames) != tt.want {
				t.Errorf("frames = %d, want %d", len(track.frames), tt.want)
			}
		})
	}
}

func TestAudioArgs(t *testing.T) {
	args := strings.Join(audioArgs(ports.AudioInput{Path: "in.mp3", MaxDuration: 12 * time.Second}, "out.aac"), " ")
	for _, want := range []string{"-i in.mp3", "-t 12.000", "-c:a aac", "-f adts", "-map 0:a:0", "out.aac", "-y"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
}

func TestFFmpegAudio_MissingFile(t *testing.T) {
	a := &ffmpegAudio{ffmpegPath: "ffmpeg", tempDir: t.TempDir()}
	_, err := a.prepare(context.Background(), ports.AudioInput{
		Path:        filepath.Join(t.TempDir(), "missing.mp3"),
		MaxDuration: 10 * time.Second,
	})
	if !errors.Is(err, video.ErrAudioSourceUnavailable) {
		t.Errorf("error = %v, want ErrAudioSourceUnavailable", err)
	}
}

func TestFFmpegAudio_Transcode(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ffmpeg test in short mode")
	}
	path, err := ffmpegbin.Find("")
	if err != nil {
		t.Skip("ffmpeg not available")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "tone.wav")
	gen := exec.Command(path, "-hide_banner", "-loglevel", "error", "-f", "lavfi",
		"-i", "sine=frequency=440:duration=5", "-ar", "44100", "-y", src)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("cannot generate test tone: %v: %s", err, out)
	}

	a := &ffmpegAudio{ffmpegPath: path, tempDir: dir}
	track, err := a.prepare(context.Background(), ports.AudioInput{Path: src, MaxDuration: 2 * time.Second})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if track.sampleRate != 44100 {
		t.Errorf("sampleRate = %d, want 44100", track.sampleRate)
	}
	if track.channels != 2 {
		t.Errorf("channels = %d, want 2", track.channels)
	}
	d := time.Duration(len(track.frames)*samplesPerAACFrame) * time.Second / time.Duration(track.sampleRate)
	if d < 1900*time.Millisecond || d > 2100*time.Millisecond {
		t.Errorf("Duration = %v, want about 2s", d)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "audio_") {
			t.Errorf("temporary file %s not removed", e.Name())
		}
	}
}
