// Package h264decoder decodes single H.264 access units through an ffmpeg
// child process and extracts raw samples from MP4 files.
package h264decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"sync"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/user/shortgen/pkg/adapters/ffmpegbin"
	"github.com/user/shortgen/pkg/ports"
)

var (
	// ErrNotInitialized is returned when decoder methods are called before initialization.
	ErrNotInitialized = errors.New("h264decoder: decoder not initialized")

	// ErrDecodeFailed is returned when decoding a frame fails.
	ErrDecodeFailed = errors.New("h264decoder: decode failed")
)

// decodeTimeout bounds a single ffmpeg invocation.
const decodeTimeout = 30 * time.Second

// Decoder decodes H.264 access units to images with ffmpeg.
type Decoder struct {
	mu          sync.Mutex
	customPath  string
	ffmpegPath  string
	initialized bool
}

// New creates a new H.264 decoder. An empty ffmpegPath searches the system.
func New(ffmpegPath string) *Decoder {
	return &Decoder{customPath: ffmpegPath}
}

// Init locates ffmpeg.
func (d *Decoder) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	path, err := ffmpegbin.Find(d.customPath)
	if err != nil {
		return err
	}
	d.ffmpegPath = path
	d.initialized = true
	return nil
}

func decodeArgs() []string {
	return ffmpeg.Input("pipe:0", ffmpeg.KwArgs{"f": "h264"}).
		Output("pipe:1", ffmpeg.KwArgs{
			"frames:v": "1",
			"f":        "image2pipe",
			"c:v":      "png",
		}).
		GlobalArgs("-hide_banner", "-loglevel", "error").
		GetArgs()
}

// DecodeFrame decodes the first picture of an Annex B stream. The stream must
// carry its own SPS and PPS.
func (d *Decoder) DecodeFrame(data []byte) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return nil, ErrNotInitialized
	}
	if len(data) == 0 {
		return nil, ErrDecodeFailed
	}

	ctx, cancel := context.WithTimeout(context.Background(), decodeTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.ffmpegPath, decodeArgs()...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrDecodeFailed, err, bytes.TrimSpace(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: no picture produced", ErrDecodeFailed)
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: decode png: %v", ErrDecodeFailed, err)
	}
	return img, nil
}

// Close releases decoder resources.
func (d *Decoder) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.initialized = false
}

// Ensure Decoder implements ports.FrameDecoder
var _ ports.FrameDecoder = (*Decoder)(nil)
