package h264encoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/user/shortgen/pkg/ports"
)

// codec is an H.264 encoder fed raw yuv420p pictures.
type codec interface {
	// parameterSets returns the SPS and PPS the encoder will emit.
	parameterSets(ctx context.Context) (sps, pps [][]byte, err error)
	start(ctx context.Context) error
	// submit writes one picture as consecutive planes.
	submit(planes ...[]byte) error
	// drain returns access units that are ready without blocking.
	drain() []accessUnit
	// finish signals end of input and returns every remaining access unit.
	finish() ([]accessUnit, error)
	kill()
}

// encoderArgs builds the ffmpeg command line for profile p.
// B-frames are disabled so output order equals input order, and every
// access unit starts with a delimiter so the stream can be split.
func encoderArgs(p ports.EncoderProfile) []string {
	return ffmpeg.Input("pipe:0", ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": p.PixelFormat,
		"s":       fmt.Sprintf("%dx%d", p.Width, p.Height),
		"r":       strconv.Itoa(p.FrameRate),
	}).Output("pipe:1", ffmpeg.KwArgs{
		"c:v":          "libx264",
		"preset":       "fast",
		"profile:v":    "baseline",
		"level":        "4.0",
		"pix_fmt":      p.PixelFormat,
		"b:v":          strconv.Itoa(p.Bitrate),
		"maxrate":      strconv.Itoa(p.MaxBitrate),
		"bufsize":      strconv.Itoa(p.MaxBitrate * 2),
		"g":            strconv.Itoa(p.GOPSize),
		"keyint_min":   strconv.Itoa(p.GOPSize),
		"sc_threshold": "0",
		"bf":           "0",
		"qmin":         strconv.Itoa(p.QMin),
		"qmax":         strconv.Itoa(p.QMax),
		"x264-params":  "aud=1",
		"f":            "h264",
	}).GlobalArgs("-hide_banner", "-loglevel", "error").GetArgs()
}

// ffmpegCodec runs libx264 through an ffmpeg child process.
type ffmpegCodec struct {
	path    string
	profile ports.EncoderProfile

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *lockedBuffer

	mu      sync.Mutex
	ready   []accessUnit
	readErr error
	done    chan struct{}
}

func newFFmpegCodec(path string, profile ports.EncoderProfile) codec {
	return &ffmpegCodec{path: path, profile: profile}
}

// parameterSets encodes a single mid-gray picture with identical settings.
func (c *ffmpegCodec) parameterSets(ctx context.Context) (sps, pps [][]byte, err error) {
	p := c.profile
	lumaSize := p.Width * p.Height
	picture := make([]byte, lumaSize*3/2)
	for i := range picture {
		picture[i] = 128
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.path, encoderArgs(p)...)
	cmd.Stdin = bytes.NewReader(picture)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, nil, fmt.Errorf("%w: probe: %v: %s", ErrEncodingFailed, err, stderr.String())
	}

	sps, pps = parameterSets(stdout.Bytes())
	if len(sps) == 0 || len(pps) == 0 {
		return nil, nil, ErrNoParameterSets
	}
	return sps, pps, nil
}

func (c *ffmpegCodec) start(ctx context.Context) error {
	c.cmd = exec.CommandContext(ctx, c.path, encoderArgs(c.profile)...)
	c.stderr = &lockedBuffer{}
	c.cmd.Stderr = c.stderr

	stdin, err := c.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	c.stdin = stdin

	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	c.done = make(chan struct{})
	go c.read(stdout)
	return nil
}

// read splits stdout into access units until EOF.
func (c *ffmpegCodec) read(r io.Reader) {
	defer close(c.done)

	buf := make([]byte, 64*1024)
	var pending []byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			var units [][]byte
			units, pending = splitAccessUnits(pending, false)
			pending = append([]byte(nil), pending...)
			c.push(units)
		}
		if err == io.EOF {
			units, _ := splitAccessUnits(pending, true)
			c.push(units)
			return
		}
		if err != nil {
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			return
		}
	}
}

func (c *ffmpegCodec) push(units [][]byte) {
	if len(units) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range units {
		c.ready = append(c.ready, newAccessUnit(u))
	}
}

func (c *ffmpegCodec) submit(planes ...[]byte) error {
	if c.stdin == nil {
		return ErrInvalidState
	}
	for _, plane := range planes {
		if _, err := c.stdin.Write(plane); err != nil {
			return fmt.Errorf("%w: write frame: %v: %s", ErrEncodingFailed, err, c.stderr.String())
		}
	}
	return nil
}

func (c *ffmpegCodec) drain() []accessUnit {
	c.mu.Lock()
	defer c.mu.Unlock()
	units := c.ready
	c.ready = nil
	return units
}

func (c *ffmpegCodec) finish() ([]accessUnit, error) {
	if c.stdin == nil {
		return nil, ErrInvalidState
	}
	c.stdin.Close()
	c.stdin = nil

	// All reads must complete before Wait closes the pipes.
	<-c.done
	if err := c.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrEncodingFailed, err, c.stderr.String())
	}

	c.mu.Lock()
	readErr := c.readErr
	c.mu.Unlock()
	if readErr != nil {
		return nil, fmt.Errorf("%w: read output: %v", ErrEncodingFailed, readErr)
	}
	return c.drain(), nil
}

func (c *ffmpegCodec) kill() {
	if c.cmd == nil || c.cmd.Process == nil {
		return
	}
	if c.stdin != nil {
		c.stdin.Close()
		c.stdin = nil
	}
	c.cmd.Process.Kill()
	<-c.done
	c.cmd.Wait()
	c.cmd = nil
}

// lockedBuffer collects stderr while exec copies into it from another goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
