package ports

import (
	"context"
	"time"

	"github.com/user/shortgen/pkg/media"
	"github.com/user/shortgen/pkg/video"
)

// FrameEncoder is a single-use encode and mux session.
// Calls must follow Open, WriteHeader, EncodeFrame*, Flush, Finalize.
// Abandon may be called at any point and releases everything without a trailer.
type FrameEncoder interface {
	// Open configures the encoder, opens the output file and audio source.
	Open(ctx context.Context, cfg EncoderConfig) error

	// WriteHeader writes the container header.
	WriteHeader() error

	// EncodeFrame submits one picture with the given PTS in encoder time base
	// and writes every packet that became ready.
	EncodeFrame(pic *video.YUV420, pts int64) error

	// Flush signals end of input and writes all remaining packets.
	Flush() error

	// Finalize writes the trailer and closes the output.
	Finalize() (EncodeStats, error)

	// Abandon stops the session and closes the output without a trailer.
	Abandon()
}

// FrameEncoderFactory returns a fresh FrameEncoder for each session.
type FrameEncoderFactory func() FrameEncoder

// EncoderConfig configures one FrameEncoder session.
type EncoderConfig struct {
	OutputPath string
	Profile    EncoderProfile
	Audio      *AudioInput
}

// AudioInput is an optional audio track trimmed to MaxDuration.
type AudioInput struct {
	Path        string
	MaxDuration time.Duration
}

// EncoderProfile holds the fixed video encoding parameters.
type EncoderProfile struct {
	Width       int
	Height      int
	PixelFormat string
	FrameRate   int
	TimeBase    media.Rational
	Bitrate     int // bits per second
	MaxBitrate  int // bits per second
	GOPSize     int
	QMin        int
	QMax        int
}

// DefaultProfile returns the vertical short-form profile.
func DefaultProfile() EncoderProfile {
	return EncoderProfile{
		Width:       video.Width,
		Height:      video.Height,
		PixelFormat: "yuv420p",
		FrameRate:   video.FrameRate,
		TimeBase:    media.R(1, video.FrameRate),
		Bitrate:     2_000_000,
		MaxBitrate:  2_500_000,
		GOPSize:     30,
		QMin:        10,
		QMax:        51,
	}
}

// EncodeStats summarizes a finished session.
type EncodeStats struct {
	Frames       int
	VideoPackets int
	AudioPackets int
	Bytes        int64
}

// Muxer writes packets into a container file.
type Muxer interface {
	// AddVideoStream registers the video stream and returns its index.
	AddVideoStream(info VideoStreamInfo) (int, error)

	// AddAudioStream registers an audio stream and returns its index.
	AddAudioStream(info AudioStreamInfo) (int, error)

	// GlobalHeader reports whether codec parameter sets must be supplied
	// out of band before WriteHeader.
	GlobalHeader() bool

	// StreamTimeBase returns the time base packets for stream idx must use.
	StreamTimeBase(idx int) media.Rational

	// WriteHeader writes the container header.
	WriteHeader() error

	// WritePacket writes one packet already rescaled to the stream time base.
	WritePacket(pkt *media.Packet) error

	// WriteTrailer writes buffered data and closes the file.
	WriteTrailer() error

	// Close releases the file without writing a trailer.
	Close() error
}

// VideoStreamInfo describes an H.264 video stream.
type VideoStreamInfo struct {
	Width  int
	Height int
	SPS    [][]byte
	PPS    [][]byte
}

// AudioStreamInfo describes an AAC audio stream.
type AudioStreamInfo struct {
	SampleRate int
	Channels   int
}
