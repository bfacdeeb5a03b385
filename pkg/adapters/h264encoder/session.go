// Package h264encoder encodes planar YUV pictures to H.264 with libx264
// (ffmpeg child process) and muxes them, with optional AAC audio, to MP4.
package h264encoder

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/user/shortgen/pkg/adapters/ffmpegbin"
	"github.com/user/shortgen/pkg/adapters/logger"
	"github.com/user/shortgen/pkg/adapters/mp4mux"
	"github.com/user/shortgen/pkg/media"
	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

// Session implements ports.FrameEncoder. A Session is single-use.
type Session struct {
	mu    sync.Mutex
	state State

	ffmpegPath string
	tempDir    string
	log        ports.Logger

	findFFmpeg func(custom string) (string, error)
	newCodec   func(ffmpegPath string, profile ports.EncoderProfile) codec
	newMuxer   func(path string) (ports.Muxer, error)
	audioSrc   audioSource

	cfg      ports.EncoderConfig
	codec    codec
	mux      ports.Muxer
	videoIdx int
	audioIdx int
	audio    *audioTrack
	sps      [][]byte
	pps      [][]byte

	pending      []int64 // submitted PTS values awaiting a packet
	frames       int
	videoPackets int
	audioPackets int
}

// Option configures a Session.
type Option func(*Session)

// WithFFmpegPath sets an explicit ffmpeg executable.
func WithFFmpegPath(path string) Option {
	return func(s *Session) {
		s.ffmpegPath = path
	}
}

// WithTempDir sets the directory for intermediate audio files.
func WithTempDir(dir string) Option {
	return func(s *Session) {
		s.tempDir = dir
	}
}

// WithLogger sets the component logger.
func WithLogger(log ports.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// NewSession creates an unopened session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		log:        logger.NewNoop(),
		findFFmpeg: ffmpegbin.Find,
		newCodec:   newFFmpegCodec,
		newMuxer:   createMP4,
		audioIdx:   -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func createMP4(path string) (ports.Muxer, error) {
	return mp4mux.Create(path)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) expect(allowed ...State) error {
	for _, st := range allowed {
		if s.state == st {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidState, s.state)
}

// fail abandons the session and wraps err as an encoder session failure.
// Audio failures keep their own classification.
func (s *Session) fail(err error) error {
	s.abandonLocked()
	if errorsIsAudio(err) {
		return err
	}
	return fmt.Errorf("%w: %w", video.ErrEncoderSession, err)
}

// Open validates the profile, prepares audio, captures parameter sets, opens
// the output and starts the encoder.
func (s *Session) Open(ctx context.Context, cfg ports.EncoderConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(StateUnopened); err != nil {
		return err
	}
	if err := checkProfile(cfg.Profile); err != nil {
		return s.fail(err)
	}
	s.cfg = cfg

	if cfg.Audio != nil {
		if _, err := os.Stat(cfg.Audio.Path); err != nil {
			return s.fail(fmt.Errorf("%w: %s: %v", video.ErrAudioSourceUnavailable, cfg.Audio.Path, err))
		}
	}

	path, err := s.findFFmpeg(s.ffmpegPath)
	if err != nil {
		return s.fail(err)
	}
	s.ffmpegPath = path
	if s.audioSrc == nil {
		s.audioSrc = &ffmpegAudio{ffmpegPath: path, tempDir: s.tempDir}
	}

	if cfg.Audio != nil {
		track, err := s.audioSrc.prepare(ctx, *cfg.Audio)
		if err != nil {
			return s.fail(err)
		}
		s.audio = track
		s.log.Debug("Audio prepared: %d frames at %d Hz", len(track.frames), track.sampleRate)
	}

	s.log.Debug("Starting encoder: %s", s.ffmpegPath)
	s.codec = s.newCodec(s.ffmpegPath, cfg.Profile)

	mux, err := s.newMuxer(cfg.OutputPath)
	if err != nil {
		return s.fail(err)
	}
	s.mux = mux

	info := ports.VideoStreamInfo{Width: cfg.Profile.Width, Height: cfg.Profile.Height}
	if mux.GlobalHeader() {
		sps, pps, err := s.codec.parameterSets(ctx)
		if err != nil {
			return s.fail(err)
		}
		s.sps, s.pps = sps, pps
		info.SPS, info.PPS = sps, pps
		s.log.Debug("Parameter sets captured: SPS %d bytes, PPS %d bytes", len(sps[0]), len(pps[0]))
	}

	if s.videoIdx, err = mux.AddVideoStream(info); err != nil {
		return s.fail(err)
	}
	if s.audio != nil {
		s.audioIdx, err = mux.AddAudioStream(ports.AudioStreamInfo{
			SampleRate: s.audio.sampleRate,
			Channels:   s.audio.channels,
		})
		if err != nil {
			return s.fail(err)
		}
	}

	if err := s.codec.start(ctx); err != nil {
		return s.fail(err)
	}

	s.state = StateConfigured
	return nil
}

func checkProfile(p ports.EncoderProfile) error {
	switch {
	case p.PixelFormat != "yuv420p":
		return fmt.Errorf("%w: pixel format %s", ErrUnsupportedProfile, p.PixelFormat)
	case p.Width <= 0 || p.Height <= 0 || p.Width%2 != 0 || p.Height%2 != 0:
		return fmt.Errorf("%w: dimensions %dx%d", ErrUnsupportedProfile, p.Width, p.Height)
	case p.FrameRate <= 0 || p.TimeBase.Num <= 0 || p.TimeBase.Den <= 0:
		return fmt.Errorf("%w: frame rate %d, time base %v", ErrUnsupportedProfile, p.FrameRate, p.TimeBase)
	case p.GOPSize <= 0:
		return fmt.Errorf("%w: GOP size %d", ErrUnsupportedProfile, p.GOPSize)
	case p.QMin < 0 || p.QMax > 51 || p.QMin > p.QMax:
		return fmt.Errorf("%w: quantizer range %d-%d", ErrUnsupportedProfile, p.QMin, p.QMax)
	}
	return nil
}

// WriteHeader writes the container header and queues the audio track.
func (s *Session) WriteHeader() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(StateConfigured); err != nil {
		return err
	}
	if err := s.mux.WriteHeader(); err != nil {
		return s.fail(err)
	}

	if s.audio != nil {
		tb := media.R(1, int64(s.audio.sampleRate))
		for i, frame := range s.audio.frames {
			pkt := &media.Packet{
				Data:        frame,
				PTS:         int64(i) * samplesPerAACFrame,
				DTS:         int64(i) * samplesPerAACFrame,
				Duration:    samplesPerAACFrame,
				TimeBase:    tb,
				StreamIndex: s.audioIdx,
				Keyframe:    true,
			}
			pkt.Rescale(s.mux.StreamTimeBase(s.audioIdx))
			if err := s.mux.WritePacket(pkt); err != nil {
				return s.fail(err)
			}
			s.audioPackets++
		}
	}

	s.state = StateHeaderWritten
	return nil
}

// EncodeFrame submits pic with the given PTS and writes every ready packet.
func (s *Session) EncodeFrame(pic *video.YUV420, pts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(StateHeaderWritten, StateEncoding); err != nil {
		return err
	}
	p := s.cfg.Profile
	if pic.Width != p.Width || pic.Height != p.Height {
		return s.fail(fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize, pic.Width, pic.Height, p.Width, p.Height))
	}

	if err := s.codec.submit(pic.Y, pic.U, pic.V); err != nil {
		return s.fail(err)
	}
	s.pending = append(s.pending, pts)
	s.frames++
	s.state = StateEncoding

	if err := s.writeUnits(s.codec.drain()); err != nil {
		return s.fail(err)
	}
	return nil
}

// Flush ends input and writes every remaining packet.
func (s *Session) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(StateHeaderWritten, StateEncoding); err != nil {
		return err
	}

	units, err := s.codec.finish()
	if err != nil {
		return s.fail(err)
	}
	if err := s.writeUnits(units); err != nil {
		return s.fail(err)
	}
	if s.videoPackets != s.frames {
		return s.fail(fmt.Errorf("%w: %d packets for %d frames", ErrEncodingFailed, s.videoPackets, s.frames))
	}

	s.state = StateFlushed
	return nil
}

// writeUnits assigns PTS in submission order, rescales and writes.
func (s *Session) writeUnits(units []accessUnit) error {
	tb := s.mux.StreamTimeBase(s.videoIdx)
	for _, au := range units {
		if len(s.pending) == 0 {
			return fmt.Errorf("%w: more packets than submitted frames", ErrEncodingFailed)
		}
		pts := s.pending[0]
		s.pending = s.pending[1:]

		// avcC is already written, so a different SPS or PPS cannot be signalled.
		if au.keyframe && s.sps != nil {
			sps, pps := parameterSets(au.data)
			if !sameSets(sps, s.sps) || !sameSets(pps, s.pps) {
				return fmt.Errorf("%w: parameter sets changed at frame %d", ErrEncodingFailed, s.videoPackets)
			}
		}

		pkt := &media.Packet{
			Data:        au.data,
			PTS:         pts,
			DTS:         pts,
			Duration:    1,
			TimeBase:    s.cfg.Profile.TimeBase,
			StreamIndex: s.videoIdx,
			Keyframe:    au.keyframe,
		}
		pkt.Rescale(tb)
		if err := s.mux.WritePacket(pkt); err != nil {
			return err
		}
		s.videoPackets++
	}
	return nil
}

// sameSets treats an absent in-band set as unchanged.
func sameSets(inBand, global [][]byte) bool {
	for _, n := range inBand {
		if !containsNalu(global, n) {
			return false
		}
	}
	return true
}

// Finalize writes the trailer and closes the output.
func (s *Session) Finalize() (ports.EncodeStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(StateFlushed); err != nil {
		return ports.EncodeStats{}, err
	}
	if err := s.mux.WriteTrailer(); err != nil {
		return ports.EncodeStats{}, s.fail(err)
	}
	s.state = StateFinalized

	stats := ports.EncodeStats{
		Frames:       s.frames,
		VideoPackets: s.videoPackets,
		AudioPackets: s.audioPackets,
	}
	if info, err := os.Stat(s.cfg.OutputPath); err == nil {
		stats.Bytes = info.Size()
	}
	return stats, nil
}

// Abandon stops the encoder and closes the output without a trailer.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abandonLocked()
}

func (s *Session) abandonLocked() {
	if s.state == StateFinalized || s.state == StateAbandoned {
		return
	}
	if s.codec != nil {
		s.codec.kill()
	}
	if s.mux != nil {
		s.mux.Close()
	}
	s.state = StateAbandoned
}

// Ensure Session implements ports.FrameEncoder
var _ ports.FrameEncoder = (*Session)(nil)
