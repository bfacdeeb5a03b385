// Package mp4mux writes fragmented MP4 files with one H.264 video track and
// an optional AAC audio track.
//
// The header (ftyp + moov) is written before any media. Video is cut into one
// fragment per GOP; audio covering the same span follows in its own fragment.
package mp4mux

import (
	"bufio"
	"fmt"
	"os"

	"github.com/Eyevinn/mp4ff/aac"
	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/shortgen/pkg/media"
	"github.com/user/shortgen/pkg/ports"
)

// VideoTimescale is the video track timescale. 15360 is divisible by 30.
const VideoTimescale = 15360

type track struct {
	index     int
	id        uint32
	timescale uint32
	samples   []mp4.FullSample
	count     int
}

// Muxer implements ports.Muxer on top of mp4ff.
type Muxer struct {
	path string
	file *os.File
	w    *bufio.Writer

	init  *mp4.InitSegment
	video *track
	audio *track
	sps   [][]byte
	pps   [][]byte

	seq           uint32
	headerWritten bool
	finalized     bool
	closed        bool
	inBand        int
}

// Create opens path for writing, truncating any existing file.
func Create(path string) (*Muxer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &Muxer{
		path: path,
		file: f,
		w:    bufio.NewWriterSize(f, 1<<20),
		init: mp4.CreateEmptyInit(),
		seq:  1,
	}, nil
}

// Path returns the output path.
func (m *Muxer) Path() string {
	return m.path
}

// GlobalHeader is always true: SPS and PPS live in the avcC box.
func (m *Muxer) GlobalHeader() bool {
	return true
}

// AddVideoStream adds the avc1 track.
func (m *Muxer) AddVideoStream(info ports.VideoStreamInfo) (int, error) {
	if err := m.checkConfigurable(); err != nil {
		return 0, err
	}
	if m.video != nil {
		return 0, fmt.Errorf("mp4mux: video stream already added")
	}

	avcC, err := mp4.CreateAvcC(info.SPS, info.PPS, true)
	if err != nil {
		return 0, fmt.Errorf("create avcC: %w", err)
	}

	m.init.AddEmptyTrack(VideoTimescale, "video", "und")
	trak := m.init.Moov.Traks[len(m.init.Moov.Traks)-1]

	avc1 := mp4.CreateVisualSampleEntryBox("avc1", uint16(info.Width), uint16(info.Height), avcC)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(avc1)
	trak.Tkhd.Width = mp4.Fixed32(info.Width << 16)
	trak.Tkhd.Height = mp4.Fixed32(info.Height << 16)

	m.video = &track{
		index:     m.streamCount(),
		id:        trak.Tkhd.TrackID,
		timescale: VideoTimescale,
	}
	m.sps = info.SPS
	m.pps = info.PPS
	return m.video.index, nil
}

// AddAudioStream adds an AAC-LC track with timescale equal to the sample rate.
func (m *Muxer) AddAudioStream(info ports.AudioStreamInfo) (int, error) {
	if err := m.checkConfigurable(); err != nil {
		return 0, err
	}
	if m.audio != nil {
		return 0, fmt.Errorf("mp4mux: audio stream already added")
	}
	if info.SampleRate <= 0 {
		return 0, fmt.Errorf("mp4mux: invalid sample rate %d", info.SampleRate)
	}

	m.init.AddEmptyTrack(uint32(info.SampleRate), "audio", "und")
	trak := m.init.Moov.Traks[len(m.init.Moov.Traks)-1]
	if err := trak.SetAACDescriptor(aac.AAClc, info.SampleRate); err != nil {
		return 0, fmt.Errorf("set AAC descriptor: %w", err)
	}

	m.audio = &track{
		index:     m.streamCount(),
		id:        trak.Tkhd.TrackID,
		timescale: uint32(info.SampleRate),
	}
	return m.audio.index, nil
}

func (m *Muxer) streamCount() int {
	n := 0
	if m.video != nil {
		n++
	}
	if m.audio != nil {
		n++
	}
	return n
}

func (m *Muxer) checkConfigurable() error {
	if m.finalized || m.closed {
		return ErrFinalized
	}
	if m.headerWritten {
		return ErrHeaderWritten
	}
	return nil
}

// StreamTimeBase returns 1/timescale of the stream.
func (m *Muxer) StreamTimeBase(idx int) media.Rational {
	if t := m.track(idx); t != nil {
		return media.R(1, int64(t.timescale))
	}
	return media.R(1, VideoTimescale)
}

func (m *Muxer) track(idx int) *track {
	if m.video != nil && m.video.index == idx {
		return m.video
	}
	if m.audio != nil && m.audio.index == idx {
		return m.audio
	}
	return nil
}

// WriteHeader writes ftyp and moov.
func (m *Muxer) WriteHeader() error {
	if err := m.checkConfigurable(); err != nil {
		return err
	}
	if m.video == nil {
		return ErrNoVideoStream
	}

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso6", "avc1", "mp41"})
	if err := ftyp.Encode(m.w); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}
	if err := m.init.Moov.Encode(m.w); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}

	m.headerWritten = true
	return nil
}

// WritePacket buffers one packet. Video packets must arrive in decode order.
func (m *Muxer) WritePacket(pkt *media.Packet) error {
	if m.finalized || m.closed {
		return ErrFinalized
	}
	if !m.headerWritten {
		return ErrHeaderNotWritten
	}

	t := m.track(pkt.StreamIndex)
	if t == nil {
		return fmt.Errorf("%w: %d", ErrUnknownStream, pkt.StreamIndex)
	}
	if tb := media.R(1, int64(t.timescale)); pkt.TimeBase != tb {
		return fmt.Errorf("mp4mux: packet time base %v, stream expects %v", pkt.TimeBase, tb)
	}

	if t == m.video {
		return m.writeVideo(pkt)
	}
	m.audio.samples = append(m.audio.samples, mp4.FullSample{
		Sample: mp4.Sample{
			Flags: mp4.SyncSampleFlags,
			Size:  uint32(len(pkt.Data)),
			Dur:   uint32(pkt.Duration),
		},
		DecodeTime: uint64(pkt.DTS),
		Data:       pkt.Data,
	})
	return nil
}

func (m *Muxer) writeVideo(pkt *media.Packet) error {
	if pkt.Keyframe && len(m.video.samples) > 0 {
		if err := m.flushGOP(); err != nil {
			return err
		}
	}

	data, inBand := toAVCC(pkt.Data, m.sps, m.pps)
	m.inBand += inBand

	flags := mp4.NonSyncSampleFlags
	if pkt.Keyframe {
		flags = mp4.SyncSampleFlags
	}

	m.video.samples = append(m.video.samples, mp4.FullSample{
		Sample: mp4.Sample{
			Flags:                 flags,
			Size:                  uint32(len(data)),
			Dur:                   uint32(pkt.Duration),
			CompositionTimeOffset: int32(pkt.PTS - pkt.DTS),
		},
		DecodeTime: uint64(pkt.DTS),
		Data:       data,
	})
	return nil
}

// flushGOP writes buffered video as one fragment, followed by the audio that
// starts before the end of that video.
func (m *Muxer) flushGOP() error {
	samples := m.video.samples
	if len(samples) == 0 {
		return nil
	}
	last := samples[len(samples)-1]
	end := last.DecodeTime + uint64(last.Dur)

	if err := m.writeFragment(m.video, samples); err != nil {
		return err
	}
	m.video.samples = nil

	if m.audio == nil || len(m.audio.samples) == 0 {
		return nil
	}

	// a.DecodeTime/audioTS < end/videoTS
	n := 0
	for _, s := range m.audio.samples {
		if s.DecodeTime*uint64(m.video.timescale) >= end*uint64(m.audio.timescale) {
			break
		}
		n++
	}
	if n == 0 {
		return nil
	}
	if err := m.writeFragment(m.audio, m.audio.samples[:n]); err != nil {
		return err
	}
	m.audio.samples = m.audio.samples[n:]
	return nil
}

func (m *Muxer) writeFragment(t *track, samples []mp4.FullSample) error {
	frag, err := mp4.CreateFragment(m.seq, t.id)
	if err != nil {
		return fmt.Errorf("create fragment: %w", err)
	}
	for _, s := range samples {
		frag.AddFullSample(s)
	}
	if err := frag.Encode(m.w); err != nil {
		return fmt.Errorf("encode fragment %d: %w", m.seq, err)
	}
	m.seq++
	t.count += len(samples)
	return nil
}

// WriteTrailer writes every buffered sample, syncs and closes the file.
func (m *Muxer) WriteTrailer() error {
	if m.finalized || m.closed {
		return ErrFinalized
	}
	if !m.headerWritten {
		return ErrHeaderNotWritten
	}

	if err := m.flushGOP(); err != nil {
		return err
	}
	if m.audio != nil && len(m.audio.samples) > 0 {
		if err := m.writeFragment(m.audio, m.audio.samples); err != nil {
			return err
		}
		m.audio.samples = nil
	}

	if err := m.w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := m.file.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	m.finalized = true
	if err := m.file.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// Close releases the file without writing buffered samples. Partial output stays on disk.
func (m *Muxer) Close() error {
	if m.finalized || m.closed {
		return nil
	}
	m.closed = true
	m.w.Flush()
	return m.file.Close()
}

var _ ports.Muxer = (*Muxer)(nil)
