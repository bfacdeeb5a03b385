// Package validator checks produced MP4 files against the publishing limits
// for vertical short videos.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/mp4ff/avc"
	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/shortgen/pkg/adapters/codecdetect"
	"github.com/user/shortgen/pkg/adapters/h264decoder"
	"github.com/user/shortgen/pkg/adapters/logger"
	"github.com/user/shortgen/pkg/adapters/nullsink"
	"github.com/user/shortgen/pkg/adapters/osfilesystem"
	"github.com/user/shortgen/pkg/metrics"
	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

// Validator inspects finished videos.
type Validator struct {
	fs      ports.FileSystem
	decoder ports.FrameDecoder
	sink    ports.DebugSink
	logger  ports.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithDecodeCheck decodes the first video sample with decoder. A decode
// failure marks the file unplayable.
func WithDecodeCheck(decoder ports.FrameDecoder) Option {
	return func(v *Validator) {
		v.decoder = decoder
	}
}

// WithFileSystem sets where file sizes are read from.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(v *Validator) {
		v.fs = fs
	}
}

// WithDebugSink saves every validation report as JSON.
func WithDebugSink(sink ports.DebugSink) Option {
	return func(v *Validator) {
		v.sink = sink
	}
}

// WithLogger sets the logger.
func WithLogger(l ports.Logger) Option {
	return func(v *Validator) {
		v.logger = l
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		fs:     osfilesystem.New(),
		sink:   nullsink.New(),
		logger: logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.WithComponent("validator")
	return v
}

// Validate opens path and runs every check. An error is returned only when
// the file cannot be parsed or has no video track.
func (v *Validator) Validate(path string) (video.Validation, error) {
	res, err := v.validate(path)
	if err != nil {
		metrics.ObserveValidation(false)
		return video.Validation{}, err
	}
	metrics.ObserveValidation(res.IsValid())

	v.logger.Debug("Validated %s: %s", path, res.Summary())
	v.saveReport(path, res)
	return res, nil
}

func (v *Validator) validate(path string) (video.Validation, error) {
	f, err := os.Open(path)
	if err != nil {
		return video.Validation{}, fmt.Errorf("%w: %w", video.ErrValidationOpen, err)
	}
	defer f.Close()

	size, err := v.fs.Size(path)
	if err != nil {
		return video.Validation{}, fmt.Errorf("%w: %w", video.ErrValidationOpen, err)
	}

	parsed, err := mp4.DecodeFile(f)
	if err != nil {
		return video.Validation{}, fmt.Errorf("%w: %s: %w", video.ErrValidationOpen, path, err)
	}
	tracks := codecdetect.Tracks(parsed)
	if len(tracks) == 0 {
		return video.Validation{}, fmt.Errorf("%w: %s: no movie box", video.ErrValidationOpen, path)
	}

	var vtrak *mp4.TrakBox
	res := video.Validation{FileSize: size}
	for _, trak := range tracks {
		switch handlerType(trak) {
		case "vide":
			if vtrak == nil {
				vtrak = trak
			}
		case "soun":
			res.HasAudio = true
		}
	}
	if vtrak == nil {
		return video.Validation{}, fmt.Errorf("%w: %s", video.ErrNoVideoStream, path)
	}

	res.Width, res.Height = dimensions(vtrak)
	res.DurationSeconds = durationSeconds(parsed, vtrak)

	if codecs, err := codecdetect.Detect(parsed); err == nil {
		res.VideoCodec = string(codecs.Video)
		res.AudioCodec = string(codecs.Audio)
	}

	res.CorrectDimensions = res.Width == video.Width && res.Height == video.Height
	res.DurationInRange = res.DurationSeconds >= video.MinDurationSecs && res.DurationSeconds <= video.MaxDurationSecs
	res.FileSizeUnderLimit = res.FileSize < video.MaxFileSize
	res.IsPlayable = true

	if v.decoder != nil {
		if err := v.decodeFirst(parsed, f); err != nil {
			v.logger.Warn("Decode check failed for %s: %s", path, err)
			res.IsPlayable = false
		}
	}
	return res, nil
}

func (v *Validator) decodeFirst(parsed *mp4.File, f *os.File) error {
	frames, err := h264decoder.ExtractFromFile(parsed, f, 1)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return errors.New("no video samples")
	}
	_, err = v.decoder.DecodeFrame(frames[0].Data)
	return err
}

func (v *Validator) saveReport(path string, res video.Validation) {
	if !v.sink.Enabled() {
		return
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := v.sink.SaveValidationJSON(name, data); err != nil {
		v.logger.Warn("Failed to save debug output: %s", err)
	}
}

func handlerType(trak *mp4.TrakBox) string {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
		return ""
	}
	return trak.Mdia.Hdlr.HandlerType
}

// dimensions prefers the SPS in avcC and falls back to the sample entry.
func dimensions(trak *mp4.TrakBox) (width, height int) {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return 0, 0
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		entry, ok := child.(*mp4.VisualSampleEntryBox)
		if !ok {
			continue
		}
		if entry.AvcC != nil && len(entry.AvcC.SPSnalus) > 0 {
			if sps, err := avc.ParseSPSNALUnit(entry.AvcC.SPSnalus[0], false); err == nil {
				return int(sps.Width), int(sps.Height)
			}
		}
		return int(entry.Width), int(entry.Height)
	}
	return 0, 0
}

// durationSeconds returns the video track duration truncated to whole seconds.
func durationSeconds(parsed *mp4.File, trak *mp4.TrakBox) int64 {
	if trak.Mdia.Mdhd == nil || trak.Mdia.Mdhd.Timescale == 0 {
		return 0
	}
	units := trak.Mdia.Mdhd.Duration
	if parsed.IsFragmented() {
		if sum := fragmentDuration(parsed, trak.Tkhd.TrackID); sum > 0 {
			units = sum
		}
	}
	return int64(units / uint64(trak.Mdia.Mdhd.Timescale))
}

func fragmentDuration(parsed *mp4.File, trackID uint32) uint64 {
	var trex *mp4.TrexBox
	if parsed.Init != nil && parsed.Init.Moov != nil && parsed.Init.Moov.Mvex != nil {
		for _, t := range parsed.Init.Moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var total uint64
	for _, seg := range parsed.Segments {
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
					continue
				}
				for _, s := range samples {
					total += uint64(s.Dur)
				}
			}
		}
	}
	return total
}
