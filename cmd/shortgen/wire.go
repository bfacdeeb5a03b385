package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/user/shortgen/pkg/adapters/filesink"
	"github.com/user/shortgen/pkg/adapters/ggrenderer"
	"github.com/user/shortgen/pkg/adapters/h264decoder"
	"github.com/user/shortgen/pkg/adapters/h264encoder"
	"github.com/user/shortgen/pkg/adapters/logger"
	"github.com/user/shortgen/pkg/adapters/mockplatform"
	"github.com/user/shortgen/pkg/adapters/nullsink"
	"github.com/user/shortgen/pkg/adapters/osfilesystem"
	"github.com/user/shortgen/pkg/adapters/sqlitehistory"
	"github.com/user/shortgen/pkg/adapters/youtube"
	"github.com/user/shortgen/pkg/config"
	"github.com/user/shortgen/pkg/content"
	"github.com/user/shortgen/pkg/metrics"
	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/publisher"
	"github.com/user/shortgen/pkg/synthesizer"
	"github.com/user/shortgen/pkg/validator"
)

// errNoUploader is returned for platforms that can be configured but have no client.
var errNoUploader = errors.New("no uploader available")

// application holds the adapters shared by every command.
type application struct {
	cfg  config.Config
	log  ports.Logger
	fs   ports.FileSystem
	sink ports.DebugSink
}

// setup loads configuration and builds the logger and debug sink.
func setup(c *cli.Context) (*application, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := config.LoadDotEnv(c.String("env-file")); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if level := c.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cfg.Logging.Level))
	}

	fs := osfilesystem.New()
	var sink ports.DebugSink = nullsink.New()
	if c.Bool("debug") {
		if err := fs.MkdirAll(cfg.Video.DebugDir); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.Video.DebugDir, fs)
	}

	return &application{cfg: cfg, log: log, fs: fs, sink: sink}, nil
}

func (a *application) synthesizer() (*synthesizer.Synthesizer, error) {
	renderer := ggrenderer.New(ggrenderer.WithFontPath(a.cfg.Video.FontPath))
	newEncoder := func() ports.FrameEncoder {
		return h264encoder.NewSession(
			h264encoder.WithFFmpegPath(a.cfg.Video.FFmpegPath),
			h264encoder.WithTempDir(a.cfg.Video.TempDirectory),
			h264encoder.WithLogger(a.log),
		)
	}
	return synthesizer.NewDefault(
		a.cfg.Video.OutputDirectory,
		a.cfg.Video.TempDirectory,
		renderer,
		newEncoder,
		a.fs,
		a.sink,
		a.log,
	)
}

func (a *application) validator() *validator.Validator {
	opts := []validator.Option{
		validator.WithFileSystem(a.fs),
		validator.WithDebugSink(a.sink),
		validator.WithLogger(a.log),
	}
	if a.cfg.Video.DecodeCheck {
		dec := h264decoder.New(a.cfg.Video.FFmpegPath)
		if err := dec.Init(); err != nil {
			a.log.Warn("Decode check disabled: %s", err)
		} else {
			opts = append(opts, validator.WithDecodeCheck(dec))
		}
	}
	return validator.New(opts...)
}

// platform builds the uploader for a configured platform.
func (a *application) platform(ctx context.Context, name string, pc config.PlatformConfig) (ports.VideoPlatform, error) {
	switch name {
	case youtube.Name:
		return youtube.New(ctx,
			youtube.Credentials{CredentialsFile: pc.CredentialsFile, TokenFile: pc.TokenFile},
			youtube.WithForcePrivate(pc.UploadAsPrivate),
			youtube.WithLogger(a.log),
		)
	case mockplatform.Name:
		opts := []mockplatform.Option{mockplatform.WithLogger(a.log)}
		if pc.SimulateFailures {
			opts = append(opts, mockplatform.WithSimulatedFailures(3))
		}
		return mockplatform.New(opts...), nil
	default:
		return nil, fmt.Errorf("%s: %w", name, errNoUploader)
	}
}

// publisher wires the daily run. The returned func closes the history store.
func (a *application) publisher(ctx context.Context) (*publisher.Publisher, func(), error) {
	items, err := content.LoadCatalog(a.cfg.Content.CatalogPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := sqlitehistory.Open(a.cfg.Content.HistoryPath, a.log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { store.Close() }

	var targets []publisher.Target
	for _, name := range a.cfg.Platforms.EnabledNames() {
		pc, _ := a.cfg.Platforms.Platform(name)
		platform, err := a.platform(ctx, name, pc)
		if errors.Is(err, errNoUploader) {
			a.log.Warn("Skipping %s: %s", name, err)
			continue
		}
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		privacy := ports.PrivacyPublic
		if pc.UploadAsPrivate {
			privacy = ports.PrivacyPrivate
		}
		targets = append(targets, publisher.Target{
			Platform:        platform,
			Privacy:         privacy,
			MaxDailyUploads: pc.MaxDailyUploads,
		})
	}
	if len(targets) == 0 {
		closeFn()
		return nil, nil, errors.New("no enabled platforms")
	}

	synth, err := a.synthesizer()
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	loc, err := a.cfg.Location()
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	pub := publisher.New(
		content.NewSelector(items, store),
		synth,
		a.validator(),
		targets,
		store,
		a.fs,
		publisher.Config{
			DurationSeconds:    a.cfg.Video.DurationSeconds,
			FontSize:           a.cfg.Video.FontSize,
			CleanupAfterUpload: a.cfg.Video.CleanupAfterUpload,
			Location:           loc,
		},
		a.log,
	)
	return pub, closeFn, nil
}

// serveMetrics exposes /metrics in the background when an address is configured.
func (a *application) serveMetrics(ctx context.Context) {
	addr := a.cfg.Metrics.Address
	if addr == "" {
		return
	}
	go func() {
		a.log.Info("Metrics listening on %s", addr)
		if err := metrics.Serve(ctx, addr); err != nil {
			a.log.Error("Metrics server stopped: %s", err)
		}
	}()
}

func printReport(report publisher.Report) {
	for _, res := range report.Results {
		switch {
		case res.Err != nil:
			fmt.Printf("%-8s FAILED   %s\n", res.Platform, res.Err)
		case res.Skipped != "":
			fmt.Printf("%-8s SKIPPED  %s\n", res.Platform, res.Skipped)
		default:
			fmt.Printf("%-8s UPLOADED %s (%s)\n", res.Platform, res.VideoID, res.ContentID)
		}
	}
}
