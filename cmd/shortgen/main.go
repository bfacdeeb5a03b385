// Package main provides the CLI entry point for shortgen.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/shortgen/pkg/batch"
	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/publisher"
	"github.com/user/shortgen/pkg/summarizer"
	"github.com/user/shortgen/pkg/video"
)

var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "shortgen",
		Usage:       l10n.T("Generate and publish vertical short videos"),
		Description: l10n.T("shortgen renders 1080x1920 text videos, validates them against short-form platform limits and uploads them on a daily schedule."),
		Version:     version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("Configuration file (YAML or TOML)"), EnvVars: []string{"SHORTGEN_CONFIG"}},
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: l10n.T("Environment file with overrides")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output")},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output")},
		},
		Commands: []*cli.Command{
			generateCommand(),
			validateCommand(),
			batchCommand(),
			scheduleCommand(),
			uploadCommand(),
			versionCommand(),
		},
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     l10n.T("Generate one video"),
		ArgsUsage: "<title>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Value: "simple_text", Usage: l10n.T("Template (simple_text, title_card, slideshow)")},
			&cli.StringSliceFlag{Name: "slide", Usage: l10n.T("Slide text for the slideshow template (repeatable)")},
			&cli.UintFlag{Name: "duration", Usage: l10n.T("Duration in seconds (10-60)")},
			&cli.StringFlag{Name: "background", Value: "#1E1E1E", Usage: l10n.T("Background color (hex, e.g., #1E1E1E)")},
			&cli.StringFlag{Name: "text-color", Value: "#FFFFFF", Usage: l10n.T("Text color (hex, e.g., #FFFFFF)")},
			&cli.UintFlag{Name: "font-size", Usage: l10n.T("Font size in pixels")},
			&cli.StringFlag{Name: "audio", Usage: l10n.T("Audio track to attach")},
			&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: l10n.T("Output directory")},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit(l10n.T("Title argument is required"), 2)
			}
			app, err := setup(c)
			if err != nil {
				return err
			}
			if dir := c.String("output-dir"); dir != "" {
				app.cfg.Video.OutputDirectory = dir
			}

			kind, err := video.ParseTemplateKind(c.String("template"))
			if err != nil {
				return err
			}
			spec := video.Spec{
				Title:           c.Args().First(),
				Template:        video.Template{Kind: kind, Slides: c.StringSlice("slide")},
				DurationSeconds: uint32(c.Uint("duration")),
				BackgroundColor: c.String("background"),
				TextColor:       c.String("text-color"),
				FontSize:        uint32(c.Uint("font-size")),
				AudioTrack:      c.String("audio"),
			}
			if spec.DurationSeconds == 0 {
				spec.DurationSeconds = app.cfg.Video.DurationSeconds
			}
			if spec.FontSize == 0 {
				spec.FontSize = app.cfg.Video.FontSize
			}

			synth, err := app.synthesizer()
			if err != nil {
				return err
			}
			app.log.Info("Generating %s (%s, %ds)...", spec.Title, spec.Template, spec.DurationSeconds)
			path, err := synth.Synthesize(c.Context, spec)
			if err != nil {
				return err
			}

			v, err := app.validator().Validate(path)
			if err != nil {
				return err
			}
			app.log.Info("Output saved to %s", path)
			fmt.Println(v.Summary())
			if !v.IsProductionReady(spec.DurationSeconds) {
				return cli.Exit(l10n.F("Video is not production ready: %s", path), 1)
			}
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     l10n.T("Validate an existing video file"),
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit(l10n.T("File argument is required"), 2)
			}
			app, err := setup(c)
			if err != nil {
				return err
			}
			v, err := app.validator().Validate(c.Args().First())
			if err != nil {
				return err
			}
			fmt.Println(v.Summary())
			if !v.IsValid() {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     l10n.T("Generate every video listed in a YAML file"),
		ArgsUsage: "<specs.yaml>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "report", Aliases: []string{"r"}, Value: "batch_report.md", Usage: l10n.T("Output execution summary to file (Markdown format)")},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit(l10n.T("Specs file argument is required"), 2)
			}
			app, err := setup(c)
			if err != nil {
				return err
			}

			source := c.Args().First()
			specs, err := batch.LoadSpecs(source, batch.Defaults{
				DurationSeconds: app.cfg.Video.DurationSeconds,
				BackgroundColor: "#1E1E1E",
				TextColor:       "#FFFFFF",
				FontSize:        app.cfg.Video.FontSize,
			})
			if err != nil {
				return err
			}

			synth, err := app.synthesizer()
			if err != nil {
				return err
			}
			summary, runErr := batch.NewRunner(synth, app.validator(), app.log).Run(c.Context, source, specs)

			writer := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), app.fs)
			if err := writer.Write(c.String("report"), summary); err != nil {
				app.log.Error("Failed to write summary: %s", err)
			} else {
				app.log.Info("Summary saved to %s", c.String("report"))
			}
			if runErr != nil {
				return runErr
			}
			if _, failed := summary.Counts(); failed > 0 {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func scheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: l10n.T("Publish one video per platform every day"),
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "now", Usage: l10n.T("Run once immediately and exit")},
		},
		Action: func(c *cli.Context) error {
			app, err := setup(c)
			if err != nil {
				return err
			}
			pub, closeFn, err := app.publisher(c.Context)
			if err != nil {
				return err
			}
			defer closeFn()

			app.serveMetrics(c.Context)

			if c.Bool("now") {
				report, err := pub.Run(c.Context, time.Now())
				printReport(report)
				return err
			}

			loc, _ := app.cfg.Location()
			hour, minute, _ := app.cfg.PostTime()
			sched, err := publisher.NewScheduler(pub, loc, hour, minute, app.log)
			if err != nil {
				return err
			}
			sched.Start(c.Context)
			<-c.Context.Done()
			sched.Stop()
			return nil
		},
	}
}

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     l10n.T("Upload an existing video file"),
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "platform", Aliases: []string{"p"}, Value: "mock", Usage: l10n.T("Target platform (youtube, mock)")},
			&cli.StringFlag{Name: "title", Required: true, Usage: l10n.T("Video title")},
			&cli.StringFlag{Name: "description", Usage: l10n.T("Video description")},
			&cli.StringSliceFlag{Name: "tag", Usage: l10n.T("Tag (repeatable)")},
			&cli.StringFlag{Name: "privacy", Value: "private", Usage: l10n.T("Privacy (public, private, unlisted)")},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit(l10n.T("File argument is required"), 2)
			}
			app, err := setup(c)
			if err != nil {
				return err
			}
			privacy, err := ports.ParsePrivacyLevel(c.String("privacy"))
			if err != nil {
				return err
			}

			name := strings.ToLower(c.String("platform"))
			pc, ok := app.cfg.Platforms.Platform(name)
			if !ok {
				return cli.Exit(l10n.F("Unknown platform %s", name), 2)
			}
			platform, err := app.platform(c.Context, name, pc)
			if err != nil {
				return err
			}

			path := c.Args().First()
			v, err := app.validator().Validate(path)
			if err != nil {
				return err
			}
			if !v.IsValid() {
				return cli.Exit(l10n.F("Video is not production ready: %s", v.Summary()), 1)
			}

			res, err := platform.Upload(c.Context, path, ports.VideoMetadata{
				Title:       c.String("title"),
				Description: c.String("description"),
				Tags:        c.StringSlice("tag"),
				Privacy:     privacy,
			})
			if err != nil {
				return err
			}
			fmt.Println(res.VideoID)
			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: l10n.T("Show version information"),
		Action: func(c *cli.Context) error {
			fmt.Println(l10n.F("shortgen (Go) version %s", version))
			return nil
		},
	}
}
