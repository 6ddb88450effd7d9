package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/mgnush/evsiren/internal/config"
	"github.com/mgnush/evsiren/internal/hw/adc"
	"github.com/mgnush/evsiren/internal/hw/display"
	"github.com/mgnush/evsiren/internal/output"
	"github.com/mgnush/evsiren/internal/pipeline"
	"github.com/mgnush/evsiren/internal/sampler"
	"github.com/mgnush/evsiren/internal/types"
)

// simulateSampler builds a Sampler with no real-time elevation: simulate
// runs against synthetic, in-process channels rather than hardware, so
// there is no scheduling jitter to compensate for.
func simulateSampler(channels []adc.Channel, cfg config.Config, logger *log.Logger) *sampler.Sampler {
	return sampler.New(sampler.Options{
		Channels:     channels,
		SampleRateHz: cfg.SampleRateHz,
		SampleDelay:  cfg.SampleDelayDuration(),
		Tolerance:    1, // synthetic generation has no real scheduling jitter to bound
		DropMultiple: cfg.TimingDropMultiple,
		Logger:       logger,
		DriftPolicy:  cfg.TimingDriftPolicy,
	})
}

func simulateCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Run the detection pipeline against a synthesized siren tone, no hardware required",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to a YAML config file"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Decision report format: console, json", Value: "console"},
			&cli.StringFlag{
				Name:  "tone-hz",
				Usage: "Comma-separated tone frequency per channel, 0 to disable a channel",
				Value: "1000,0,0",
			},
			&cli.StringFlag{Name: "amplitude", Usage: "Tone amplitude, 0-2047", Value: "800"},
			&cli.IntFlag{Name: "windows", Usage: "Number of windows to process, 0 for unlimited", Value: 10},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"D"}, Usage: "Log at debug level"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}

			if cmd.Bool("debug") {
				cfg.Debug = true
				logger.SetLevel(log.DebugLevel)
			}

			toneHz, err := parseFloatList(cmd.String("tone-hz"), cfg.Channels)
			if err != nil {
				return err
			}

			amplitude, err := strconv.ParseFloat(cmd.String("amplitude"), 64)
			if err != nil {
				return fmt.Errorf("--amplitude: %w", err)
			}

			channels := make([]adc.Channel, cfg.Channels)
			for i := range channels {
				channels[i] = adc.NewSynthetic(float64(cfg.SampleRateHz), toneHz, amplitude, nil)
			}

			logging := display.NewLogging(logger, uint32(cfg.MaxCycles)) //nolint:gosec

			reporter, err := output.NewReporter(cmd.String("format"), os.Stdout)
			if err != nil {
				return err
			}

			samp := simulateSampler(channels, cfg, logger)

			windowLimit := cmd.Int("windows")
			processed := 0

			pl, err := pipeline.New(pipeline.Options{
				Config:  cfg,
				Sampler: samp,
				Display: logging,
				Logger:  logger,
				OnDecision: func(window uint64, decision types.Decision) {
					if err := reporter.Emit(window, decision); err != nil {
						logger.Warn("failed to emit decision report", "err", err)
					}
				},
			})
			if err != nil {
				return err
			}

			for windowLimit <= 0 || processed < windowLimit {
				if _, err := pl.Step(ctx); err != nil {
					return err
				}

				processed++
			}

			return nil
		},
	}
}

func parseFloatList(raw string, want int) ([]float64, error) {
	parts := strings.Split(raw, ",")
	out := make([]float64, want)

	for i := 0; i < want; i++ {
		if i >= len(parts) {
			continue
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		out[i] = v
	}

	return out, nil
}
