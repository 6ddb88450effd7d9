//go:build linux

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/mgnush/evsiren/internal/config"
	"github.com/mgnush/evsiren/internal/evfault"
	"github.com/mgnush/evsiren/internal/hw/adc"
	"github.com/mgnush/evsiren/internal/hw/display"
	"github.com/mgnush/evsiren/internal/output"
	"github.com/mgnush/evsiren/internal/pipeline"
	"github.com/mgnush/evsiren/internal/platform"
	"github.com/mgnush/evsiren/internal/sampler"
	"github.com/mgnush/evsiren/internal/types"
)

func runCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the detection pipeline against real SPI/GPIO hardware",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to a YAML config file"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Decision report format: console, json", Value: "console"},
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

			spi, err := adc.OpenSPI(cfg.Hardware.SPIDevice, uint32(cfg.Hardware.SPISpeedHz), channelSelectBytes(cfg.Hardware.ChannelSelect)) //nolint:gosec
			if err != nil {
				return fmt.Errorf("%w: open spi device: %w", evfault.ErrHwInit, err)
			}
			defer spi.Close() //nolint:errcheck

			channels := make([]adc.Channel, cfg.Channels)
			for i := range channels {
				channels[i] = spi
			}

			gpio, err := display.OpenGPIO(cfg.Hardware.GPIOChip, cfg.Hardware.GPIOLines, gpioPatterns(cfg.Hardware.GPIOLines), uint32(cfg.MaxCycles)) //nolint:gosec
			if err != nil {
				return fmt.Errorf("%w: open gpio display: %w", evfault.ErrHwInit, err)
			}
			defer gpio.Close() //nolint:errcheck

			elevator := platform.NewElevator(cfg.Hardware.RTPriority)

			samp := sampler.New(sampler.Options{
				Channels:     channels,
				SampleRateHz: cfg.SampleRateHz,
				SampleDelay:  cfg.SampleDelayDuration(),
				Tolerance:    0.02,
				DropMultiple: cfg.TimingDropMultiple,
				Elevator:     elevator,
				Logger:       logger,
				DriftPolicy:  cfg.TimingDriftPolicy,
			})

			reporter, err := output.NewReporter(cmd.String("format"), os.Stdout)
			if err != nil {
				return err
			}

			pl, err := pipeline.New(pipeline.Options{
				Config:  cfg,
				Sampler: samp,
				Display: gpio,
				Logger:  logger,
				OnDecision: func(window uint64, decision types.Decision) {
					if decision.Location == types.NoLocation {
						return
					}

					if err := reporter.Emit(window, decision); err != nil {
						logger.Warn("failed to emit decision report", "err", err)
					}
				},
			})
			if err != nil {
				return err
			}

			return pl.Run(ctx)
		},
	}
}

func channelSelectBytes(in []int) []byte {
	out := make([]byte, len(in))
	for i, v := range in {
		out[i] = byte(v) //nolint:gosec // validated config-range channel select codes
	}

	return out
}

// gpioPatterns lights the single line corresponding to the detected
// location, ignoring direction. The locations are S,W,E,N in that order,
// matching the default channel_layout and lineOffsets ordering (§6: the
// State-to-pin mapping is a property of the wiring, supplied by the caller).
func gpioPatterns(lines []int) map[display.State][]int {
	patterns := make(map[display.State][]int)
	locations := []types.Location{types.South, types.West, types.East, types.North}

	for i, loc := range locations {
		if i >= len(lines) {
			break
		}

		for _, dir := range []types.Direction{types.NoDirection, types.Approaching, types.Receding} {
			levels := make([]int, len(lines))
			levels[i] = 1
			patterns[display.StateOf(loc, dir)] = levels
		}
	}

	return patterns
}
