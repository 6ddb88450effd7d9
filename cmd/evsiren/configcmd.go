package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/mgnush/evsiren/internal/config"
)

func configCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect and validate configuration",
		Commands: []*cli.Command{
			configValidateCommand(logger),
			configDefaultsCommand(),
		},
	}
}

func configValidateCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Load and validate a configuration file",
		ArgsUsage: "<file>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("expected exactly one argument: config file path")
			}

			cfg, err := config.Load(cmd.Args().First())
			if err != nil {
				return err
			}

			logger.Info("configuration valid", "channels", cfg.Channels, "bands", cfg.Bands, "sample_rate", cfg.SampleRateHz)

			return nil
		},
	}
}

func configDefaultsCommand() *cli.Command {
	return &cli.Command{
		Name:  "defaults",
		Usage: "Print the compiled-in default configuration as YAML",
		Action: func(_ context.Context, _ *cli.Command) error {
			data, err := yaml.Marshal(config.Default())
			if err != nil {
				return fmt.Errorf("marshal defaults: %w", err)
			}

			fmt.Print(string(data))

			return nil
		},
	}
}
