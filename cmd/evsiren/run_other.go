//go:build !linux

package main

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func runCommand(_ *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the detection pipeline against real SPI/GPIO hardware (Linux only)",
		Action: func(_ context.Context, _ *cli.Command) error {
			return errors.New("evsiren run requires a Linux SPI/GPIO target; use `evsiren simulate` on this platform")
		},
	}
}
