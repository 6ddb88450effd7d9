package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/mgnush/evsiren/internal/evfault"
	"github.com/mgnush/evsiren/internal/version"
)

func main() {
	ctx := context.Background()
	logger := log.New(os.Stderr)

	appl := &cli.Command{
		Name:    version.Name,
		Usage:   "Detect, locate, and track emergency-vehicle sirens from a microphone array",
		Version: version.String(),
		Commands: []*cli.Command{
			runCommand(logger),
			simulateCommand(logger),
			configCommand(logger),
		},
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		logger.Error("failed to run", "err", err)

		// Exit codes per §6: 1 for configuration error, 2 for unrecoverable
		// hardware init failure. Anything else reaching here is also startup
		// failure (§7: no errors propagate out of the window-processing loop),
		// so it falls back to the same code as a configuration error.
		if errors.Is(err, evfault.ErrHwInit) {
			os.Exit(2)
		}

		os.Exit(1)
	}
}
