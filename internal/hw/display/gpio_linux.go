//go:build linux

package display

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/mgnush/evsiren/internal/types"
)

// GPIO is the real-hardware Display backend: it drives a set of GPIO lines
// on a character-device chip (e.g. "gpiochip0") through a charlieplexed pin
// pattern table — a property of the physical wiring and therefore provided
// by the caller rather than hardcoded here, per §6.
type GPIO struct {
	lines       *gpiocdev.Lines
	patterns    map[State][]int // State -> per-line level (0/1)
	maxCycles   uint32
	lineCount   int
}

// OpenGPIO requests lineOffsets on chipName as outputs and returns a Display
// backed by them. patterns maps each State (plus the zero State for "fully
// cleared") to a level per requested line.
func OpenGPIO(chipName string, lineOffsets []int, patterns map[State][]int, maxCycles uint32) (*GPIO, error) {
	lines, err := gpiocdev.RequestLines(chipName, lineOffsets, gpiocdev.AsOutput())
	if err != nil {
		return nil, fmt.Errorf("request gpio lines: %w", err)
	}

	return &GPIO{
		lines:     lines,
		patterns:  patterns,
		maxCycles: maxCycles,
		lineCount: len(lineOffsets),
	}, nil
}

// Update implements Display. When cycles exceeds maxCycles the display is
// fully cleared (all lines low), per §8 invariant 8.
func (g *GPIO) Update(cycles uint32, loc types.Location, dir types.Direction) error {
	if cycles > g.maxCycles {
		return g.setLevels(make([]int, g.lineCount))
	}

	pattern, ok := g.patterns[StateOf(loc, dir)]
	if !ok {
		return g.setLevels(make([]int, g.lineCount))
	}

	return g.setLevels(pattern)
}

func (g *GPIO) setLevels(levels []int) error {
	if err := g.lines.SetValues(levels); err != nil {
		return fmt.Errorf("set gpio levels: %w", err)
	}

	return nil
}

// Close releases the requested GPIO lines.
func (g *GPIO) Close() error {
	return g.lines.Close()
}
