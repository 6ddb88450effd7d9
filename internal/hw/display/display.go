// Package display defines the Display capability interface from §6 and its
// backends: a GPIO character-device backend for real hardware, and a logging
// backend for development and testing.
package display

import "github.com/mgnush/evsiren/internal/types"

// Display renders the current decision. Update is called exclusively by the
// Orchestrator at the end of each window — no concurrent writers (§5).
type Display interface {
	// Update renders cycles/loc/dir. When cycles exceeds the configured
	// MAX_CYCLES, the display is fully cleared (§8 invariant 8).
	Update(cycles uint32, loc types.Location, dir types.Direction) error
}

// State is the 9-state set from §6: {none} ∪ {N,S,E,W} × {approaching,
// receding, no_dir}, used to index a pin-pattern table. The mapping from
// State to physical pins is a property of the hardware wiring and is left to
// the backend (§6: "implementers provide the table").
type State struct {
	Location  types.Location
	Direction types.Direction
}

// StateOf builds the State for the given decision fields, collapsing to the
// zero State when Location is NoLocation.
func StateOf(loc types.Location, dir types.Direction) State {
	if loc == types.NoLocation {
		return State{}
	}

	return State{Location: loc, Direction: dir}
}
