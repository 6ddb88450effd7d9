//go:build linux

package platform

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// linuxElevator raises the calling thread to the SCHED_FIFO real-time class
// and pins process memory with mlockall, mirroring the reference source's
// DoSampling hoist — split here into its two independent lifecycles (§5).
type linuxElevator struct {
	priority int
}

// NewElevator returns the Linux Elevator, requesting SCHED_FIFO at priority.
func NewElevator(priority int) Elevator {
	return &linuxElevator{priority: priority}
}

func (l *linuxElevator) Elevate() error {
	param := &unix.SchedParam{Priority: int32(l.priority)} //nolint:gosec // priority is a small configured constant
	if err := unix.SchedSetscheduler(0, unix.SCHED_FIFO, param); err != nil {
		return fmt.Errorf("sched_setscheduler: %w", err)
	}

	return nil
}

func (l *linuxElevator) Pin() error {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("mlockall: %w", err)
	}

	return nil
}

func (l *linuxElevator) Unpin() error {
	if err := unix.Munlockall(); err != nil {
		return fmt.Errorf("munlockall: %w", err)
	}

	return nil
}
