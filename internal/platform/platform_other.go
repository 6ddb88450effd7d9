//go:build !linux

package platform

import "errors"

// noopElevator is the fallback Elevator for non-Linux platforms: mlockall
// and SCHED_FIFO are Linux-specific, so both elevation and pinning always
// report failure, which the caller is required to treat as non-fatal
// (§4.1, §5).
type noopElevator struct{}

// NewElevator returns the no-op Elevator used on platforms without
// mlockall/SCHED_FIFO support.
func NewElevator(priority int) Elevator {
	return noopElevator{}
}

func (noopElevator) Elevate() error {
	return errors.New("real-time scheduling elevation is not supported on this platform")
}

func (noopElevator) Pin() error {
	return errors.New("memory locking is not supported on this platform")
}

func (noopElevator) Unpin() error {
	return nil
}
