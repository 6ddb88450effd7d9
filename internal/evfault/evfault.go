// Package evfault defines the sentinel errors from §7's error-kind table.
// Every wrap in the pipeline uses fmt.Errorf("%w: %w", sentinel, cause), the
// same two-sentinel-wrap idiom used throughout this repository's read loops.
package evfault

import "errors"

var (
	// ErrConfig covers an empty band plan, invalid ranges, or S < 2 — fatal at startup.
	ErrConfig = errors.New("configuration error")

	// ErrHwInit covers ADC or display initialization failure — fatal at startup.
	ErrHwInit = errors.New("hardware initialization error")

	// ErrTransport covers a single failed ADC transaction — the window is dropped, run continues.
	ErrTransport = errors.New("adc transport error")

	// ErrTiming covers sampling wall time outside tolerance — the window is dropped, run continues.
	ErrTiming = errors.New("sampling timing error")
)
