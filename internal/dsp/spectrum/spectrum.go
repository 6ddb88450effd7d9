// Package spectrum implements the Spectrum Engine (§4.2): a one-time FFT
// plan executed once per window to produce a one-sided magnitude spectrum.
package spectrum

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Engine is the plan-style FFT scratch from §9's design notes: the fourier.FFT
// plan is allocated once by NewEngine and reused by every Transform call, the
// same allocate-once/execute-many shape as the reference source's fftw_plan.
type Engine struct {
	n   int
	fft *fourier.FFT
	mag []float64
}

// NewEngine allocates an Engine for windows of length n.
func NewEngine(n int) *Engine {
	return &Engine{
		n:   n,
		fft: fourier.NewFFT(n),
		mag: make([]float64, n/2+1),
	}
}

// Transform computes the one-sided magnitude spectrum of window, per §4.2:
// magnitude[0] = X_0/N and magnitude[k] = 2*sqrt(Re(X_k)^2+Im(X_k)^2)/N for
// k >= 1. The returned slice is owned by the Engine and is overwritten by the
// next call to Transform.
func (e *Engine) Transform(window []float64) []float64 {
	coeffs := e.fft.Coefficients(nil, window)

	n := float64(e.n)

	e.mag[0] = real(coeffs[0]) / n
	for k := 1; k < len(coeffs); k++ {
		re, im := real(coeffs[k]), imag(coeffs[k])
		e.mag[k] = 2 * math.Sqrt(re*re+im*im) / n
	}

	return e.mag
}

// WindowLength returns the configured window length N.
func (e *Engine) WindowLength() int {
	return e.n
}
