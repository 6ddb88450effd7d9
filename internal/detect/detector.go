// Package detect implements the Detector (§4.4) and Boundary Rescue (§4.5):
// per-band threshold comparison producing a detection bitmask, and a
// replace-if-better re-analysis of a half-shifted synthetic window.
package detect

import "github.com/mgnush/evsiren/internal/types"

// Detect applies the per-band coefficients to an Analysis, per §4.4:
// detected_bands[i] = 1 iff band_ratio[i] >= K[i].
func Detect(analysis types.Analysis, coeffs []float64) types.Detection {
	detected := make([]bool, len(analysis.BandRatios))

	count := 0

	for i, ratio := range analysis.BandRatios {
		if ratio >= coeffs[i] {
			detected[i] = true
			count++
		}
	}

	return types.Detection{DetectedBands: detected, Count: count}
}
