// Package locate implements the Direction Estimator (§4.7) and the Location
// Estimator (§4.8), both grounded on the cross-channel/cross-window ratio
// comparisons this repository's stereo imbalance analyzer already performs,
// generalized from two channels to C and from one ratio to a summed trend.
package locate

import "github.com/mgnush/evsiren/internal/types"

// EstimateDirection implements §4.7: for each Analysis in entries (oldest to
// newest), compute a window energy E_s restricted to bands that individually
// crossed their coefficient, then sum the consecutive ratios E_s/E_{s-1}.
// R > 1+margin is approaching, R < 1-margin is receding, otherwise none.
// Returns NoDirection (StarvedHistory, §7) when entries has fewer than 2.
func EstimateDirection(entries []types.Analysis, coeffs []float64, margin float64) types.Direction {
	if len(entries) < 2 {
		return types.NoDirection
	}

	energies := make([]float64, len(entries))
	for i, a := range entries {
		energies[i] = windowEnergy(a, coeffs)
	}

	var trend float64

	for s := 1; s < len(energies); s++ {
		if energies[s-1] == 0 {
			continue
		}

		trend += energies[s] / energies[s-1]
	}

	switch {
	case trend > 1+margin:
		return types.Approaching
	case trend < 1-margin:
		return types.Receding
	default:
		return types.NoDirection
	}
}

// windowEnergy is the mean of band ratios restricted to bands that
// individually exceeded their coefficient, per §4.7.
func windowEnergy(a types.Analysis, coeffs []float64) float64 {
	if len(a.BandRatios) == 0 {
		return 0
	}

	var sum float64

	for i, ratio := range a.BandRatios {
		if ratio >= coeffs[i] {
			sum += ratio
		}
	}

	return sum / float64(len(a.BandRatios))
}
