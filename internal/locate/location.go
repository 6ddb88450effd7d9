package locate

import "github.com/mgnush/evsiren/internal/types"

// EstimateLocation implements §4.8: pick the channel c* with the greatest
// mean band ratio M_c, then compare it against its physically opposite
// channel ((c*+C/2) mod C) with a wall-echo guard margin. Returns NoLocation
// if c* isn't at least (1+margin) times its opposite's mean — a suspected
// wall echo — per §8 invariant 7.
func EstimateLocation(latest []types.Analysis, layout []types.Location, margin float64) types.Location {
	channels := len(latest)
	if channels == 0 {
		return types.NoLocation
	}

	means := make([]float64, channels)
	best := 0

	for c, a := range latest {
		means[c] = mean(a.BandRatios)
		if means[c] > means[best] {
			best = c
		}
	}

	opposite := (best + channels/2) % channels

	if means[best] < (1+margin)*means[opposite] {
		return types.NoLocation
	}

	if best >= len(layout) {
		return types.NoLocation
	}

	return layout[best]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
