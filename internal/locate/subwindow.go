package locate

import "github.com/mgnush/evsiren/internal/types"

// SubwindowEstimator is the vestigial SPLIT-based direction estimator from
// the original source, preserved per §9 Open Question 3 as an orthogonal,
// opt-in estimator rather than folded into EstimateDirection. It divides
// the history entries into Split contiguous sub-groups, runs
// EstimateDirection on each group independently, and combines the group
// verdicts by majority vote. Disabled unless a caller explicitly constructs
// and drives one;
// the default pipeline never calls it.
type SubwindowEstimator struct {
	Split  int
	Coeffs []float64
	Margin float64
}

// Estimate runs EstimateDirection independently on each of e.Split
// contiguous slices of entries and returns the majority verdict, falling
// back to NoDirection on a tie.
func (e SubwindowEstimator) Estimate(entries []types.Analysis) types.Direction {
	if e.Split <= 1 || len(entries) < e.Split*2 {
		return EstimateDirection(entries, e.Coeffs, e.Margin)
	}

	chunk := len(entries) / e.Split

	var approaching, receding int

	for i := 0; i < e.Split; i++ {
		start := i * chunk
		end := start + chunk

		if i == e.Split-1 {
			end = len(entries)
		}

		switch EstimateDirection(entries[start:end], e.Coeffs, e.Margin) {
		case types.Approaching:
			approaching++
		case types.Receding:
			receding++
		case types.NoDirection:
		}
	}

	switch {
	case approaching > receding:
		return types.Approaching
	case receding > approaching:
		return types.Receding
	default:
		return types.NoDirection
	}
}
