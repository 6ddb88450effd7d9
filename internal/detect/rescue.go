package detect

import (
	"github.com/mgnush/evsiren/internal/dsp/band"
	"github.com/mgnush/evsiren/internal/dsp/spectrum"
	"github.com/mgnush/evsiren/internal/types"
)

// Rescue implements §4.5: given the previous and current windows for one
// channel, it builds a synthetic window from the second half of prev spliced
// with the first half of cur, re-runs the engine/plan/coeffs pipeline on it,
// and reports whether the result should replace the original — only when the
// synthetic detection count exceeds the original, per §8 invariant 4
// (Boundary Rescue never reduces detection count).
func Rescue(
	prev, cur []float64,
	engine *spectrum.Engine,
	plan types.BandPlan,
	coeffs []float64,
	original types.Detection,
) (types.Analysis, types.Detection, bool) {
	n := len(cur)
	half := n / 2

	synthetic := make([]float64, n)
	copy(synthetic[:half], prev[half:])
	copy(synthetic[half:], cur[:half])

	spec := engine.Transform(synthetic)
	analysis := band.Analyze(spec, plan)
	detection := Detect(analysis, coeffs)

	if detection.Count > original.Count {
		return analysis, detection, true
	}

	return types.Analysis{}, types.Detection{}, false
}
