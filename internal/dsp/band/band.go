// Package band implements the Band Analyzer (§4.3) and the band-plan
// derivation from §3: resolving configured Hz ranges to FFT bin indices and
// reducing a spectrum to a noise floor plus per-band ratios.
package band

import (
	"github.com/mgnush/evsiren/internal/config"
	"github.com/mgnush/evsiren/internal/types"
)

// NewPlan derives a BandPlan from cfg, resolving Hz ranges to bin indices via
// df = f_s / N (§3). When doppler is true the band of interest is widened by
// DopplerMax at the high edge and narrowed by DopplerMin at the low edge,
// matching the reference source's parent-analysis widening. Every band is
// (hiBin-loBin)/Bands bins wide (integer division); remainder bins just below
// hiBin are left out of the plan.
func NewPlan(cfg config.Config, doppler bool) types.BandPlan {
	df := float64(cfg.SampleRateHz) / float64(cfg.WindowSamples)

	lo, hi := cfg.BandMinHz, cfg.BandMaxHz
	if doppler {
		lo *= cfg.DopplerMin
		hi *= cfg.DopplerMax
	}

	loBin := int(lo / df)
	hiBin := int(hi / df)

	edges := make([]int, cfg.Bands+1)
	width := (hiBin - loBin) / cfg.Bands

	for i := 0; i <= cfg.Bands; i++ {
		edges[i] = loBin + width*i
	}

	return types.BandPlan{
		BandEdges:    edges,
		NoiseLowLo:   int(cfg.NoiseLow[0] / df),
		NoiseLowHi:   int(cfg.NoiseLow[1] / df),
		NoiseHighLo:  int(cfg.NoiseHigh[0] / df),
		NoiseHighHi:  int(cfg.NoiseHigh[1] / df),
	}
}

// Analyze reduces spectrum to an Analysis using plan, per §4.3's three-step
// algorithm. A silent spectrum (noise_floor == 0) yields all-zero band ratios
// rather than a divide by zero — the SilentFrame kind from §7.
func Analyze(spectrum []float64, plan types.BandPlan) types.Analysis {
	noiseSum := sumRange(spectrum, plan.NoiseLowLo, plan.NoiseLowHi) +
		sumRange(spectrum, plan.NoiseHighLo, plan.NoiseHighHi)

	noiseBins := (plan.NoiseLowHi - plan.NoiseLowLo) + (plan.NoiseHighHi - plan.NoiseHighLo)

	var noiseFloor float64
	if noiseBins > 0 {
		noiseFloor = noiseSum / float64(noiseBins)
	}

	bands := plan.Bands()
	bandLength := plan.BandLength()
	ratios := make([]float64, bands)

	for i := 0; i < bands; i++ {
		bandSum := sumRange(spectrum, plan.BandEdges[i], plan.BandEdges[i+1])

		var avg float64
		if bandLength > 0 {
			avg = bandSum / float64(bandLength)
		}

		if noiseFloor > 0 {
			ratios[i] = avg / noiseFloor
		}
	}

	return types.Analysis{
		NoiseFloor: noiseFloor,
		BandRatios: ratios,
	}
}

func sumRange(spectrum []float64, lo, hi int) float64 {
	if lo < 0 {
		lo = 0
	}

	if hi > len(spectrum) {
		hi = len(spectrum)
	}

	var sum float64
	for i := lo; i < hi; i++ {
		sum += spectrum[i]
	}

	return sum
}
