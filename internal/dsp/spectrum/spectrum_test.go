package spectrum_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgnush/evsiren/internal/dsp/spectrum"
)

func TestTransformPureToneHasExpectedPeak(t *testing.T) {
	const n = 256

	const toneBin = 32 // an exact bin so the tone doesn't leak into neighbors

	window := make([]float64, n)
	for i := range window {
		window[i] = math.Sin(2 * math.Pi * float64(toneBin) * float64(i) / float64(n))
	}

	engine := spectrum.NewEngine(n)
	mag := engine.Transform(window)

	require.Len(t, mag, n/2+1)

	peakBin, peakMag := 0, 0.0

	for k, v := range mag {
		if v > peakMag {
			peakBin, peakMag = k, v
		}
	}

	assert.Equal(t, toneBin, peakBin)
	assert.InDelta(t, 1.0, peakMag, 0.01, "a unit-amplitude sine should produce a unit-magnitude peak")
}

func TestTransformSilenceIsZero(t *testing.T) {
	engine := spectrum.NewEngine(64)
	mag := engine.Transform(make([]float64, 64))

	for _, v := range mag {
		assert.Equal(t, 0.0, v)
	}
}

func TestTransformReusesScratchSlice(t *testing.T) {
	engine := spectrum.NewEngine(64)

	first := engine.Transform(make([]float64, 64))
	firstPtr := &first[0]

	second := engine.Transform(make([]float64, 64))

	assert.Same(t, firstPtr, &second[0], "Transform is documented to reuse its scratch buffer")
}

func TestWindowLength(t *testing.T) {
	engine := spectrum.NewEngine(512)
	assert.Equal(t, 512, engine.WindowLength())
}
