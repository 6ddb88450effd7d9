package pipeline_test

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgnush/evsiren/internal/config"
	"github.com/mgnush/evsiren/internal/hw/adc"
	"github.com/mgnush/evsiren/internal/pipeline"
	"github.com/mgnush/evsiren/internal/sampler"
	"github.com/mgnush/evsiren/internal/types"
)

// The fixture below picks round numbers so every tone lands on an exact FFT
// bin (freq * windowSamples / sampleRateHz is an integer), which makes each
// tone's contribution to band.Analyze's sums hand-computable: a lone tone at
// an exact bin contributes exactly its amplitude to that bin and nothing
// elsewhere.
const (
	fixtureSampleRateHz  = 8000
	fixtureWindowSamples = 400 // df = 20Hz

	noiseLowFreqHz  = 200.0  // bin 10, inside the [100,300) noise reference
	noiseHighFreqHz = 1300.0 // bin 65, inside the [1200,1400) noise reference
	noiseToneAmp    = 40.0   // noise floor = (40+40)/20 = 4.0

	band0FreqHz = 600.0 // bin 30, inside band 0 [500,700)
	band1FreqHz = 800.0 // bin 40, inside band 1 [700,900)
)

type tone struct {
	freqHz float64
	amp    float64
}

// noiseTones holds the fixed pair of reference-band tones every window in
// these tests carries, giving every channel the same noiseFloor = 4.0.
func noiseTones() []tone {
	return []tone{{noiseLowFreqHz, noiseToneAmp}, {noiseHighFreqHz, noiseToneAmp}}
}

// ratioForAmp converts a desired band_ratio into the tone amplitude that
// produces it, given this fixture's noiseFloor of 4.0 and band length of 10:
// ratio = (amp/bandLength)/noiseFloor = amp/40.
func ratioForAmp(amp float64) float64 {
	return amp / 40.0
}

func buildWindow(tones []tone) []uint16 {
	out := make([]uint16, fixtureWindowSamples)

	for i := range out {
		t := float64(i) / float64(fixtureSampleRateHz)
		v := 2048.0

		for _, tn := range tones {
			v += tn.amp * math.Sin(2*math.Pi*tn.freqHz*t)
		}

		switch {
		case v < 0:
			v = 0
		case v > 4095:
			v = 4095
		}

		out[i] = uint16(v)
	}

	return out
}

// buildSequence concatenates one window's samples per entry in windows,
// producing a Replay-ready sequence with no wraparound across the test.
func buildSequence(windows [][]tone) []uint16 {
	var seq []uint16
	for _, tones := range windows {
		seq = append(seq, buildWindow(append(noiseTones(), tones...))...)
	}

	return seq
}

func silentLogger() *log.Logger {
	return log.New(io.Discard)
}

func fixtureConfig() config.Config {
	return config.Config{
		SampleRateHz:      fixtureSampleRateHz,
		WindowSamples:     fixtureWindowSamples,
		Channels:          3,
		Bands:             2,
		BandMinHz:         500,
		BandMaxHz:         900,
		NoiseLow:          [2]float64{100, 300},
		NoiseHigh:         [2]float64{1200, 1400},
		BandCoeffs:        []float64{1.5, 1.5},
		UseDoppler:        false,
		DirectionMargin:   0.05,
		LocationMargin:    0.10,
		HistoryDepth:      4,
		MaxCycles:         2,
		SampleDelayMicros: 0,
		ChannelLayout:     []string{"south", "west", "east"},
		TimingDriftPolicy: "log",
	}
}

type capturedUpdate struct {
	cycles uint32
	loc    types.Location
	dir    types.Direction
}

type capturingDisplay struct {
	updates []capturedUpdate
}

func (d *capturingDisplay) Update(cycles uint32, loc types.Location, dir types.Direction) error {
	d.updates = append(d.updates, capturedUpdate{cycles: cycles, loc: loc, dir: dir})

	return nil
}

// newTestPipeline wires one Replay-backed channel per entry in perChannel,
// each a list of per-window tone sets (on top of the shared noise tones).
func newTestPipeline(t *testing.T, perChannel [][][]tone) (*pipeline.Pipeline, *capturingDisplay) {
	t.Helper()

	cfg := fixtureConfig()

	// One shared Replay backend indexed by channel id, the same way the real
	// multi-channel SPI backend demultiplexes a single transport handle by
	// channel id rather than giving each channel its own handle.
	sequences := make([][]uint16, len(perChannel))
	for i, windows := range perChannel {
		sequences[i] = buildSequence(windows)
	}

	replay := adc.NewReplay(sequences)

	channels := make([]adc.Channel, len(perChannel))
	for i := range channels {
		channels[i] = replay
	}

	samp := sampler.New(sampler.Options{
		Channels:     channels,
		SampleRateHz: cfg.SampleRateHz,
		SampleDelay:  cfg.SampleDelayDuration(),
		Tolerance:    1.0,
		Logger:       silentLogger(),
		DriftPolicy:  cfg.TimingDriftPolicy,
	})

	disp := &capturingDisplay{}

	pl, err := pipeline.New(pipeline.Options{
		Config:  cfg,
		Sampler: samp,
		Display: disp,
		Logger:  silentLogger(),
	})
	require.NoError(t, err)

	return pl, disp
}

func TestPipelineSilenceYieldsNoLocationAndIncrementingCooldown(t *testing.T) {
	quiet := [][]tone{{}, {}, {}}
	pl, disp := newTestPipeline(t, [][][]tone{quiet, quiet, quiet})

	for range quiet {
		decision, err := pl.Step(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.NoLocation, decision.Location)
		assert.Equal(t, types.NoDirection, decision.Direction)
	}

	assert.Equal(t, []uint32{1, 2, 3}, []uint32{disp.updates[0].cycles, disp.updates[1].cycles, disp.updates[2].cycles})
}

func TestPipelinePureToneLocatesLoudestChannel(t *testing.T) {
	south := [][]tone{{{band0FreqHz, 80}, {band1FreqHz, 80}}} // ratio 2.0 on both bands
	quiet := [][]tone{{}}

	pl, disp := newTestPipeline(t, [][][]tone{south, quiet, quiet})

	decision, err := pl.Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.South, decision.Location)
	assert.Equal(t, types.NoDirection, decision.Direction, "a single window can't establish a trend")
	assert.Equal(t, uint32(0), decision.CyclesSinceDetection)
	assert.Equal(t, types.South, disp.updates[0].loc)
}

func TestPipelineApproachingTrendAcrossWindows(t *testing.T) {
	// ratios 2.0, 2.5, 3.25 on the located channel: a rising trend.
	south := [][]tone{
		{{band0FreqHz, 80}, {band1FreqHz, 80}},
		{{band0FreqHz, 100}, {band1FreqHz, 100}},
		{{band0FreqHz, 130}, {band1FreqHz, 130}},
	}
	quiet := [][]tone{{}, {}, {}}

	pl, _ := newTestPipeline(t, [][][]tone{south, quiet, quiet})

	decision, err := pl.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.NoDirection, decision.Direction)

	decision, err = pl.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.Approaching, decision.Direction)

	decision, err = pl.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.Approaching, decision.Direction)
}

func TestPipelineRecedingTrendAcrossWindows(t *testing.T) {
	// ratios 3.25, 2.5, 2.0 on the located channel: a falling trend.
	south := [][]tone{
		{{band0FreqHz, 130}, {band1FreqHz, 130}},
		{{band0FreqHz, 100}, {band1FreqHz, 100}},
		{{band0FreqHz, 80}, {band1FreqHz, 80}},
	}
	quiet := [][]tone{{}, {}, {}}

	pl, _ := newTestPipeline(t, [][][]tone{south, quiet, quiet})

	_, err := pl.Step(context.Background())
	require.NoError(t, err)

	decision, err := pl.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.Receding, decision.Direction)
}

func TestPipelineJitterWithinMarginYieldsNoDirection(t *testing.T) {
	// ratios 2.0 then 2.05: a 2.5% rise, inside the 5% margin.
	south := [][]tone{
		{{band0FreqHz, 80}, {band1FreqHz, 80}},
		{{band0FreqHz, 82}, {band1FreqHz, 82}},
	}
	quiet := [][]tone{{}, {}}

	pl, _ := newTestPipeline(t, [][][]tone{south, quiet, quiet})

	_, err := pl.Step(context.Background())
	require.NoError(t, err)

	decision, err := pl.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.NoDirection, decision.Direction)
}

func TestPipelineWallEchoSuppressesLocation(t *testing.T) {
	// channel 0 at ratio 2.0 (mean 2.0), channel 1 at ratio 1.95 (mean 1.95):
	// opposite of channel 0 with 3 channels is channel (0+3/2)%3 = 1, and
	// 2.0 < 1.10*1.95, so the wall-echo guard should suppress a location.
	south := [][]tone{{{band0FreqHz, 80}, {band1FreqHz, 80}}}
	west := [][]tone{{{band0FreqHz, 78}, {band1FreqHz, 78}}}
	quiet := [][]tone{{}}

	pl, _ := newTestPipeline(t, [][][]tone{south, west, quiet})

	decision, err := pl.Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.NoLocation, decision.Location)
	assert.Equal(t, uint32(0), decision.CyclesSinceDetection, "both channels still positively detected")
}

func TestPipelineWeakDetectionTriggersRescueWithoutFailing(t *testing.T) {
	// window 1 is silent (only the noise-reference tones); window 2 detects
	// only band 0 (ratio 2.0), leaving band 1 under threshold (ratio 0.5) -
	// a minority ("weak") detection that the Orchestrator must route through
	// Boundary Rescue rather than reporting directly.
	south := [][]tone{
		{},
		{{band0FreqHz, 80}, {band1FreqHz, 20}},
	}
	quiet := [][]tone{{}, {}}

	pl, _ := newTestPipeline(t, [][][]tone{south, quiet, quiet})

	_, err := pl.Step(context.Background())
	require.NoError(t, err)

	decision, err := pl.Step(context.Background())
	require.NoError(t, err, "a weak detection must not panic or error the Orchestrator")
	assert.Contains(t, []types.Location{types.NoLocation, types.South}, decision.Location)
}

func TestRatioForAmpMatchesFixtureMath(t *testing.T) {
	assert.InDelta(t, 2.0, ratioForAmp(80), 1e-9)
	assert.InDelta(t, 1.5, ratioForAmp(60), 1e-9)
}
