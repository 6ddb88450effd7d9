package adc

import "math"

// Synthetic is the property-test generator backend from §9: it produces a
// sine tone of ToneHz per channel plus uniform-ish pseudo-noise, scaled to
// a 12-bit unsigned ADC range, advancing one sample per ReadSample call.
type Synthetic struct {
	SampleRateHz float64
	ToneHz       []float64 // per channel, 0 disables the tone on that channel
	Amplitude    float64   // 0..2047, added around the 2048 midpoint
	Noise        []float64 // pseudo-random sequence reused across channels

	n        []int
	noisePos int
}

// NewSynthetic builds a Synthetic backend for the given channel count.
func NewSynthetic(sampleRateHz float64, toneHz []float64, amplitude float64, noise []float64) *Synthetic {
	return &Synthetic{
		SampleRateHz: sampleRateHz,
		ToneHz:       toneHz,
		Amplitude:    amplitude,
		Noise:        noise,
		n:            make([]int, len(toneHz)),
	}
}

// ReadSample returns the next synthesized sample for channelID.
func (s *Synthetic) ReadSample(channelID int) (uint16, error) {
	t := float64(s.n[channelID]) / s.SampleRateHz
	s.n[channelID]++

	value := 2048.0
	if s.ToneHz[channelID] != 0 {
		value += s.Amplitude * math.Sin(2*math.Pi*s.ToneHz[channelID]*t)
	}

	if len(s.Noise) > 0 {
		value += s.Noise[s.noisePos%len(s.Noise)]
		s.noisePos++
	}

	if value < 0 {
		value = 0
	}

	if value > 4095 {
		value = 4095
	}

	return uint16(value), nil
}
