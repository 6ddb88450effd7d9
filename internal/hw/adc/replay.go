package adc

import "fmt"

// Replay is a file/slice-backed backend for tests and offline reruns: each
// channel replays a fixed sequence of samples, looping once exhausted.
type Replay struct {
	samples [][]uint16
	pos     []int
}

// NewReplay builds a Replay backend from per-channel sample sequences.
func NewReplay(samples [][]uint16) *Replay {
	return &Replay{
		samples: samples,
		pos:     make([]int, len(samples)),
	}
}

// ReadSample returns the next sample for channelID, wrapping around to the
// start of that channel's sequence when exhausted.
func (r *Replay) ReadSample(channelID int) (uint16, error) {
	if channelID < 0 || channelID >= len(r.samples) {
		return 0, fmt.Errorf("channel id %d out of range", channelID)
	}

	seq := r.samples[channelID]
	if len(seq) == 0 {
		return 0, nil
	}

	sample := seq[r.pos[channelID]%len(seq)]
	r.pos[channelID]++

	return sample, nil
}
