// Package sampler implements the Sampler (§4.1): it pulls one sample from
// each configured channel at rate f_s, fills per-channel windows, and
// enforces the bounded-jitter timing discipline the rest of the pipeline
// depends on.
package sampler

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mgnush/evsiren/internal/evfault"
	"github.com/mgnush/evsiren/internal/hw/adc"
	"github.com/mgnush/evsiren/internal/platform"
)

// Sampler drives the per-iteration ADC-transaction-then-delay loop from
// §4.1: C transactions in a fixed order, then a calibrated delay so the
// total iteration time matches 1/f_s.
type Sampler struct {
	channels []adc.Channel
	delay    time.Duration
	period   time.Duration
	toleranceFrac float64
	dropMultiple  float64

	elevator platform.Elevator
	logger   *log.Logger

	driftPolicy    string
	consecutiveDrift int
}

// defaultDropMultiple is the §5 hard per-window bound applied when Options
// doesn't specify one.
const defaultDropMultiple = 1.2

// Options configures a Sampler.
type Options struct {
	Channels      []adc.Channel
	SampleRateHz  int
	SampleDelay   time.Duration
	Tolerance     float64 // fraction of expected duration, e.g. 0.02 for ±2%
	DropMultiple  float64 // hard per-window bound as a multiple of expected duration, e.g. 1.2; defaults to 1.2 if <= 0
	Elevator      platform.Elevator
	Logger        *log.Logger
	DriftPolicy   string // "log" | "retune" | "halt", §9 Open Question 4
}

// New builds a Sampler from opts.
func New(opts Options) *Sampler {
	dropMultiple := opts.DropMultiple
	if dropMultiple <= 0 {
		dropMultiple = defaultDropMultiple
	}

	return &Sampler{
		channels:      opts.Channels,
		delay:         opts.SampleDelay,
		period:        time.Second / time.Duration(opts.SampleRateHz),
		toleranceFrac: opts.Tolerance,
		dropMultiple:  dropMultiple,
		elevator:      opts.Elevator,
		logger:        opts.Logger,
		driftPolicy:   opts.DriftPolicy,
	}
}

// Elevate attempts real-time scheduling priority. Per §5 this is attempted
// once at startup; failure is logged and non-fatal — the caller proceeds
// regardless.
func (s *Sampler) Elevate() {
	if s.elevator == nil {
		return
	}

	if err := s.elevator.Elevate(); err != nil {
		s.logger.Warn("real-time elevation failed, continuing without it", "err", err)
	}
}

// pin locks process memory for the duration of one window's sampling, per
// §5: acquired before sampling, released after. Failure is logged and
// non-fatal.
func (s *Sampler) pin() {
	if s.elevator == nil {
		return
	}

	if err := s.elevator.Pin(); err != nil {
		s.logger.Warn("memory pin failed, continuing without it", "err", err)
	}
}

func (s *Sampler) unpin() {
	if s.elevator == nil {
		return
	}

	if err := s.elevator.Unpin(); err != nil {
		s.logger.Warn("memory unpin failed", "err", err)
	}
}

// Sample fills one window's worth of samples for every channel, one sample
// per channel per iteration in a fixed channel order (§4.1's per-channel
// skew guarantee), sleeping the calibrated delay between iterations. out
// must have one []float64 per channel, each pre-sized to the window length.
// Returns the elapsed wall time for the whole window.
func (s *Sampler) Sample(out [][]float64) (time.Duration, error) {
	if len(out) != len(s.channels) {
		return 0, fmt.Errorf("%w: out has %d channels, sampler has %d", evfault.ErrConfig, len(out), len(s.channels))
	}

	s.pin()
	defer s.unpin()

	n := len(out[0])
	start := time.Now()

	for i := 0; i < n; i++ {
		for ch, channel := range s.channels {
			raw, err := channel.ReadSample(ch)
			if err != nil {
				return time.Since(start), fmt.Errorf("%w: channel %d: %w", evfault.ErrTransport, ch, err)
			}

			out[ch][i] = float64(raw)
		}

		// δ: the calibrated delay that, together with the C transactions
		// above, brings one iteration to 1/f_s (§4.1).
		time.Sleep(s.delay)
	}

	elapsed := time.Since(start)

	return elapsed, s.checkDrift(elapsed, n)
}

// checkDrift applies the timing discipline to one window. §5's hard upper
// bound reports a TimingError for any single window whose elapsed time
// exceeds dropMultiple times expected, regardless of driftPolicy or the
// consecutive-miss count. A window outside tolerance but within that bound
// is only logged; after three consecutive such misses the §9 Open Question 4
// drift policy applies: log-only, retune the delay, or halt (a TimingError).
func (s *Sampler) checkDrift(elapsed time.Duration, n int) error {
	expected := s.period * time.Duration(n)

	if bound := time.Duration(float64(expected) * s.dropMultiple); elapsed > bound {
		return fmt.Errorf(
			"%w: window sampling took %s, exceeding %.2fx the expected %s",
			evfault.ErrTiming, elapsed, s.dropMultiple, expected,
		)
	}

	deviation := float64(elapsed-expected) / float64(expected)

	if deviation < 0 {
		deviation = -deviation
	}

	if deviation <= s.toleranceFrac {
		s.consecutiveDrift = 0
		return nil
	}

	s.consecutiveDrift++

	if s.consecutiveDrift < 3 {
		s.logger.Warn("sampling timing drift", "deviation", deviation)
		return nil
	}

	switch s.driftPolicy {
	case "halt":
		return fmt.Errorf("%w: three consecutive timing drifts exceeding tolerance", evfault.ErrTiming)
	case "retune":
		overshoot := elapsed - expected
		s.delay -= overshoot / time.Duration(n)
		if s.delay < 0 {
			s.delay = 0
		}
		s.logger.Warn("retuned sampling delay after repeated drift", "new_delay", s.delay)
		s.consecutiveDrift = 0
	default: // "log"
		s.logger.Warn("repeated sampling timing drift", "deviation", deviation)
		s.consecutiveDrift = 0
	}

	return nil
}
