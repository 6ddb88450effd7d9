// Package pipeline implements the Pipeline Orchestrator (§4.9): it drives
// the other components once per window, manages the detection cooldown
// counter, and emits a Decision to the external Display driver. Modeled as
// one struct built at startup and passed explicitly through the run loop, no
// ambient globals, per §9's design notes.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/mgnush/evsiren/internal/config"
	"github.com/mgnush/evsiren/internal/detect"
	"github.com/mgnush/evsiren/internal/dsp/band"
	"github.com/mgnush/evsiren/internal/dsp/spectrum"
	"github.com/mgnush/evsiren/internal/evfault"
	"github.com/mgnush/evsiren/internal/history"
	"github.com/mgnush/evsiren/internal/hw/display"
	"github.com/mgnush/evsiren/internal/locate"
	"github.com/mgnush/evsiren/internal/sampler"
	"github.com/mgnush/evsiren/internal/types"
)

// channelState is the per-channel record from §9's design notes: all
// channel-local state (the previous window, spectral engine, and history
// ring) in one place, stored in a fixed-size slice indexed by channel id.
type channelState struct {
	engine     *spectrum.Engine
	ring       *history.Ring
	prevWindow []float64
	hasPrev    bool
}

// Pipeline is the process-wide state struct from §9: configuration, the
// (doppler-widened) band plan, per-channel state, and the hardware handles.
type Pipeline struct {
	cfg      config.Config
	plan     types.BandPlan
	channels []channelState
	layout   []types.Location

	sampler *sampler.Sampler
	disp    display.Display
	logger  *log.Logger

	onDecision func(window uint64, decision types.Decision)

	cooldown uint32
	window   uint64
}

// Options configures a Pipeline.
type Options struct {
	Config  config.Config
	Sampler *sampler.Sampler
	Display display.Display
	Logger  *log.Logger

	// OnDecision, if set, is called once per window after the Display has
	// been updated — used by the report commands to render a record per
	// window without coupling the Orchestrator to an output format.
	OnDecision func(window uint64, decision types.Decision)
}

// New builds a Pipeline. cfg must already be validated (config.Load does
// this); New assumes it and only re-checks the band plan, per §4.9's fatal
// error policy for configuration errors.
func New(opts Options) (*Pipeline, error) {
	cfg := opts.Config
	plan := band.NewPlan(cfg, cfg.UseDoppler)
	if err := plan.Validate(cfg.WindowSamples / 2); err != nil {
		return nil, fmt.Errorf("%w: %w", evfault.ErrConfig, err)
	}

	layout := make([]types.Location, cfg.Channels)

	for i, name := range cfg.ChannelLayout {
		loc, err := parseLocation(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", evfault.ErrConfig, err)
		}

		layout[i] = loc
	}

	channels := make([]channelState, cfg.Channels)
	for i := range channels {
		channels[i] = channelState{
			engine: spectrum.NewEngine(cfg.WindowSamples),
			ring:   history.NewRing(cfg.HistoryDepth),
		}
	}

	return &Pipeline{
		cfg:        cfg,
		plan:       plan,
		channels:   channels,
		layout:     layout,
		sampler:    opts.Sampler,
		disp:       opts.Display,
		logger:     opts.Logger,
		onDecision: opts.OnDecision,
	}, nil
}

// Run loops Step until ctx is cancelled, returning nil on clean cancellation.
func (p *Pipeline) Run(ctx context.Context) error {
	p.sampler.Elevate()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, err := p.Step(ctx); err != nil {
			if errors.Is(err, evfault.ErrTransport) || errors.Is(err, evfault.ErrTiming) {
				p.logger.Warn("window dropped", "err", err)
				continue
			}

			return err
		}
	}
}

// Step processes exactly one window: sample, per-channel spectrum/band/
// detect/rescue/history, aggregate across channels, Location/Direction,
// cooldown bookkeeping, and a Display update — the state machine from §4.9.
func (p *Pipeline) Step(_ context.Context) (types.Decision, error) {
	windows := make([][]float64, len(p.channels))
	for i := range windows {
		windows[i] = make([]float64, p.cfg.WindowSamples)
	}

	if _, err := p.sampler.Sample(windows); err != nil {
		return types.Decision{}, err
	}

	anyPositive := false
	latest := make([]types.Analysis, len(p.channels))
	var directionSource []types.Analysis

	for ch := range p.channels {
		cs := &p.channels[ch]

		spec := cs.engine.Transform(windows[ch])
		analysis := band.Analyze(spec, p.plan)
		detection := detect.Detect(analysis, p.cfg.BandCoeffs)

		if cs.hasPrev && types.Weak(detection.Count, p.cfg.Bands) {
			if rescuedAnalysis, rescuedDetection, ok := detect.Rescue(
				cs.prevWindow, windows[ch], cs.engine, p.plan, p.cfg.BandCoeffs, detection,
			); ok {
				analysis, detection = rescuedAnalysis, rescuedDetection
			}
		}

		cs.ring.Push(analysis)
		cs.prevWindow = windows[ch]
		cs.hasPrev = true

		latest[ch] = analysis

		if types.Positive(detection.Count, p.cfg.Bands) {
			anyPositive = true
		}
	}

	decision := types.Decision{}

	if anyPositive {
		decision.Location = locate.EstimateLocation(latest, p.layout, p.cfg.LocationMargin)

		if p.cooldown == 0 && decision.Location != types.NoLocation {
			directionSource = p.channels[locationChannel(p.layout, decision.Location)].ring.Entries()
			decision.Direction = locate.EstimateDirection(directionSource, p.cfg.BandCoeffs, p.cfg.DirectionMargin)
		}

		p.cooldown = 0
	} else {
		p.cooldown++
		decision.Direction = types.NoDirection
	}

	decision.CyclesSinceDetection = p.cooldown

	if err := p.disp.Update(decision.CyclesSinceDetection, decision.Location, decision.Direction); err != nil {
		p.logger.Warn("display update failed", "err", err)
	}

	p.window++

	if p.onDecision != nil {
		p.onDecision(p.window, decision)
	}

	return decision, nil
}

func locationChannel(layout []types.Location, loc types.Location) int {
	for i, l := range layout {
		if l == loc {
			return i
		}
	}

	return 0
}

func parseLocation(name string) (types.Location, error) {
	switch name {
	case "south":
		return types.South, nil
	case "west":
		return types.West, nil
	case "east":
		return types.East, nil
	case "north":
		return types.North, nil
	default:
		return types.NoLocation, fmt.Errorf("unknown channel_layout entry %q", name)
	}
}
