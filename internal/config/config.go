// Package config loads and validates the run configuration from §3 and §6:
// an optional YAML file, with the defaults from §3 filled in for anything
// left unset. No CLI flag overrides individual fields; the CLI only supplies
// the file path and sets Debug.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mgnush/evsiren/internal/evfault"
)

// Config holds every numeric constant listed in §3 and the option list in §6.
type Config struct {
	SampleRateHz  int `yaml:"sample_rate"`
	WindowSamples int `yaml:"window_samples"`
	Channels      int `yaml:"channels"`
	Bands         int `yaml:"bands"`

	BandMinHz float64 `yaml:"band_min_hz"`
	BandMaxHz float64 `yaml:"band_max_hz"`

	NoiseLow  [2]float64 `yaml:"noise_low"`
	NoiseHigh [2]float64 `yaml:"noise_high"`

	BandCoeffs []float64 `yaml:"band_coeffs"`

	DopplerMin  float64 `yaml:"doppler_min"`
	DopplerMax  float64 `yaml:"doppler_max"`
	UseDoppler  bool    `yaml:"use_doppler"`

	DirectionMargin float64 `yaml:"direction_margin"`
	LocationMargin  float64 `yaml:"location_margin"`

	HistoryDepth int `yaml:"history_depth"`
	MaxCycles    int `yaml:"max_cycles"`

	SampleDelayMicros int `yaml:"sample_delay_us"`

	// ChannelLayout maps a channel id to its cardinal label. Index i holds
	// channel i's Location; see §4.8.
	ChannelLayout []string `yaml:"channel_layout"`

	// UseSubwindowDirection is the opt-in switch for the orthogonal estimator
	// from §9 Open Question 3. Disabled by default. The pipeline does not read
	// this field; locate.SubwindowEstimator runs only where a caller
	// constructs and drives one.
	UseSubwindowDirection bool `yaml:"use_subwindow_direction"`

	// TimingDriftPolicy decides what happens after three consecutive
	// timing-tolerance misses (§9 Open Question 4): "log", "retune", or "halt".
	TimingDriftPolicy string `yaml:"timing_drift_policy"`

	// TimingDropMultiple is the hard per-window bound from §5: a window whose
	// sampling wall time exceeds this multiple of the expected duration is
	// dropped without analysis, unconditionally and independent of
	// TimingDriftPolicy's consecutive-miss mechanism.
	TimingDropMultiple float64 `yaml:"timing_drop_multiple"`

	// Hardware holds the deployment-specific wiring details for `evsiren
	// run` (§6): SPI device, GPIO chip/lines, and RT scheduling priority.
	// Unused by `evsiren simulate`, which talks to synthetic backends.
	Hardware HardwareConfig `yaml:"hardware"`

	Debug bool `yaml:"-"`
}

// HardwareConfig is the real-backend wiring from §6: not part of the
// detection algorithm, only how it is attached to this deployment's ADC and
// display hardware.
type HardwareConfig struct {
	SPIDevice     string `yaml:"spi_device"`
	SPISpeedHz    int    `yaml:"spi_speed_hz"`
	ChannelSelect []int  `yaml:"channel_select"`

	GPIOChip  string `yaml:"gpio_chip"`
	GPIOLines []int  `yaml:"gpio_lines"`

	RTPriority int `yaml:"rt_priority"`
}

// Default returns the §3 defaults: fs=8kHz, N chosen so N/fs≈2.058s, C=3,
// B=6, band 700-1550Hz, noise references 150-510Hz and 1885-3000Hz, the
// reference NOISE_COEFF array, Doppler 0.8491-1.0425, ε_dir=0.02,
// ε_loc=0.10, S=3, MAX_CYCLES=2, δ=21µs, and the {0:S,1:W,2:E} layout.
func Default() Config {
	return Config{
		SampleRateHz:  8000,
		WindowSamples: 16464,
		Channels:      3,
		Bands:         6,

		BandMinHz: 700,
		BandMaxHz: 1550,

		NoiseLow:  [2]float64{150, 510},
		NoiseHigh: [2]float64{1885, 3000},

		BandCoeffs: []float64{2.6, 2.5, 2.8, 2.9, 2.9, 2.8},

		DopplerMin: 0.8491,
		DopplerMax: 1.0425,
		UseDoppler: true,

		DirectionMargin: 0.02,
		LocationMargin:  0.10,

		HistoryDepth: 3,
		MaxCycles:    2,

		SampleDelayMicros: 21,

		ChannelLayout: []string{"south", "west", "east"},

		UseSubwindowDirection: false,
		TimingDriftPolicy:     "log",
		TimingDropMultiple:    1.2,

		Hardware: HardwareConfig{
			SPIDevice:     "/dev/spidev0.0",
			SPISpeedHz:    1_000_000,
			ChannelSelect: []int{0, 1, 2},
			GPIOChip:      "gpiochip0",
			GPIOLines:     []int{17, 27, 22, 23},
			RTPriority:    80,
		},
	}
}

// SampleDelayDuration returns the configured inter-sample delay δ as a
// time.Duration.
func (c Config) SampleDelayDuration() time.Duration {
	return time.Duration(c.SampleDelayMicros) * time.Microsecond
}

// Load reads an optional YAML file at path (skipped entirely if path is
// empty), falling back to Default for anything the file doesn't set, then
// validates the merged result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %w", evfault.ErrConfig, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %w", evfault.ErrConfig, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the invariants §3/§7 require at startup: non-empty band
// plan inputs, S >= 2, a band-coefficient per band, and a channel layout
// entry per channel.
func (c Config) Validate() error {
	if c.SampleRateHz <= 0 || c.WindowSamples <= 0 {
		return fmt.Errorf("%w: sample_rate and window_samples must be positive", evfault.ErrConfig)
	}

	if c.Channels <= 0 {
		return fmt.Errorf("%w: channels must be positive", evfault.ErrConfig)
	}

	if c.Bands <= 0 {
		return fmt.Errorf("%w: bands must be positive", evfault.ErrConfig)
	}

	if c.BandMinHz <= 0 || c.BandMaxHz <= c.BandMinHz {
		return fmt.Errorf("%w: band_min_hz must be positive and less than band_max_hz", evfault.ErrConfig)
	}

	if len(c.BandCoeffs) != c.Bands {
		return fmt.Errorf("%w: band_coeffs must have exactly %d entries, got %d", evfault.ErrConfig, c.Bands, len(c.BandCoeffs))
	}

	if c.HistoryDepth < 2 {
		return fmt.Errorf("%w: history_depth must be >= 2", evfault.ErrConfig)
	}

	if len(c.ChannelLayout) != c.Channels {
		return fmt.Errorf(
			"%w: channel_layout must have exactly %d entries, got %d",
			evfault.ErrConfig, c.Channels, len(c.ChannelLayout),
		)
	}

	switch c.TimingDriftPolicy {
	case "log", "retune", "halt":
	default:
		return fmt.Errorf("%w: unknown timing_drift_policy %q", evfault.ErrConfig, c.TimingDriftPolicy)
	}

	if c.TimingDropMultiple <= 1.0 {
		return fmt.Errorf("%w: timing_drop_multiple must be > 1.0", evfault.ErrConfig)
	}

	return nil
}
