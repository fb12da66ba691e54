package lowpass

import (
	"errors"
	"fmt"
	"math"
)

// Configuration limits and defaults.
const (
	// maxChannels bounds the per-frame channel width.
	maxChannels = 64

	// stereoChannels is the interleaved frame width for stereo streams.
	stereoChannels = 2

	// DefaultTransitionFraction places the stopband edge at 1.5x the cutoff
	// when the caller does not specify a transition width.
	DefaultTransitionFraction = 0.5

	// Tap-count derivation from frequency resolution
	minTapCount = 3
	oddRounding = 1
)

// Common errors returned by the filter.
var (
	// ErrInvalidConfig indicates invalid configuration or mutator parameters.
	ErrInvalidConfig = errors.New("invalid filter configuration")

	// ErrShape indicates input whose shape does not match the filter's
	// configured channel layout or track length.
	ErrShape = errors.New("input shape mismatch")
)

// Config holds streaming lowpass filter configuration.
type Config struct {
	// SampleRate is the sample rate of the incoming stream in Hz.
	SampleRate float64

	// Cutoff is the initial passband edge in Hz.
	Cutoff float64

	// TransitionFraction sets the stopband edge at Cutoff*(1+TransitionFraction).
	// Set to 0 to use DefaultTransitionFraction.
	TransitionFraction float64

	// FrequencyResolution in Hz determines the filter length: the tap count is
	// round(SampleRate/FrequencyResolution), bumped to the next odd value.
	// Finer resolution means a longer filter and more group delay.
	FrequencyResolution float64

	// Channels is the number of interleaved values per frame.
	// Set to 0 for mono.
	Channels int

	// CacheSize bounds the number of memoized coefficient sets.
	// Set to 0 to use the designer's default (4096 entries).
	CacheSize int
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}

	if c.Cutoff <= 0 {
		return fmt.Errorf("%w: cutoff must be positive", ErrInvalidConfig)
	}

	if c.TransitionFraction < 0 || c.TransitionFraction >= 1 {
		return fmt.Errorf("%w: transition fraction must be in (0, 1)", ErrInvalidConfig)
	}

	tf := c.TransitionFraction
	if tf == 0 {
		tf = DefaultTransitionFraction
	}
	if c.Cutoff*(1+tf) >= c.SampleRate/2 {
		return fmt.Errorf("%w: stopband edge %.1f Hz reaches Nyquist (%.1f Hz)",
			ErrInvalidConfig, c.Cutoff*(1+tf), c.SampleRate/2)
	}

	if c.FrequencyResolution <= 0 {
		return fmt.Errorf("%w: frequency resolution must be positive", ErrInvalidConfig)
	}

	if c.Channels < 0 || c.Channels > maxChannels {
		return fmt.Errorf("%w: channels must be in [1, %d]", ErrInvalidConfig, maxChannels)
	}

	return nil
}

// normalized returns a copy with defaults applied to zero-valued fields.
func (c *Config) normalized() Config {
	cfg := *c
	if cfg.TransitionFraction == 0 {
		cfg.TransitionFraction = DefaultTransitionFraction
	}
	if cfg.Channels == 0 {
		cfg.Channels = 1
	}
	return cfg
}

// tapCountFor derives an odd tap count from a frequency resolution.
// Ties between adjacent odd counts round upward.
func tapCountFor(sampleRate, frequencyResolution float64) int {
	n := int(math.Round(sampleRate / frequencyResolution))
	if n%2 == 0 {
		n += oddRounding
	}
	if n < minTapCount {
		n = minTapCount
	}
	return n
}
