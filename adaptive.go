package lowpass

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-streaming-lowpass/internal/firdesign"
)

// RPM scheduling constants.
const (
	secondsPerMinute = 60.0

	// A usable ladder needs a floor rung plus at least one quantization bin.
	minLadderRungs = 2

	// The lowest committable bin; bin 0 is the ladder floor itself.
	lowestBin = 1
)

// AdaptiveConfig holds the RPM-to-cutoff scheduling configuration.
type AdaptiveConfig struct {
	// HarmonicOrder is the rotational harmonic the cutoff tracks: the mapped
	// cutoff is rpm/60 * (HarmonicOrder - HarmonicWidth/2) Hz, keeping the
	// passband edge just below the target harmonic.
	HarmonicOrder float64

	// HarmonicWidth is the margin subtracted from HarmonicOrder, in harmonics.
	HarmonicWidth float64

	// StepsPerOctave sets the quantization ladder density: how many rungs per
	// doubling of RPM.
	StepsPerOctave int

	// MinRPM is the lowest speed the ladder resolves; slower rotation maps to
	// the lowest bin.
	MinRPM float64

	// MinRPMStep drops ladder rungs closer than this many RPM to their
	// predecessor, which thins the log spacing near the low end.
	MinRPMStep float64
}

// Validate checks if the scheduling configuration is valid.
func (c *AdaptiveConfig) Validate() error {
	if c.HarmonicOrder <= 0 {
		return fmt.Errorf("%w: harmonic order must be positive", ErrInvalidConfig)
	}

	if c.HarmonicWidth < 0 || c.HarmonicWidth/2 >= c.HarmonicOrder {
		return fmt.Errorf("%w: harmonic width must be in [0, 2*order)", ErrInvalidConfig)
	}

	if c.StepsPerOctave < 1 {
		return fmt.Errorf("%w: steps per octave must be at least 1", ErrInvalidConfig)
	}

	if c.MinRPM <= 0 {
		return fmt.Errorf("%w: minimum RPM must be positive", ErrInvalidConfig)
	}

	if c.MinRPMStep < 0 {
		return fmt.Errorf("%w: minimum RPM step must not be negative", ErrInvalidConfig)
	}

	return nil
}

// AdaptiveFilter drives a StreamingFilter from a raw rotational-speed
// measurement. Each RPM sample is digitized onto a fixed logarithmic ladder
// and passed through asymmetric hysteresis before being mapped to a cutoff,
// so a noisy speed signal hovering near a quantization boundary does not
// force a filter redesign on every chunk.
//
// The hysteresis is deliberately biased low: rising one bin requires the
// digitized value to overshoot by a full bin, while any drop commits
// immediately. A transient RPM spike therefore cannot widen the passband,
// but a real slowdown narrows it at once.
type AdaptiveFilter[F Float] struct {
	filter *StreamingFilter[F]

	harmonicOrder float64
	harmonicWidth float64

	// ladder is the quantization ladder in RPM, immutable after construction.
	ladder []float64

	// lastBin is the hysteresis state: the most recently committed bin.
	lastBin int

	// track is scratch reused across Process calls.
	track []float64
}

// NewAdaptive creates an RPM-adaptive scheduler driving the given filter.
// The quantization ladder is built once, spanning MinRPM up to the speed
// whose mapped cutoff reaches the filter's designable maximum.
func NewAdaptive[F Float](filter *StreamingFilter[F], config AdaptiveConfig) (*AdaptiveFilter[F], error) {
	if filter == nil {
		return nil, fmt.Errorf("%w: filter is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	ladder, err := buildLadder(filter, config)
	if err != nil {
		return nil, err
	}

	return &AdaptiveFilter[F]{
		filter:        filter,
		harmonicOrder: config.HarmonicOrder,
		harmonicWidth: config.HarmonicWidth,
		ladder:        ladder,
		lastBin:       lowestBin,
	}, nil
}

// buildLadder constructs the logarithmic RPM quantization ladder.
func buildLadder[F Float](filter *StreamingFilter[F], config AdaptiveConfig) ([]float64, error) {
	scale := cutoffPerRPM(config.HarmonicOrder, config.HarmonicWidth)
	maxRPM := firdesign.MaxCutoff(filter.TransitionFraction(), filter.SampleRate()) / scale
	if maxRPM <= config.MinRPM {
		return nil, fmt.Errorf("%w: minimum RPM %.1f already maps beyond the Nyquist-limited cutoff",
			ErrInvalidConfig, config.MinRPM)
	}

	octaves := math.Log2(maxRPM / config.MinRPM)
	rungs := int(math.Ceil(octaves*float64(config.StepsPerOctave))) + 1
	if rungs < minLadderRungs {
		rungs = minLadderRungs
	}

	raw := floats.LogSpan(make([]float64, rungs), config.MinRPM, maxRPM)

	// Log spacing packs rungs absurdly tightly near the low end; enforce a
	// minimum absolute step there.
	ladder := raw[:1]
	for _, rung := range raw[1:] {
		if rung-ladder[len(ladder)-1] >= config.MinRPMStep {
			ladder = append(ladder, rung)
		}
	}

	if len(ladder) < minLadderRungs {
		return nil, fmt.Errorf("%w: minimum RPM step %.1f leaves no quantization rungs",
			ErrInvalidConfig, config.MinRPMStep)
	}

	return ladder, nil
}

// Process filters one chunk under a cutoff schedule derived from the raw RPM
// track, which must hold one speed sample per input frame. Results are as for
// StreamingFilter.Filter.
//
// When the committed schedule is constant across the whole batch the filter's
// scalar cutoff is updated once instead of paying the per-interval track
// machinery.
func (a *AdaptiveFilter[F]) Process(chunk []F, rpm []float64) ([]F, bool, error) {
	channels := a.filter.Channels()
	if len(chunk)%channels != 0 {
		return nil, false, fmt.Errorf("%w: chunk of %d values is not a whole number of %d-channel frames",
			ErrShape, len(chunk), channels)
	}

	frames := len(chunk) / channels
	if len(rpm) != frames {
		return nil, false, fmt.Errorf("%w: rpm track has %d entries for %d frames",
			ErrShape, len(rpm), frames)
	}

	if frames == 0 {
		return []F{}, a.filter.WarmedUp(), nil
	}

	track := a.quantize(rpm)

	constant := true
	for _, cutoff := range track[1:] {
		if cutoff != track[0] {
			constant = false
			break
		}
	}

	if constant {
		if err := a.filter.SetCutoff(track[0], a.filter.TransitionFraction()); err != nil {
			return nil, false, err
		}
		return a.filter.Filter(chunk, nil)
	}

	return a.filter.Filter(chunk, track)
}

// quantize converts raw RPM samples into a committed cutoff track, advancing
// the hysteresis state one sample at a time.
func (a *AdaptiveFilter[F]) quantize(rpm []float64) []float64 {
	if cap(a.track) < len(rpm) {
		a.track = make([]float64, len(rpm))
	}
	track := a.track[:len(rpm)]

	scale := cutoffPerRPM(a.harmonicOrder, a.harmonicWidth)
	tf := a.filter.TransitionFraction()
	fs := a.filter.SampleRate()

	for i, speed := range rpm {
		bin := a.digitize(speed)

		switch {
		case bin > a.lastBin:
			// Rising requires overshoot: commit one bin below the digitized
			// value, so a single-bin excursion registers no change at all.
			a.lastBin = bin - 1
		case bin < a.lastBin:
			// Falling commits immediately.
			a.lastBin = bin
		}
		// Equal bins forward-fill the previous commitment.

		track[i] = firdesign.ClampCutoff(a.ladder[a.lastBin]*scale, tf, fs)
	}

	return track
}

// digitize maps a speed onto its ladder bin, clamped to the committable range.
func (a *AdaptiveFilter[F]) digitize(rpm float64) int {
	bin := sort.SearchFloat64s(a.ladder, rpm)
	if bin < lowestBin {
		return lowestBin
	}
	if bin > len(a.ladder)-1 {
		return len(a.ladder) - 1
	}
	return bin
}

// SetHarmonic changes the rotational harmonic the cutoff tracks. Only the
// RPM-to-cutoff mapping is affected; the quantization ladder is fixed at
// construction and is not rebuilt.
func (a *AdaptiveFilter[F]) SetHarmonic(order, width float64) error {
	probe := AdaptiveConfig{
		HarmonicOrder:  order,
		HarmonicWidth:  width,
		StepsPerOctave: 1,
		MinRPM:         1,
	}
	if err := probe.Validate(); err != nil {
		return err
	}

	a.harmonicOrder = order
	a.harmonicWidth = width
	return nil
}

// Filter returns the underlying streaming filter.
func (a *AdaptiveFilter[F]) Filter() *StreamingFilter[F] {
	return a.filter
}

// Ladder returns a copy of the RPM quantization ladder.
func (a *AdaptiveFilter[F]) Ladder() []float64 {
	ladder := make([]float64, len(a.ladder))
	copy(ladder, a.ladder)
	return ladder
}

// cutoffPerRPM returns the cutoff in Hz contributed by each RPM.
func cutoffPerRPM(order, width float64) float64 {
	return (order - width/2) / secondsPerMinute
}
