package lowpass

import (
	"fmt"
	"math"

	"github.com/tphakala/go-streaming-lowpass/internal/convolve"
	"github.com/tphakala/go-streaming-lowpass/internal/firdesign"
	"github.com/tphakala/go-streaming-lowpass/internal/history"
)

// Float is the type constraint for supported sample types.
type Float interface {
	float32 | float64
}

// groupDelayDivisor: a linear-phase FIR delays by half its length in samples.
const groupDelayDivisor = 2

// StreamingFilter is a causal FIR lowpass filter for data arriving in
// successive finite chunks. It keeps the trailing tapCount-1 frames of every
// chunk so that chunk boundaries introduce no discontinuity and no latency
// beyond the filter's inherent group delay, and it supports a per-sample
// cutoff track for cutoff changes within a chunk.
//
// A StreamingFilter owns its continuity state and is not safe for concurrent
// use; each logical sensor stream owns one instance and serializes calls.
type StreamingFilter[F Float] struct {
	sampleRate          float64
	cutoff              float64
	transitionFraction  float64
	frequencyResolution float64
	tapCount            int
	channels            int

	designer *firdesign.Designer
	hist     *history.Buffer[F]
	conv     *convolve.Convolver[F]

	// kernel is the active coefficient set for the scalar cutoff,
	// pre-converted to the sample type.
	kernel []F

	// segments is scratch reused across Filter calls.
	segments []convolve.Segment[F]
}

// New creates a streaming lowpass filter with the specified configuration.
func New[F Float](config *Config) (*StreamingFilter[F], error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := config.normalized()
	tapCount := tapCountFor(cfg.SampleRate, cfg.FrequencyResolution)

	designer, err := firdesign.NewDesigner(cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	f := &StreamingFilter[F]{
		sampleRate:          cfg.SampleRate,
		cutoff:              cfg.Cutoff,
		transitionFraction:  cfg.TransitionFraction,
		frequencyResolution: cfg.FrequencyResolution,
		tapCount:            tapCount,
		channels:            cfg.Channels,
		designer:            designer,
		hist:                history.New[F](tapCount-1, cfg.Channels),
		conv:                convolve.New[F](),
	}

	coeffs, err := designer.Design(f.spec(cfg.Cutoff))
	if err != nil {
		return nil, err
	}
	f.kernel = kernelOf[F](coeffs)

	return f, nil
}

// spec builds the design parameters for a cutoff under the current state.
func (f *StreamingFilter[F]) spec(cutoff float64) firdesign.Spec {
	return firdesign.Spec{
		Cutoff:             cutoff,
		TransitionFraction: f.transitionFraction,
		TapCount:           f.tapCount,
		SampleRate:         f.sampleRate,
	}
}

// SetCutoff changes the active cutoff and transition fraction.
// Fails fast, without touching filter state or history, if the cutoff is not
// positive or the stopband edge would reach Nyquist.
func (f *StreamingFilter[F]) SetCutoff(cutoff, transitionFraction float64) error {
	spec := firdesign.Spec{
		Cutoff:             cutoff,
		TransitionFraction: transitionFraction,
		TapCount:           f.tapCount,
		SampleRate:         f.sampleRate,
	}

	coeffs, err := f.designer.Design(spec)
	if err != nil {
		return fmt.Errorf("set cutoff: %w", err)
	}

	f.kernel = kernelOf[F](coeffs)
	f.cutoff = cutoff
	f.transitionFraction = transitionFraction
	return nil
}

// SetFrequencyResolution changes the filter's frequency resolution, which
// determines the tap count. Buffered history is re-windowed to the new
// capacity: the most recent frames are preserved, and the warm-up counter is
// untouched, so an up-then-down round trip restores the previous state.
func (f *StreamingFilter[F]) SetFrequencyResolution(frequencyResolution float64) error {
	if frequencyResolution <= 0 {
		return fmt.Errorf("%w: frequency resolution must be positive", ErrInvalidConfig)
	}

	tapCount := tapCountFor(f.sampleRate, frequencyResolution)

	spec := f.spec(f.cutoff)
	spec.TapCount = tapCount

	coeffs, err := f.designer.Design(spec)
	if err != nil {
		return fmt.Errorf("set frequency resolution: %w", err)
	}

	f.kernel = kernelOf[F](coeffs)
	f.tapCount = tapCount
	f.frequencyResolution = frequencyResolution
	f.hist.Resize(tapCount - 1)
	return nil
}

// SetChannels changes the per-frame channel width. Buffered history in the
// old layout cannot be aligned with the new one, so it is discarded and the
// filter warms up from scratch.
func (f *StreamingFilter[F]) SetChannels(channels int) error {
	if channels < 1 || channels > maxChannels {
		return fmt.Errorf("%w: channels must be in [1, %d]", ErrInvalidConfig, maxChannels)
	}

	f.channels = channels
	f.hist.Reshape(channels)
	return nil
}

// ResetHistory zeroes the continuity buffer and the warm-up counter.
// Use after a discontinuity in the source stream.
func (f *StreamingFilter[F]) ResetHistory() {
	f.hist.Reset()
}

// Filter lowpass-filters one chunk of frames and returns output aligned to
// the chunk: output sample i is the filtered value of input frame i, delayed
// by the filter's group delay.
//
// chunk holds frames of Channels() interleaved values. cutoffTrack, when
// non-nil, supplies one desired cutoff in Hz per frame; the chunk is split at
// track-change points and each sub-interval is filtered under its own design.
// Track values outside the designable range are clamped rather than rejected.
// When cutoffTrack is nil the whole chunk uses the configured cutoff.
//
// The boolean result reports whether the output is already free of warm-up
// zero padding; it reflects the history state before this chunk is counted,
// so the first tapCount-1 frames ever delivered come back flagged invalid.
func (f *StreamingFilter[F]) Filter(chunk []F, cutoffTrack []float64) ([]F, bool, error) {
	if len(chunk)%f.channels != 0 {
		return nil, false, fmt.Errorf("%w: chunk of %d values is not a whole number of %d-channel frames",
			ErrShape, len(chunk), f.channels)
	}

	frames := len(chunk) / f.channels
	if cutoffTrack != nil && len(cutoffTrack) != frames {
		return nil, false, fmt.Errorf("%w: cutoff track has %d entries for %d frames",
			ErrShape, len(cutoffTrack), frames)
	}

	valid := f.hist.WarmedUp()
	if frames == 0 {
		return []F{}, valid, nil
	}

	segments, err := f.buildSegments(cutoffTrack)
	if err != nil {
		return nil, false, err
	}

	out := make([]F, len(chunk))
	if err := f.conv.Piecewise(out, f.hist.Window(), chunk, f.channels, segments); err != nil {
		return nil, false, err
	}

	if err := f.hist.Push(chunk); err != nil {
		return nil, false, err
	}
	f.hist.RecordConsumed(frames)

	return out, valid, nil
}

// buildSegments partitions the chunk at cutoff-change points and designs one
// kernel per distinct cutoff value encountered.
func (f *StreamingFilter[F]) buildSegments(cutoffTrack []float64) ([]convolve.Segment[F], error) {
	f.segments = f.segments[:0]

	if cutoffTrack == nil {
		f.segments = append(f.segments, convolve.Segment[F]{Start: 0, Kernel: f.kernel})
		return f.segments, nil
	}

	// Distinct cutoffs within one track are few; kernels designed here are
	// additionally memoized across calls by the designer.
	kernels := make(map[float64][]F)

	// Segment on the clamped value: runs of different raw extremes (including
	// NaN, which never compares equal to itself) collapse onto the same edge
	// of the designable range and must share one segment.
	prev := math.NaN()
	for i, requested := range cutoffTrack {
		clamped := firdesign.ClampCutoff(requested, f.transitionFraction, f.sampleRate)
		if i > 0 && clamped == prev {
			continue
		}
		prev = clamped

		kernel, ok := kernels[clamped]
		if !ok {
			coeffs, err := f.designer.Design(f.spec(clamped))
			if err != nil {
				return nil, err
			}
			kernel = kernelOf[F](coeffs)
			kernels[clamped] = kernel
		}

		f.segments = append(f.segments, convolve.Segment[F]{Start: i, Kernel: kernel})
	}

	return f.segments, nil
}

// GroupDelay returns the fixed delay of the current linear-phase design in
// seconds: (tapCount-1) / (2 * sampleRate).
func (f *StreamingFilter[F]) GroupDelay() float64 {
	return float64(f.tapCount-1) / (groupDelayDivisor * f.sampleRate)
}

// SampleRate returns the configured sample rate in Hz.
func (f *StreamingFilter[F]) SampleRate() float64 { return f.sampleRate }

// Cutoff returns the active scalar cutoff in Hz.
func (f *StreamingFilter[F]) Cutoff() float64 { return f.cutoff }

// TransitionFraction returns the active transition-band fraction.
func (f *StreamingFilter[F]) TransitionFraction() float64 { return f.transitionFraction }

// FrequencyResolution returns the configured frequency resolution in Hz.
func (f *StreamingFilter[F]) FrequencyResolution() float64 { return f.frequencyResolution }

// TapCount returns the current filter length.
func (f *StreamingFilter[F]) TapCount() int { return f.tapCount }

// Channels returns the per-frame channel width.
func (f *StreamingFilter[F]) Channels() int { return f.channels }

// WarmedUp reports whether enough history has accumulated for valid output.
func (f *StreamingFilter[F]) WarmedUp() bool { return f.hist.WarmedUp() }

// DesignCount returns how many distinct filter designs have been computed,
// excluding coefficient-cache hits.
func (f *StreamingFilter[F]) DesignCount() int64 { return f.designer.DesignCount() }

// kernelOf converts designed float64 coefficients to the sample type.
func kernelOf[F Float](coeffs []float64) []F {
	kernel := make([]F, len(coeffs))
	for i, c := range coeffs {
		kernel[i] = F(c)
	}
	return kernel
}
