// Package lowpass provides causal streaming FIR lowpass filtering in pure Go.
//
// The filter is designed for continuous sensor and audio streams that arrive
// in successive finite chunks: it carries the trailing tapCount-1 frames of
// every chunk forward, so chunk boundaries introduce no discontinuity and the
// only latency is the filter's inherent group delay. Coefficients come from a
// linear-phase least-squares design and are memoized, so sweeping the cutoff
// over a quantized set of values costs one design per distinct value, total.
//
// # Features
//
//   - Linear-phase type-I FIR lowpass designed by least squares (gonum)
//   - Streaming operation with exact continuity across chunk boundaries
//   - Per-sample cutoff tracks: the cutoff may change mid-chunk, and each
//     sub-interval is filtered under its own design
//   - RPM-adaptive cutoff scheduling with quantization and hysteresis for
//     order-tracking applications
//   - Bounded LRU memoization of designed coefficient sets
//   - Multi-channel interleaved frames with a SIMD-accelerated stereo path
//   - float32 and float64 sample types via generics
//
// # Quick Start
//
// For simple one-shot filtering:
//
//	output, err := lowpass.FilterMono(input, 48000, 2000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For streaming filtering with a reusable filter:
//
//	config := &lowpass.Config{
//	    SampleRate:          48000,
//	    Cutoff:              2000,
//	    FrequencyResolution: 50,
//	}
//	f, err := lowpass.New[float64](config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for chunk := range sensorChunks {
//	    output, valid, err := f.Filter(chunk, nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if valid {
//	        writeOutput(output)
//	    }
//	}
//
// The valid flag is false until tapCount-1 frames of history have
// accumulated; before that, output samples still reflect zero padding.
//
// # Time-Varying Cutoff
//
// Pass a cutoff track with one entry per frame to change the cutoff within a
// chunk. The chunk is partitioned at change points and each piece is
// convolved under its own kernel; track values outside the designable range
// are clamped rather than rejected:
//
//	track := make([]float64, len(chunk))
//	// fill track with the desired cutoff per sample...
//	output, valid, err := f.Filter(chunk, track)
//
// # RPM-Adaptive Scheduling
//
// [AdaptiveFilter] derives the cutoff track from a rotational-speed
// measurement. Speeds are quantized onto a logarithmic ladder and passed
// through asymmetric hysteresis, so sensor noise near a quantization boundary
// does not churn the filter design:
//
//	af, err := lowpass.NewAdaptive(f, lowpass.AdaptiveConfig{
//	    HarmonicOrder:  10,
//	    HarmonicWidth:  1,
//	    StepsPerOctave: 12,
//	    MinRPM:         60,
//	})
//	output, valid, err := af.Process(chunk, rpmTrack)
//
// # Thread Safety
//
// A [StreamingFilter] owns per-stream continuity state and is not safe for
// concurrent use. Give each logical stream its own instance and serialize
// calls on it; separate instances are fully independent.
package lowpass
