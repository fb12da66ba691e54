// Command lowpass-wav applies a streaming FIR lowpass filter to WAV files.
//
// Usage:
//
//	lowpass-wav -cutoff 2000 input.wav output.wav
//	lowpass-wav -cutoff 500 -resolution 25 input.wav output.wav
//	lowpass-wav -cutoff 2000 -fast input.wav output.wav   # float32 precision
//
// The file is processed in fixed-size chunks through the same streaming path
// a live capture would use, so the output is identical to single-pass
// filtering of the whole file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	lowpass "github.com/tphakala/go-streaming-lowpass"
)

const (
	// Buffer size for processing (number of frames per chunk)
	// Larger buffers reduce I/O overhead and improve cache utilization
	bufferSize = 65536

	// CLI defaults
	defaultCutoffHz     = 2000.0
	defaultResolutionHz = 50.0
	minRequiredArgs     = 2

	progressInterval = 10 // Print progress every N%
	percentScale     = 100
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Parse command line flags
	cutoff := flag.Float64("cutoff", defaultCutoffHz, "Passband edge in Hz")
	transition := flag.Float64("transition", 0, "Transition fraction: stopband edge at cutoff*(1+fraction); 0 = default 0.5")
	resolution := flag.Float64("resolution", defaultResolutionHz, "Frequency resolution in Hz (finer = longer filter, more delay)")
	fast := flag.Bool("fast", false, "Use float32 precision (~2x SIMD throughput, sufficient for 16-bit audio)")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	// Validate arguments before setting up profiling
	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -cutoff 2000 input.wav output.wav          # 2 kHz lowpass\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -cutoff 300 -resolution 10 hum.wav out.wav # Sharp 300 Hz lowpass\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}

	// Start CPU profiling if requested (for PGO)
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	inputPath := args[0]
	outputPath := args[1]

	if *verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
		log.Printf("Cutoff: %.1f Hz", *cutoff)
		log.Printf("Resolution: %.1f Hz", *resolution)
		if *fast {
			log.Printf("Precision: float32 (fast mode)")
		} else {
			log.Printf("Precision: float64 (high precision)")
		}
	}

	// Process the file
	start := time.Now()
	var stats *filterStats
	var err error
	if *fast {
		stats, err = filterWAVGeneric[float32](inputPath, outputPath, *cutoff, *transition, *resolution, *verbose)
	} else {
		stats, err = filterWAVGeneric[float64](inputPath, outputPath, *cutoff, *transition, *resolution, *verbose)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	// Print summary
	fmt.Printf("Filtered %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d Hz, %d channels, %d-bit, cutoff %.1f Hz (%d taps, %.1f ms group delay)\n",
		stats.rate, stats.channels, stats.bitDepth, *cutoff, stats.tapCount, stats.groupDelay*1000)
	fmt.Printf("  %d frames processed\n", stats.frames)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.frames)/float64(stats.rate)/elapsed.Seconds())

	return nil
}

type filterStats struct {
	rate       int
	channels   int
	bitDepth   int
	frames     int64
	tapCount   int
	groupDelay float64
}

// Float constraint for generic processing.
type Float interface {
	float32 | float64
}

func filterWAVGeneric[F Float](inputPath, outputPath string, cutoff, transition, resolution float64, verbose bool) (stats *filterStats, err error) {
	// 1. Open and validate input
	input, err := openWAVInput(inputPath, verbose)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	// 2. Create the filter with the input's channel layout
	f, err := lowpass.New[F](&lowpass.Config{
		SampleRate:          float64(input.rate),
		Cutoff:              cutoff,
		TransitionFraction:  transition,
		FrequencyResolution: resolution,
		Channels:            input.channels,
	})
	if err != nil {
		return nil, err
	}

	if verbose {
		log.Printf("Filter: %d taps, %.1f ms group delay", f.TapCount(), f.GroupDelay()*1000)
	}

	// 3. Create output writer
	output, err := createWAVOutput(outputPath, input.rate, input.bitDepth, input.channels)
	if err != nil {
		return nil, err
	}
	// Close output, capturing close errors on success path (important for WAV header updates)
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	// 4. Initialize processing buffers
	buffers := newFilterBuffers[F](input.channels, input.bitDepth, input.format)

	// 5. Initialize tracking
	stats = &filterStats{
		rate:       input.rate,
		channels:   input.channels,
		bitDepth:   input.bitDepth,
		tapCount:   f.TapCount(),
		groupDelay: f.GroupDelay(),
	}
	progress := newProgressTracker(input.totalSamples, verbose)

	// 6. Main processing loop
	for {
		// Read chunk
		n, err := input.decoder.PCMBuffer(buffers.intBuffer)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		if n == 0 {
			break
		}

		// go-audio reports values read, not frames
		values := n
		frames := values / input.channels
		stats.frames += int64(frames)

		// Normalize to [-1, 1], keeping the interleaved layout
		normalizeInto(buffers.intBuffer.Data[:values], buffers.sampleBuf[:values], buffers.invMaxVal)

		// Filter
		filtered, _, err := f.Filter(buffers.sampleBuf[:values], nil)
		if err != nil {
			return nil, fmt.Errorf("filtering failed: %w", err)
		}

		// Denormalize and write
		denormalizeInto(filtered, buffers.outputIntBuf[:values], buffers.maxVal)
		if err := output.WriteSamples(buffers.outputIntBuf[:values]); err != nil {
			return nil, fmt.Errorf("failed to write audio data: %w", err)
		}

		// Progress reporting
		progress.reportIfNeeded(stats.frames)

		// Reset buffer
		buffers.intBuffer.Data = buffers.intBuffer.Data[:cap(buffers.intBuffer.Data)]
	}

	return stats, nil
}

// normalizeInto converts int PCM samples to floats in [-1, 1].
func normalizeInto[F Float](data []int, dst []F, invMaxVal float64) {
	for i, s := range data {
		dst[i] = F(float64(s) * invMaxVal)
	}
}

// denormalizeInto converts floats in [-1, 1] back to clamped int PCM samples.
func denormalizeInto[F Float](data []F, dst []int, maxVal float64) {
	for i, v := range data {
		sample := float64(v)
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}
		dst[i] = int(sample * maxVal)
	}
}
