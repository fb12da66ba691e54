package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Normalization constants per bit depth
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// wavAudioFormatPCM is the RIFF format tag for integer PCM.
	wavAudioFormatPCM = 1
)

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file         *os.File
	decoder      *wav.Decoder
	rate         int
	channels     int
	bitDepth     int
	totalSamples int64
	format       *audio.Format
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string, verbose bool) (*wavInputInfo, error) {
	// Open input file
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	// Create WAV decoder
	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	// Read format info
	format := decoder.Format()
	inputRate := format.SampleRate
	channels := format.NumChannels
	bitDepth := int(decoder.BitDepth)

	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", inputRate, channels, bitDepth)
	}

	// Get total duration for progress reporting
	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}
	totalSamples := int64(duration.Seconds() * float64(inputRate))

	return &wavInputInfo{
		file:         inputFile,
		decoder:      decoder,
		rate:         inputRate,
		channels:     channels,
		bitDepth:     bitDepth,
		totalSamples: totalSamples,
		format:       format,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// wavOutputWriter wraps the output file and encoder.
type wavOutputWriter struct {
	file    *os.File
	encoder *wav.Encoder
	format  *audio.Format
	depth   int
}

// createWAVOutput creates the output file and encoder.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	encoder := wav.NewEncoder(outputFile, sampleRate, bitDepth, channels, wavAudioFormatPCM)

	return &wavOutputWriter{
		file:    outputFile,
		encoder: encoder,
		format:  &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		depth:   bitDepth,
	}, nil
}

// WriteSamples writes interleaved int PCM samples to the output file.
func (w *wavOutputWriter) WriteSamples(samples []int) error {
	buf := &audio.IntBuffer{
		Data:           samples,
		Format:         w.format,
		SourceBitDepth: w.depth,
	}
	return w.encoder.Write(buf)
}

// Close finalizes the WAV header and closes the file.
func (w *wavOutputWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// filterBuffers holds all preallocated buffers for filtering.
type filterBuffers[F Float] struct {
	intBuffer    *audio.IntBuffer
	sampleBuf    []F
	outputIntBuf []int
	invMaxVal    float64
	maxVal       float64
}

// newFilterBuffers creates and preallocates all processing buffers.
func newFilterBuffers[F Float](channels, bitDepth int, format *audio.Format) *filterBuffers[F] {
	// Preallocate buffers for reuse (reduces GC pressure)
	intBuffer := &audio.IntBuffer{
		Data:   make([]int, bufferSize*channels),
		Format: format,
	}

	// Precompute max value for bit depth
	maxVal := getMaxValue(bitDepth)

	return &filterBuffers[F]{
		intBuffer:    intBuffer,
		sampleBuf:    make([]F, bufferSize*channels),
		outputIntBuf: make([]int, bufferSize*channels),
		invMaxVal:    1.0 / maxVal,
		maxVal:       maxVal,
	}
}

// getMaxValue returns the maximum sample value for the given bit depth.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalSamples int64
	lastProgress int
	verbose      bool
}

// newProgressTracker creates a new progress tracker.
func newProgressTracker(totalSamples int64, verbose bool) *progressTracker {
	return &progressTracker{
		totalSamples: totalSamples,
		verbose:      verbose,
	}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(currentSamples int64) {
	if !p.verbose || p.totalSamples == 0 {
		return
	}

	progress := int(float64(currentSamples) / float64(p.totalSamples) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}
