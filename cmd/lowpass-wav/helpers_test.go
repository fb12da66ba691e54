package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGetMaxValue verifies bit-depth normalization constants.
func TestGetMaxValue(t *testing.T) {
	tests := []struct {
		bitDepth int
		want     float64
	}{
		{16, maxInt16},
		{24, maxInt24},
		{32, maxInt32},
		{8, maxInt16}, // unknown depths fall back to 16-bit
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, getMaxValue(tt.bitDepth), "bit depth %d", tt.bitDepth)
	}
}

// TestNormalizeDenormalizeRoundTrip verifies PCM conversion round-trips.
func TestNormalizeDenormalizeRoundTrip(t *testing.T) {
	samples := []int{0, 1, -1, 1000, -1000, 32767, -32767}

	normalized := make([]float64, len(samples))
	normalizeInto(samples, normalized, 1.0/maxInt16)

	restored := make([]int, len(samples))
	denormalizeInto(normalized, restored, maxInt16)

	assert.Equal(t, samples, restored)
}

// TestDenormalizeInto_Clamps verifies out-of-range floats clip instead of wrapping.
func TestDenormalizeInto_Clamps(t *testing.T) {
	dst := make([]int, 2)
	denormalizeInto([]float64{1.5, -1.5}, dst, maxInt16)

	assert.Equal(t, []int{32767, -32767}, dst)
}
