package firdesign

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-streaming-lowpass/internal/testutil"
)

const (
	// Response test parameters
	responsePoints256 = 256
	responseDCBin     = 0

	dcMagnitudeTolerance = 1e-9
	dbTolerance          = 1e-9
)

// TestComputeResponse_DCGain verifies the DC bin of a normalized design is unity.
func TestComputeResponse_DCGain(t *testing.T) {
	coeffs, err := Design(testSpec(testCutoff2k, testTaps101))
	require.NoError(t, err)

	resp := ComputeResponse(coeffs, responsePoints256)

	require.NotEmpty(t, resp.Magnitude)
	assert.Zero(t, resp.Frequencies[responseDCBin])
	assert.InDelta(t, 1.0, resp.Magnitude[responseDCBin], dcMagnitudeTolerance,
		"DC magnitude should be unity for a normalized lowpass")
}

// TestComputeResponse_Grid verifies grid shape: uniform, increasing, below Nyquist.
func TestComputeResponse_Grid(t *testing.T) {
	coeffs, err := Design(testSpec(testCutoff2k, testTaps31))
	require.NoError(t, err)

	resp := ComputeResponse(coeffs, responsePoints256)

	assert.Len(t, resp.Magnitude, len(resp.Frequencies))
	assert.Len(t, resp.Phase, len(resp.Frequencies))
	assert.GreaterOrEqual(t, len(resp.Frequencies), responsePoints256,
		"grid must cover at least the requested points")

	testutil.AssertStrictlyIncreasing(t, resp.Frequencies)
	assert.Less(t, resp.Frequencies[len(resp.Frequencies)-1], 0.5,
		"grid must stay below Nyquist")
	testutil.AssertNoNaNOrInf(t, resp.Magnitude)
}

// TestComputeResponse_DefaultPoints verifies a zero point count selects the default.
func TestComputeResponse_DefaultPoints(t *testing.T) {
	coeffs, err := Design(testSpec(testCutoff2k, testTaps31))
	require.NoError(t, err)

	resp := ComputeResponse(coeffs, 0)
	assert.Len(t, resp.Frequencies, defaultResponsePoints)
}

// TestComputeResponse_LongFilter verifies the grid grows to fit the filter.
func TestComputeResponse_LongFilter(t *testing.T) {
	coeffs, err := Design(testSpec(testCutoff500, testTaps961))
	require.NoError(t, err)

	resp := ComputeResponse(coeffs, responsePoints256)
	assert.GreaterOrEqual(t, responseOversampling*len(resp.Frequencies), len(coeffs),
		"FFT grid must be at least the filter length")
}

// TestMagnitudeDB covers the conversion including the log-of-zero guard.
func TestMagnitudeDB(t *testing.T) {
	tests := []struct {
		name      string
		magnitude float64
		want      float64
	}{
		{"unity", 1.0, 0.0},
		{"half", 0.5, 20 * math.Log10(0.5)},
		{"ten", 10.0, 20.0},
		{"zero_floored", 0.0, -200.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MagnitudeDB(tt.magnitude), dbTolerance)
		})
	}
}

// TestNextPow2 verifies power-of-two rounding.
func TestNextPow2(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{1, 1},
		{2, 2},
		{3, 4},
		{5, 8},
		{512, 512},
		{513, 1024},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, nextPow2(tt.in), "nextPow2(%d)", tt.in)
	}
}
