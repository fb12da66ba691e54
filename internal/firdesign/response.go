package firdesign

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Frequency response constants.
const (
	// Default number of response points when the caller passes 0.
	defaultResponsePoints = 512

	// The FFT grid is twice the point count so the returned points cover
	// [0, Nyquist) at uniform spacing.
	responseOversampling = 2
)

// Response holds the sampled frequency response of a FIR filter.
type Response struct {
	// Frequencies at which the response was evaluated (normalized, 0 to 0.5)
	Frequencies []float64

	// Magnitude response at each frequency (linear scale)
	Magnitude []float64

	// Phase response at each frequency (radians)
	Phase []float64
}

// ComputeResponse evaluates the frequency response of a FIR filter on a
// uniform grid from DC up to (but excluding) Nyquist.
//
// The coefficients are zero-padded onto a power-of-two grid and transformed
// with a real FFT, so numPoints is rounded up to the next power of two
// (and further, if the filter is longer than the requested grid).
func ComputeResponse(coeffs []float64, numPoints int) Response {
	if numPoints <= 0 {
		numPoints = defaultResponsePoints
	}

	fftSize := nextPow2(numPoints * responseOversampling)
	for fftSize < len(coeffs) {
		fftSize *= 2
	}
	points := fftSize / responseOversampling

	padded := make([]float64, fftSize)
	copy(padded, coeffs)

	fft := fourier.NewFFT(fftSize)
	bins := fft.Coefficients(nil, padded)

	response := Response{
		Frequencies: make([]float64, points),
		Magnitude:   make([]float64, points),
		Phase:       make([]float64, points),
	}

	for k := 0; k < points; k++ {
		response.Frequencies[k] = float64(k) / float64(fftSize)
		response.Magnitude[k] = cmplx.Abs(bins[k])
		response.Phase[k] = cmplx.Phase(bins[k])
	}

	return response
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	const (
		minMagnitude = 1e-10 // Avoid log(0)
		dbMultiplier = 20.0  // 20*log10 for magnitude
	)

	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
