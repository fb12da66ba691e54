// Package firdesign provides least-squares linear-phase FIR lowpass design
// with bounded memoization of computed coefficient sets.
package firdesign

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/mat"
)

const (
	// Filter design constants
	minTapCount = 3
	maxTapCount = 8191

	// Nyquist margin handling for array-based cutoff requests.
	// A requested cutoff is pulled back so that the stopband edge stays
	// strictly below Nyquist, and lifted so the passband keeps a usable width.
	maxEdgeRatio   = 0.999
	minCutoffRatio = 1e-3

	// Filter normalization
	filterGainTarget  = 1.0
	dcGainZeroEpsilon = 1e-12

	// Coefficient symmetry: h[center-k] = h[center+k] = a[k]/2
	halfCoefficient = 2.0
)

// Spec holds the parameters of one lowpass filter design.
//
// The struct is comparable and is used directly as the memoization key:
// two Specs with identical fields always yield identical coefficients.
type Spec struct {
	// Cutoff is the passband edge in Hz (gain 1).
	Cutoff float64

	// TransitionFraction sets the stopband edge at Cutoff*(1+TransitionFraction)
	// (gain 0). Must be in (0, 1).
	TransitionFraction float64

	// TapCount is the filter length. Must be odd for a symmetric type-I design.
	TapCount int

	// SampleRate is the sample rate in Hz.
	SampleRate float64
}

// StopbandEdge returns the frequency in Hz above which the design targets zero gain.
func (s Spec) StopbandEdge() float64 {
	return s.Cutoff * (1 + s.TransitionFraction)
}

// Validate checks if the design parameters are valid.
func (s Spec) Validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %f Hz (must be positive)", s.SampleRate)
	}

	if s.TapCount < minTapCount || s.TapCount > maxTapCount {
		return fmt.Errorf("tap count %d out of range [%d, %d]", s.TapCount, minTapCount, maxTapCount)
	}

	if s.TapCount%2 == 0 {
		return fmt.Errorf("tap count %d must be odd for a linear-phase design", s.TapCount)
	}

	if s.TransitionFraction <= 0 || s.TransitionFraction >= 1 {
		return fmt.Errorf("transition fraction %f out of range (0, 1)", s.TransitionFraction)
	}

	if s.Cutoff <= 0 {
		return fmt.Errorf("invalid cutoff frequency: %f Hz (must be positive)", s.Cutoff)
	}

	if s.StopbandEdge() >= s.SampleRate/2 {
		return fmt.Errorf("stopband edge %f Hz reaches Nyquist (%f Hz): lower the cutoff or transition fraction",
			s.StopbandEdge(), s.SampleRate/2)
	}

	return nil
}

// MaxCutoff returns the highest cutoff in Hz whose stopband edge still clears
// the Nyquist margin for the given transition fraction and sample rate.
func MaxCutoff(transitionFraction, sampleRate float64) float64 {
	return maxEdgeRatio * sampleRate / 2 / (1 + transitionFraction)
}

// ClampCutoff pulls an arbitrary requested cutoff into the valid design region.
//
// This is the self-correcting path for per-sample cutoff tracks: a transient
// extreme in a track must not abort the whole batch, so out-of-range values
// are mapped to the nearest designable cutoff instead of failing.
func ClampCutoff(cutoff, transitionFraction, sampleRate float64) float64 {
	hi := MaxCutoff(transitionFraction, sampleRate)
	lo := hi * minCutoffRatio

	switch {
	case math.IsNaN(cutoff):
		return lo
	case cutoff < lo:
		return lo
	case cutoff > hi:
		return hi
	default:
		return cutoff
	}
}

// Design computes linear-phase lowpass FIR coefficients by least squares.
//
// The design minimizes the integrated squared error between the filter's
// amplitude response and the ideal response (gain 1 on [0, cutoff], gain 0 on
// [stopband edge, Nyquist]); the transition band is unconstrained. For a
// symmetric odd-length filter the amplitude is
//
//	A(ω) = Σₖ aₖ·cos(kω), k = 0..M, M = (TapCount-1)/2
//
// and the minimizer solves the normal equations Q·a = b, where Q and b are
// band integrals of cosine products with closed forms. Q is a Gram matrix and
// therefore symmetric positive definite, so a Cholesky solve applies; an LU
// solve is the fallback for near-singular corner cases.
//
// Returns:
//
//	Coefficients of length TapCount, normalized to exactly unit DC gain.
//	Error if the spec violates its invariants.
func Design(spec Spec) ([]float64, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	// Band edges in radians per sample.
	passEdge := 2 * math.Pi * spec.Cutoff / spec.SampleRate
	stopEdge := 2 * math.Pi * spec.StopbandEdge() / spec.SampleRate

	half := (spec.TapCount - 1) / 2
	n := half + 1

	// Normal equations: Q[i][j] integrates cos(iω)cos(jω) over both bands,
	// b[i] integrates the desired response (1 in the passband) against cos(iω).
	q := mat.NewSymDense(n, nil)
	b := mat.NewVecDense(n, nil)

	for i := 0; i < n; i++ {
		b.SetVec(i, cosIntegral(i, 0, passEdge))

		for j := i; j < n; j++ {
			v := (cosIntegral(i-j, 0, passEdge) + cosIntegral(i+j, 0, passEdge) +
				cosIntegral(i-j, stopEdge, math.Pi) + cosIntegral(i+j, stopEdge, math.Pi)) / halfCoefficient
			q.SetSym(i, j, v)
		}
	}

	a := mat.NewVecDense(n, nil)

	var chol mat.Cholesky
	if chol.Factorize(q) {
		if err := chol.SolveVecTo(a, b); err != nil && !isConditionWarning(err) {
			return nil, fmt.Errorf("least-squares solve failed: %w", err)
		}
	} else {
		// Q can lose definiteness to rounding for very long filters with
		// narrow bands or cutoffs near the clamp floor; LU still recovers a
		// usable solution, flagging ill-conditioning through mat.Condition.
		var lu mat.LU
		lu.Factorize(q)
		if err := lu.SolveVecTo(a, false, b); err != nil && !isConditionWarning(err) {
			return nil, fmt.Errorf("least-squares solve failed: %w", err)
		}
	}

	// Expand the cosine-series solution into the symmetric impulse response.
	coeffs := make([]float64, spec.TapCount)
	coeffs[half] = a.AtVec(0)
	for k := 1; k <= half; k++ {
		c := a.AtVec(k) / halfCoefficient
		coeffs[half-k] = c
		coeffs[half+k] = c
	}

	// Normalize for exact unit gain at DC.
	// Uses SIMD-accelerated sum and scale operations.
	sum := f64.Sum(coeffs)
	if math.Abs(sum) > dcGainZeroEpsilon {
		f64.Scale(coeffs, coeffs, filterGainTarget/sum)
	}

	return coeffs, nil
}

// isConditionWarning reports whether err only flags a high condition number.
// gonum writes the computed solution to the receiver even when it returns
// mat.Condition, so the result stays usable for clamped edge-of-range cutoffs.
func isConditionWarning(err error) bool {
	var cond mat.Condition
	return errors.As(err, &cond)
}

// cosIntegral evaluates the definite integral of cos(kω) over [lo, hi].
func cosIntegral(k int, lo, hi float64) float64 {
	if k == 0 {
		return hi - lo
	}
	fk := float64(k)
	return (math.Sin(fk*hi) - math.Sin(fk*lo)) / fk
}
