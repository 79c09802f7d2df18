/*
Package biquad provides real-time second order (Butterworth) IIR filtering of strong motion
samples.  Coefficients come from the bilinear transform and are computed once per
sampling rate and cutoff; the filter state is kept per channel.

Filters are direct form I:

	y0 = a0*x0 + a1*x1 + a2*x2 - b1*y1 - b2*y2
*/
package biquad

import (
	"fmt"
	"math"
)

// Coefficients are the five bilinear transform coefficients of a biquad section.
type Coefficients struct {
	A0, A1, A2 float64 // feed forward
	B1, B2     float64 // feedback
}

// State holds the last two inputs and outputs of a single filter instance.
type State struct {
	X1, X2 float64
	Y1, Y2 float64
}

// HighPass returns second order Butterworth high-pass coefficients for sampling
// rate fs and cutoff fc (Hz).
func HighPass(fs, fc float64) (Coefficients, error) {
	k, norm, err := prewarp(fs, fc)
	if err != nil {
		return Coefficients{}, err
	}

	return Coefficients{
		A0: norm,
		A1: -2.0 * norm,
		A2: norm,
		B1: 2.0 * (k*k - 1.0) * norm,
		B2: (1.0 - math.Sqrt2*k + k*k) * norm,
	}, nil
}

// LowPass returns second order Butterworth low-pass coefficients for sampling
// rate fs and cutoff fc (Hz).
func LowPass(fs, fc float64) (Coefficients, error) {
	k, norm, err := prewarp(fs, fc)
	if err != nil {
		return Coefficients{}, err
	}

	return Coefficients{
		A0: k * k * norm,
		A1: 2.0 * k * k * norm,
		A2: k * k * norm,
		B1: 2.0 * (k*k - 1.0) * norm,
		B2: (1.0 - math.Sqrt2*k + k*k) * norm,
	}, nil
}

// prewarp validates fs and fc and returns K = tan(w/2) and the normalisation term.
func prewarp(fs, fc float64) (float64, float64, error) {
	switch {
	case math.IsNaN(fs) || math.IsInf(fs, 0) || fs <= 0.0:
		return 0, 0, fmt.Errorf("invalid sampling rate %g: must be positive", fs)
	case math.IsNaN(fc) || math.IsInf(fc, 0) || fc <= 0.0:
		return 0, 0, fmt.Errorf("invalid cutoff %g: must be positive", fc)
	case fc >= fs/2.0:
		return 0, 0, fmt.Errorf("invalid cutoff %g: must be below the nyquist frequency %g", fc, fs/2.0)
	}

	k := math.Tan(math.Pi * fc / fs)

	return k, 1.0 / (1.0 + math.Sqrt2*k + k*k), nil
}

// Apply filters x0 using the state s, which is updated in place.
// NaN and Inf are passed through.
func (c Coefficients) Apply(s *State, x0 float64) float64 {
	y0 := c.A0*x0 + c.A1*s.X1 + c.A2*s.X2 - c.B1*s.Y1 - c.B2*s.Y2

	s.X2, s.X1 = s.X1, x0
	s.Y2, s.Y1 = s.Y1, y0

	return y0
}

// Reset puts the filter back at rest.
func (s *State) Reset() {
	*s = State{}
}

// Filter pairs a set of coefficients with its own state.
type Filter struct {
	Coefficients
	State
}

// NewFilter returns a Filter at rest using c.
func NewFilter(c Coefficients) *Filter {
	return &Filter{Coefficients: c}
}

// Sample filters a single value.
func (f *Filter) Sample(x float64) float64 {
	return f.Apply(&f.State, x)
}

// Series filters a whole signal starting from rest.  For offline validation only.
func Series(c Coefficients, in []float64) []float64 {
	var s State

	out := make([]float64, len(in))
	for i := range in {
		out[i] = c.Apply(&s, in[i])
	}

	return out
}
