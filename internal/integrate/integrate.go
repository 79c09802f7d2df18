// Package integrate provides single step trapezoidal integration of a sampled signal.
package integrate

// Trapezoid is a running trapezoidal integrator.  The zero value is ready to use.
type Trapezoid struct {
	previous    float64
	sum         float64
	initialised bool
}

// Update adds the area between the previous value and v, dt seconds apart, and
// returns the running integral.  The first value only seeds the integrator and returns 0.
func (t *Trapezoid) Update(v, dt float64) float64 {
	if !t.initialised {
		t.previous, t.initialised = v, true
		return 0.0
	}

	t.sum += 0.5 * dt * (t.previous + v)
	t.previous = v

	return t.sum
}

// Value returns the current integral.
func (t *Trapezoid) Value() float64 {
	return t.sum
}

// Reset clears the integrator, the next Update will seed it again.
func (t *Trapezoid) Reset() {
	*t = Trapezoid{}
}

// Series integrates a whole signal with sample interval dt.
func Series(in []float64, dt float64) []float64 {
	var t Trapezoid

	out := make([]float64, len(in))
	for i := range in {
		out[i] = t.Update(in[i], dt)
	}

	return out
}
