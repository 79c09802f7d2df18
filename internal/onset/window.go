package onset

// window is a fixed capacity ring of values with a running sum.
type window struct {
	data []float64
	pos  int
	sum  float64
}

func newWindow(n int) *window {
	return &window{
		data: make([]float64, n),
	}
}

// Push overwrites the oldest slot with v and returns the value it replaced.
// The sum is updated incrementally.
func (w *window) Push(v float64) (out float64) {
	out = w.data[w.pos]

	w.sum -= out
	w.sum += v

	w.data[w.pos] = v
	w.pos++
	if w.pos >= len(w.data) {
		w.pos = 0
	}

	return out
}

// Sum returns the running sum of the window contents.
func (w *window) Sum() float64 {
	return w.sum
}

// Len is the window capacity.
func (w *window) Len() int {
	return len(w.data)
}
