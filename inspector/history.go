package inspector

import "math"

// History is a fixed-size ring buffer holding several parallel series.
type History struct {
	values [][]float64
	index  int
	count  int
}

// NewHistory creates a history of the given number of series, each keeping
// the most recent size points.
func NewHistory(series, size int) *History {
	h := &History{values: make([][]float64, series)}
	for i := range h.values {
		h.values[i] = make([]float64, size)
	}
	return h
}

// Push appends one point to every series. Missing values are recorded as 0.
func (h *History) Push(vals ...float64) {
	size := h.Cap()
	if size == 0 {
		return
	}
	for s := range h.values {
		v := 0.0
		if s < len(vals) {
			v = vals[s]
		}
		h.values[s][h.index] = v
	}
	h.index = (h.index + 1) % size
	if h.count < size {
		h.count++
	}
}

// Len returns the number of points held.
func (h *History) Len() int { return h.count }

// Cap returns the maximum number of points held.
func (h *History) Cap() int {
	if len(h.values) == 0 {
		return 0
	}
	return len(h.values[0])
}

// At returns point i of series s, oldest first.
func (h *History) At(s, i int) float64 {
	size := h.Cap()
	return h.values[s][(h.index-h.count+i+size)%size]
}

// Last returns the newest point of series s.
func (h *History) Last(s int) (float64, bool) {
	if h.count == 0 {
		return 0, false
	}
	return h.At(s, h.count-1), true
}

// Range returns the min and max across the given series.
func (h *History) Range(series ...int) (lo, hi float64, ok bool) {
	lo, hi = math.MaxFloat64, -math.MaxFloat64
	for _, s := range series {
		for i := 0; i < h.count; i++ {
			v := h.At(s, i)
			lo = min(lo, v)
			hi = max(hi, v)
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// Reset drops every point.
func (h *History) Reset() {
	h.index = 0
	h.count = 0
}
