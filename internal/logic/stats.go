package logic

import "math"

// Mean returns the arithmetic mean of the history, or 0 when empty.
func Mean(h *History) float64 {
	if h.Len() == 0 {
		return 0
	}
	var sum float64
	for _, v := range h.Values() {
		sum += float64(v)
	}
	return sum / float64(h.Len())
}

// StdDev returns the sample standard deviation (n-1 denominator).
// It is exactly 0 for fewer than two samples.
func StdDev(h *History) float64 {
	n := h.Len()
	if n <= 1 {
		return 0
	}
	mean := Mean(h)
	var sum float64
	for _, v := range h.Values() {
		diff := float64(v) - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(n-1))
}
