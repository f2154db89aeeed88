package logic

// History is a fixed-capacity ring of recent durations.
// When full, a push overwrites the oldest sample so the statistics follow
// the operator's current speed.
// Not safe for concurrent use.
type History struct {
	buf   []Millis
	head  int // next write position
	count int
}

// NewHistory creates a history holding up to capacity samples (minimum 1).
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]Millis, capacity)}
}

// Push records a duration. It returns false if the oldest sample was
// evicted to make room.
func (h *History) Push(d Millis) bool {
	h.buf[h.head] = d
	h.head = (h.head + 1) % len(h.buf)
	if h.count == len(h.buf) {
		return false
	}
	h.count++
	return true
}

// Values returns the samples oldest first.
func (h *History) Values() []Millis {
	out := make([]Millis, h.count)
	start := (h.head - h.count + len(h.buf)) % len(h.buf)
	for i := 0; i < h.count; i++ {
		out[i] = h.buf[(start+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of samples held.
func (h *History) Len() int { return h.count }

// Cap returns the capacity.
func (h *History) Cap() int { return len(h.buf) }

// Reset empties the history.
func (h *History) Reset() {
	h.head = 0
	h.count = 0
}
