package buffer

// Ring is a fixed-capacity sliding window. Pushing onto a full ring
// drops the oldest value, so the ring always holds the most recent
// pushes in order.
type Ring[T any] struct {
	buf   []T
	start int
	n     int
}

// NewRing creates a ring holding at most capacity values.
// It panics if capacity is not positive.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("buffer: ring capacity must be positive")
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest value if the ring is full.
func (r *Ring[T]) Push(v T) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

// Len returns the number of values currently held.
func (r *Ring[T]) Len() int {
	return r.n
}

// Cap returns the ring's capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Values returns the held values oldest first. The slice is a copy.
func (r *Ring[T]) Values() []T {
	out := make([]T, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Reset discards all held values.
func (r *Ring[T]) Reset() {
	r.start = 0
	r.n = 0
}
