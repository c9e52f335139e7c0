package buffer

import "iter"

// Chunker regroups arbitrarily sized slices into fixed-size chunks.
// Values that do not yet fill a chunk are held until later pushes
// complete them, so chunk boundaries are independent of push sizes.
type Chunker[T any] struct {
	size int
	pend []T
}

// NewChunker creates a chunker emitting chunks of exactly size values.
// It panics if size is not positive.
func NewChunker[T any](size int) *Chunker[T] {
	if size <= 0 {
		panic("buffer: chunk size must be positive")
	}
	return &Chunker[T]{size: size}
}

// Push appends values and returns an iterator over the complete chunks
// now available. Yielded chunks alias internal storage and are only
// valid until the next iteration step. Chunks left unconsumed by an
// early break stay queued for the next Push.
func (c *Chunker[T]) Push(values []T) iter.Seq[[]T] {
	c.pend = append(c.pend, values...)
	return func(yield func([]T) bool) {
		off := 0
		for len(c.pend)-off >= c.size {
			chunk := c.pend[off : off+c.size]
			off += c.size
			if !yield(chunk) {
				break
			}
		}
		n := copy(c.pend, c.pend[off:])
		c.pend = c.pend[:n]
	}
}

// Len returns the number of values waiting for a complete chunk.
func (c *Chunker[T]) Len() int {
	return len(c.pend)
}

// Reset discards any partial chunk.
func (c *Chunker[T]) Reset() {
	c.pend = c.pend[:0]
}
