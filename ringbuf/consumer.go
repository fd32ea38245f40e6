package ringbuf

import "io"

// Consumer is the read capability of a ring. Only one exists per Storage
// and it must be used from one goroutine at a time.
type Consumer[T any] struct {
	_ noCopy
	s *Storage[T]
}

// Cap returns the ring capacity.
func (c *Consumer[T]) Cap() int { return c.s.Cap() }

// Len returns the number of occupied slots.
func (c *Consumer[T]) Len() int { return c.s.Len() }

// Free returns the number of vacant slots.
func (c *Consumer[T]) Free() int { return c.s.Free() }

// IsFull reports whether the producer has no room left.
func (c *Consumer[T]) IsFull() bool { return c.s.IsFull() }

// IsEmpty reports whether a Pop would find nothing.
func (c *Consumer[T]) IsEmpty() bool { return c.s.IsEmpty() }

// OccupiedRange returns the slot ranges holding unread elements.
func (c *Consumer[T]) OccupiedRange() (Range, Range) { return c.s.OccupiedRange() }

// OccupiedSlices exposes the unread elements in place, oldest first. The
// slots stay owned by the consumer until Advance releases them.
func (c *Consumer[T]) OccupiedSlices() ([]T, []T) { return c.s.occupiedSlices() }

// Advance releases the n oldest elements without resetting their slots.
func (c *Consumer[T]) Advance(n int) error { return c.s.advanceTail(n) }

// Pop removes and returns the oldest element. ok is false when the ring is
// empty.
func (c *Consumer[T]) Pop() (v T, ok bool) {
	first, _ := c.s.occupiedSlices()
	if len(first) == 0 {
		return v, false
	}
	v = first[0]
	var zero T
	first[0] = zero
	if err := c.s.advanceTail(1); err != nil {
		panic(err)
	}
	return v, true
}

// Peek returns the oldest element without removing it.
func (c *Consumer[T]) Peek() (v T, ok bool) {
	first, _ := c.s.occupiedSlices()
	if len(first) == 0 {
		return v, false
	}
	return first[0], true
}

// PopSlice moves up to len(dst) of the oldest elements into dst and returns
// how many were moved.
func (c *Consumer[T]) PopSlice(dst []T) int {
	first, second := c.s.occupiedSlices()
	n1 := copy(dst, first)
	n2 := copy(dst[n1:], second)
	clear(first[:n1])
	clear(second[:n2])
	if err := c.s.advanceTail(n1 + n2); err != nil {
		// only the consumer shrinks the occupied region
		panic(err)
	}
	return n1 + n2
}

// Clear discards every readable element and returns how many there were.
func (c *Consumer[T]) Clear() int {
	first, second := c.s.occupiedSlices()
	clear(first)
	clear(second)
	n := len(first) + len(second)
	if err := c.s.advanceTail(n); err != nil {
		panic(err)
	}
	return n
}

// WriteTo performs a single Write of the primary occupied range to dst and
// releases the bytes dst accepted. Errors from dst are returned as is.
func WriteTo(c *Consumer[byte], dst io.Writer) (int, error) {
	first, _ := c.s.occupiedSlices()
	if len(first) == 0 {
		return 0, nil
	}
	n, err := dst.Write(first)
	if n > 0 {
		if aerr := c.s.advanceTail(n); aerr != nil {
			return 0, aerr
		}
	}
	return n, err
}
