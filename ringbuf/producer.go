package ringbuf

import "io"

// Producer is the write capability of a ring. Only one exists per Storage
// and it must be used from one goroutine at a time.
type Producer[T any] struct {
	_ noCopy
	s *Storage[T]
}

// Cap returns the ring capacity.
func (p *Producer[T]) Cap() int { return p.s.Cap() }

// Len returns the number of occupied slots.
func (p *Producer[T]) Len() int { return p.s.Len() }

// Free returns the number of vacant slots.
func (p *Producer[T]) Free() int { return p.s.Free() }

// IsFull reports whether a Push would be rejected.
func (p *Producer[T]) IsFull() bool { return p.s.IsFull() }

// IsEmpty reports whether the consumer has nothing to read.
func (p *Producer[T]) IsEmpty() bool { return p.s.IsEmpty() }

// VacantRange returns the slot ranges available for writing.
func (p *Producer[T]) VacantRange() (Range, Range) { return p.s.VacantRange() }

// VacantSlices exposes the vacant slots for in-place writes. Nothing is
// visible to the consumer until Advance publishes it.
func (p *Producer[T]) VacantSlices() ([]T, []T) { return p.s.vacantSlices() }

// Advance publishes the first n vacant slots.
func (p *Producer[T]) Advance(n int) error { return p.s.advanceHead(n) }

// Push appends v. When the ring is full v is handed back unchanged inside a
// *RejectedError.
func (p *Producer[T]) Push(v T) error {
	first, _ := p.s.vacantSlices()
	if len(first) == 0 {
		if p.s.hooks != nil {
			p.s.hooks.PushRejected()
		}
		return &RejectedError[T]{Value: v}
	}
	first[0] = v
	return p.s.advanceHead(1)
}

// PushSlice copies as many leading elements of src as fit and returns how
// many were copied. A short count is not an error.
func (p *Producer[T]) PushSlice(src []T) int {
	first, second := p.s.vacantSlices()
	n := copy(first, src)
	n += copy(second, src[n:])
	if err := p.s.advanceHead(n); err != nil {
		// only the producer shrinks the vacant region
		panic(err)
	}
	return n
}

// ReadFrom performs a single Read from src directly into the primary vacant
// range and publishes whatever was read. Errors from src are returned as is,
// after the bytes obtained alongside them have been published.
func ReadFrom(p *Producer[byte], src io.Reader) (int, error) {
	first, _ := p.s.vacantSlices()
	if len(first) == 0 {
		return 0, nil
	}
	n, err := src.Read(first)
	if n > 0 {
		if aerr := p.s.advanceHead(n); aerr != nil {
			return 0, aerr
		}
	}
	return n, err
}
