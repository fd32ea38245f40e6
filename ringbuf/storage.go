// Package ringbuf implements a fixed-capacity single-producer,
// single-consumer ring buffer.
//
// A Storage is split once into a Producer and a Consumer which may then be
// used from two goroutines without locks. The producer owns the vacant
// region of the backing array and the consumer owns the occupied region;
// neither touches a slot the other side owns. Full and empty are reported
// through ordinary results and callers choose their own backoff.
package ringbuf

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Storage is the shared state behind a Producer/Consumer pair.
//
// head is written only by the producer and tail only by the consumer. count
// is the publication point for both: the producer adds to it after filling
// slots and the consumer subtracts from it after reading them.
type Storage[T any] struct {
	_     cpu.CacheLinePad
	head  atomic.Int64
	_     cpu.CacheLinePad
	tail  atomic.Int64
	_     cpu.CacheLinePad
	count atomic.Int64
	_     cpu.CacheLinePad

	capacity int
	buf      []T
	hooks    Hooks
	split    atomic.Bool
}

// State is a point-in-time view of the ring positions. Fields are loaded
// one at a time and may be mutually inconsistent while both sides run.
type State struct {
	Capacity int
	Head     int
	Tail     int
	Count    int
}

// New allocates a ring with room for capacity elements.
func New[T any](capacity int, opts ...Option) (*Storage[T], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	o := applyOptions(opts...)
	return &Storage[T]{
		capacity: capacity,
		buf:      make([]T, capacity),
		hooks:    o.hooks,
	}, nil
}

// Split hands out the only Producer and Consumer for s. It succeeds once.
func (s *Storage[T]) Split() (*Producer[T], *Consumer[T], error) {
	if !s.split.CompareAndSwap(false, true) {
		return nil, nil, ErrAlreadySplit
	}
	return &Producer[T]{s: s}, &Consumer[T]{s: s}, nil
}

// Cap returns the fixed capacity.
func (s *Storage[T]) Cap() int {
	return s.capacity
}

// Len returns the number of occupied slots.
func (s *Storage[T]) Len() int {
	return int(s.count.Load())
}

// Free returns the number of vacant slots.
func (s *Storage[T]) Free() int {
	return freeLen(s.capacity, s.Len())
}

// IsFull reports whether every slot is occupied.
func (s *Storage[T]) IsFull() bool {
	return isFull(s.capacity, s.Len())
}

// IsEmpty reports whether no slot is occupied.
func (s *Storage[T]) IsEmpty() bool {
	return isEmpty(s.Len())
}

// State returns a diagnostic snapshot.
func (s *Storage[T]) State() State {
	return State{
		Capacity: s.capacity,
		Head:     int(s.head.Load()),
		Tail:     int(s.tail.Load()),
		Count:    int(s.count.Load()),
	}
}

// OccupiedRange returns the readable slots as seen from the consumer side.
// The head used for the computation is derived from tail and count, so no
// slot is reported before its publication is visible.
func (s *Storage[T]) OccupiedRange() (Range, Range) {
	tail := int(s.tail.Load())
	count := int(s.count.Load())
	head := wrap(tail+count, s.capacity)
	return occupiedRanges(s.capacity, head, tail, count)
}

// VacantRange returns the writable slots as seen from the producer side.
// The tail used for the computation is derived from head and count, so no
// slot is reported before the consumer has released it.
func (s *Storage[T]) VacantRange() (Range, Range) {
	head := int(s.head.Load())
	count := int(s.count.Load())
	tail := wrap(head-count, s.capacity)
	return vacantRanges(s.capacity, head, tail, count)
}

func (s *Storage[T]) occupiedSlices() ([]T, []T) {
	a, b := s.OccupiedRange()
	return s.buf[a.Start:a.End:a.End], s.buf[b.Start:b.End:b.End]
}

func (s *Storage[T]) vacantSlices() ([]T, []T) {
	a, b := s.VacantRange()
	return s.buf[a.Start:a.End:a.End], s.buf[b.Start:b.End:b.End]
}

// advanceHead publishes n slots the producer has written.
func (s *Storage[T]) advanceHead(n int) error {
	if n == 0 {
		return nil
	}
	if free := s.Free(); n < 0 || n > free {
		return &AdvanceError{Err: ErrAdvanceExceedsFree, Requested: n, Available: free}
	}
	s.head.Store(int64(wrap(int(s.head.Load())+n, s.capacity)))
	occupied := s.count.Add(int64(n))
	if s.hooks != nil {
		s.hooks.HeadAdvanced(n, int(occupied))
	}
	return nil
}

// advanceTail releases n slots the consumer has read.
func (s *Storage[T]) advanceTail(n int) error {
	if n == 0 {
		return nil
	}
	if occupied := s.Len(); n < 0 || n > occupied {
		return &AdvanceError{Err: ErrAdvanceExceedsOccupied, Requested: n, Available: occupied}
	}
	s.tail.Store(int64(wrap(int(s.tail.Load())+n, s.capacity)))
	occupied := s.count.Add(-int64(n))
	if s.hooks != nil {
		s.hooks.TailAdvanced(n, int(occupied))
	}
	return nil
}

// noCopy lets go vet flag handles copied by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
