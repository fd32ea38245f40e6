package ringbuf

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCapacity is returned by New when capacity is less than one.
	ErrInvalidCapacity = errors.New("ring capacity must be at least 1")

	// ErrAlreadySplit is returned by a second call to Storage.Split.
	ErrAlreadySplit = errors.New("ring storage already split")

	// ErrFull is matched by the error Push returns when no slot is vacant.
	ErrFull = errors.New("ring is full")

	// ErrAdvanceExceedsOccupied means a consumer tried to release more
	// elements than were readable.
	ErrAdvanceExceedsOccupied = errors.New("advance exceeds occupied length")

	// ErrAdvanceExceedsFree means a producer tried to publish more elements
	// than there were vacant slots.
	ErrAdvanceExceedsFree = errors.New("advance exceeds free length")
)

// AdvanceError reports a head or tail advance larger than the available
// length. It is a caller bug and must not be retried.
type AdvanceError struct {
	Err       error
	Requested int
	Available int
}

func (e *AdvanceError) Error() string {
	return fmt.Sprintf("%s: requested %d, available %d", e.Err, e.Requested, e.Available)
}

func (e *AdvanceError) Unwrap() error {
	return e.Err
}

// RejectedError carries the value Push could not store.
type RejectedError[T any] struct {
	Value T
}

func (e *RejectedError[T]) Error() string {
	return ErrFull.Error()
}

func (e *RejectedError[T]) Unwrap() error {
	return ErrFull
}
