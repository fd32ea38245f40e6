package ringbuf

// Range is a half-open slot index range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of slots in r.
func (r Range) Len() int {
	return r.End - r.Start
}

// Empty reports whether r covers no slots.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

func isFull(capacity, count int) bool {
	return count == capacity
}

func isEmpty(count int) bool {
	return count == 0
}

func freeLen(capacity, count int) int {
	return capacity - count
}

// occupiedRanges returns the readable slots as a primary range and a
// wraparound range.
func occupiedRanges(capacity, head, tail, count int) (Range, Range) {
	switch {
	case count == 0:
		return Range{}, Range{}
	case head > tail:
		return Range{tail, head}, Range{}
	default:
		return Range{tail, capacity}, Range{0, head}
	}
}

// vacantRanges returns the writable slots as a primary range and a
// wraparound range.
func vacantRanges(capacity, head, tail, count int) (Range, Range) {
	switch {
	case count == capacity:
		return Range{}, Range{}
	case head == 0 && tail == 0 && count == 0:
		return Range{0, capacity}, Range{}
	case head >= tail:
		return Range{head, capacity}, Range{0, tail}
	default:
		return Range{head, tail}, Range{}
	}
}

// wrap reduces pos into [0, capacity).
func wrap(pos, capacity int) int {
	pos %= capacity
	if pos < 0 {
		pos += capacity
	}
	return pos
}
