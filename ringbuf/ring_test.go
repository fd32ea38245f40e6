package ringbuf

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPop(t *testing.T) {
	_, p, c := newSplit[uint32](t, 10)
	require.NoError(t, p.Push(34))

	v, ok := c.Pop()
	require.True(t, ok)
	assert.Equal(t, uint32(34), v)
}

func TestPushFullRejectsValue(t *testing.T) {
	_, p, c := newSplit[uint32](t, 3)
	require.NoError(t, p.Push(1))
	require.NoError(t, p.Push(2))
	require.NoError(t, p.Push(3))
	require.True(t, p.IsFull())

	err := p.Push(4)
	require.ErrorIs(t, err, ErrFull)
	var rejected *RejectedError[uint32]
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, uint32(4), rejected.Value)

	v, ok := c.Pop()
	require.True(t, ok)
	assert.Equal(t, uint32(1), v)
	assert.False(t, p.IsFull())
	require.NoError(t, p.Push(5))

	for _, want := range []uint32{2, 3, 5} {
		v, ok := c.Pop()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
}

func TestPopEmpty(t *testing.T) {
	_, p, c := newSplit[uint32](t, 3)
	require.NoError(t, p.Push(1))
	require.NoError(t, p.Push(2))

	v, ok := c.Pop()
	require.True(t, ok)
	assert.Equal(t, uint32(1), v)
	v, ok = c.Pop()
	require.True(t, ok)
	assert.Equal(t, uint32(2), v)

	v, ok = c.Pop()
	assert.False(t, ok)
	assert.Zero(t, v)

	require.NoError(t, p.Push(3))
	v, ok = c.Pop()
	require.True(t, ok)
	assert.Equal(t, uint32(3), v)
}

func TestCapacityOne(t *testing.T) {
	_, p, c := newSplit[string](t, 1)
	require.NoError(t, p.Push("only"))
	assert.True(t, p.IsFull())
	assert.False(t, c.IsEmpty())
	assert.ErrorIs(t, p.Push("more"), ErrFull)

	v, ok := c.Pop()
	require.True(t, ok)
	assert.Equal(t, "only", v)

	_, ok = c.Pop()
	assert.False(t, ok)
	assert.True(t, c.IsEmpty())
	require.NoError(t, p.Push("again"))
}

func TestPeek(t *testing.T) {
	_, p, c := newSplit[int](t, 2)
	_, ok := c.Peek()
	assert.False(t, ok)

	require.NoError(t, p.Push(7))
	v, ok := c.Peek()
	require.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, c.Len())
}

func TestPopReleasesReferences(t *testing.T) {
	s, p, c := newSplit[*int](t, 2)
	x := 1
	require.NoError(t, p.Push(&x))
	_, ok := c.Pop()
	require.True(t, ok)
	assert.Nil(t, s.buf[0])
}

func TestPushSlicePopSlice(t *testing.T) {
	_, p, c := newSplit[uint8](t, 10)
	assert.Equal(t, 5, p.PushSlice([]uint8{0, 1, 2, 3, 4}))

	dst := make([]uint8, 3)
	assert.Equal(t, 3, c.PopSlice(dst))
	assert.Equal(t, []uint8{0, 1, 2}, dst)

	dst = make([]uint8, 6)
	assert.Equal(t, 2, c.PopSlice(dst))
	assert.Equal(t, []uint8{3, 4, 0, 0, 0, 0}, dst)
}

func TestPopSliceEmpty(t *testing.T) {
	_, _, c := newSplit[int](t, 4)
	dst := []int{9, 9}
	assert.Equal(t, 0, c.PopSlice(dst))
	assert.Equal(t, []int{9, 9}, dst)
	assert.Equal(t, 0, c.PopSlice(nil))
}

func TestPushSliceAcrossWraparound(t *testing.T) {
	_, p, c := newSplit[uint8](t, 10)
	for i := 0; i < 8; i++ {
		require.NoError(t, p.Push(1))
	}
	for i := 0; i < 8; i++ {
		_, ok := c.Pop()
		require.True(t, ok)
	}

	assert.Equal(t, 5, p.PushSlice([]uint8{0, 1, 2, 3, 4}))
	a, b := c.OccupiedRange()
	assert.Equal(t, Range{8, 10}, a)
	assert.Equal(t, Range{0, 3}, b)

	dst := make([]uint8, 6)
	assert.Equal(t, 5, c.PopSlice(dst))
	assert.Equal(t, []uint8{0, 1, 2, 3, 4}, dst[:5])
	assert.True(t, c.IsEmpty())
}

func TestPushSliceShortWrite(t *testing.T) {
	_, p, c := newSplit[int](t, 4)
	assert.Equal(t, 4, p.PushSlice([]int{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, 0, p.PushSlice([]int{7}))
	assert.Equal(t, 0, p.PushSlice(nil))

	dst := make([]int, 8)
	assert.Equal(t, 4, c.PopSlice(dst))
	assert.Equal(t, []int{1, 2, 3, 4}, dst[:4])
}

func TestClear(t *testing.T) {
	_, p, c := newSplit[int](t, 4)
	p.PushSlice([]int{1, 2, 3})
	_, _ = c.Pop()
	p.PushSlice([]int{4, 5})

	assert.Equal(t, 4, c.Clear())
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.Clear())
	assert.Equal(t, 4, p.Free())
}

func TestZeroCopyWriteThenAdvance(t *testing.T) {
	_, p, c := newSplit[byte](t, 8)
	first, second := p.VacantSlices()
	require.Len(t, first, 8)
	require.Empty(t, second)
	n := copy(first, "hello")
	assert.Equal(t, 0, c.Len())
	require.NoError(t, p.Advance(n))

	a, b := c.OccupiedSlices()
	assert.Equal(t, []byte("hello"), a)
	assert.Empty(t, b)
	require.NoError(t, c.Advance(len(a)))
	assert.True(t, c.IsEmpty())
}

// Random interleavings must preserve FIFO order and the element count.
func TestFIFOUnderRandomOps(t *testing.T) {
	const capacity = 16
	rnd := rand.New(rand.NewSource(1))
	_, p, c := newSplit[int](t, capacity)

	model := []int{}
	next := 0
	for i := 0; i < 20000; i++ {
		switch rnd.Intn(4) {
		case 0:
			err := p.Push(next)
			if len(model) == capacity {
				require.ErrorIs(t, err, ErrFull)
			} else {
				require.NoError(t, err)
				model = append(model, next)
				next++
			}
		case 1:
			v, ok := c.Pop()
			if len(model) == 0 {
				require.False(t, ok)
			} else {
				require.True(t, ok)
				require.Equal(t, model[0], v)
				model = model[1:]
			}
		case 2:
			src := make([]int, rnd.Intn(capacity+4))
			for j := range src {
				src[j] = next + j
			}
			n := p.PushSlice(src)
			require.Equal(t, min(len(src), capacity-len(model)), n)
			model = append(model, src[:n]...)
			next += n
		case 3:
			dst := make([]int, rnd.Intn(capacity+4))
			n := c.PopSlice(dst)
			require.Equal(t, min(len(dst), len(model)), n)
			for j := 0; j < n; j++ {
				require.Equal(t, model[j], dst[j])
			}
			model = model[n:]
		}
		require.Equal(t, len(model), c.Len())
		require.Equal(t, capacity-len(model), p.Free())
	}
}

type errReader struct {
	data []byte
	err  error
}

func (r *errReader) Read(b []byte) (int, error) {
	n := copy(b, r.data)
	r.data = r.data[n:]
	return n, r.err
}

func TestReadFrom(t *testing.T) {
	_, p, c := newSplit[byte](t, 1024)
	msg := "The quick brown fox jumps over the lazy dog"

	n, err := ReadFrom(p, bytes.NewReader([]byte(msg)))
	require.NoError(t, err)
	assert.Equal(t, len(msg), n)
	assert.Equal(t, len(msg), c.Len())

	var out bytes.Buffer
	n, err = WriteTo(c, &out)
	require.NoError(t, err)
	assert.Equal(t, len(msg), n)
	assert.Equal(t, msg, out.String())
}

func TestReadFromFillsPrimaryRangeOnly(t *testing.T) {
	_, p, c := newSplit[byte](t, 8)
	p.PushSlice([]byte("abcdef"))
	dst := make([]byte, 6)
	c.PopSlice(dst)

	n, err := ReadFrom(p, bytes.NewReader([]byte("0123456789")))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = ReadFrom(p, bytes.NewReader([]byte("0123456789")))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.True(t, p.IsFull())

	n, err = ReadFrom(p, bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestReadFromPropagatesSourceError(t *testing.T) {
	_, p, c := newSplit[byte](t, 8)
	boom := errors.New("boom")

	n, err := ReadFrom(p, &errReader{data: []byte("ab"), err: boom})
	assert.Same(t, boom, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, c.Len())

	n, err = ReadFrom(p, &errReader{err: io.EOF})
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, n)
}

type limitedWriter struct {
	bytes.Buffer
	limit int
	err   error
}

func (w *limitedWriter) Write(b []byte) (int, error) {
	if len(b) > w.limit {
		b = b[:w.limit]
	}
	n, _ := w.Buffer.Write(b)
	return n, w.err
}

func TestWriteToShortWrite(t *testing.T) {
	_, p, c := newSplit[byte](t, 8)
	p.PushSlice([]byte("abcdef"))

	w := &limitedWriter{limit: 4}
	n, err := WriteTo(c, w)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "abcd", w.String())
	assert.Equal(t, 2, c.Len())
}

func TestWriteToPropagatesSinkError(t *testing.T) {
	_, p, c := newSplit[byte](t, 8)
	p.PushSlice([]byte("abc"))
	boom := errors.New("sink closed")

	n, err := WriteTo(c, &limitedWriter{limit: 1, err: boom})
	assert.Same(t, boom, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, c.Len())

	var out bytes.Buffer
	c.Clear()
	n, err = WriteTo(c, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
