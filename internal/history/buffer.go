// Package history maintains the trailing-sample window that gives a streaming
// FIR filter continuity across chunk boundaries.
package history

import (
	"fmt"
	"math"
)

// maxConsumed is the saturation point of the consumed-frame counter.
const maxConsumed int64 = math.MaxInt64

// Float is the type constraint for supported sample types.
type Float interface {
	float32 | float64
}

// Buffer retains the most recent capacity frames of a sample stream, where a
// frame is channels interleaved values. It starts zero-filled; the zeros stand
// in for history that does not exist yet, which is why output computed against
// them is flagged as not yet valid.
//
// A Buffer is owned by exactly one filter instance and carries no internal
// locking; the owner serializes access.
type Buffer[F Float] struct {
	data     []F // capacity*channels values in chronological order
	capacity int // frames retained
	channels int // values per frame
	consumed int64
}

// New creates a zero-filled buffer holding capacity frames of channels values.
func New[F Float](capacity, channels int) *Buffer[F] {
	if capacity < 0 {
		capacity = 0
	}
	if channels < 1 {
		channels = 1
	}

	return &Buffer[F]{
		data:     make([]F, capacity*channels),
		capacity: capacity,
		channels: channels,
	}
}

// Capacity returns the number of frames retained.
func (b *Buffer[F]) Capacity() int {
	return b.capacity
}

// Channels returns the number of values per frame.
func (b *Buffer[F]) Channels() int {
	return b.channels
}

// Window returns the buffered frames in chronological order, oldest first.
// The slice aliases internal storage and is only valid until the next Push,
// Resize, Reshape, or Reset.
func (b *Buffer[F]) Window() []F {
	return b.data
}

// Push appends the newest frames, discarding the oldest once full.
// len(frames) must be a multiple of the channel count.
func (b *Buffer[F]) Push(frames []F) error {
	if len(frames)%b.channels != 0 {
		return fmt.Errorf("pushed %d values, not a multiple of %d channels", len(frames), b.channels)
	}

	if b.capacity == 0 {
		return nil
	}

	n := len(frames) / b.channels
	if n >= b.capacity {
		copy(b.data, frames[(n-b.capacity)*b.channels:])
		return nil
	}

	keep := (b.capacity - n) * b.channels
	copy(b.data, b.data[len(b.data)-keep:])
	copy(b.data[keep:], frames)
	return nil
}

// RecordConsumed adds n frames to the consumed counter, saturating instead of
// overflowing.
func (b *Buffer[F]) RecordConsumed(n int) {
	if n <= 0 {
		return
	}
	if b.consumed > maxConsumed-int64(n) {
		b.consumed = maxConsumed
		return
	}
	b.consumed += int64(n)
}

// Consumed returns the saturating count of frames ever recorded.
func (b *Buffer[F]) Consumed() int64 {
	return b.consumed
}

// WarmedUp reports whether enough real history has accumulated for the filter
// output to no longer depend on the zero padding.
func (b *Buffer[F]) WarmedUp() bool {
	return b.consumed >= int64(b.capacity)
}

// Resize changes the retained-frame capacity, preserving as many of the most
// recent frames as fit. History is lost only when shrinking; the consumed
// counter is untouched, so growing and shrinking back restores the previous
// warm-up state exactly.
func (b *Buffer[F]) Resize(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	if capacity == b.capacity {
		return
	}

	data := make([]F, capacity*b.channels)
	keep := min(capacity, b.capacity) * b.channels
	copy(data[len(data)-keep:], b.data[len(b.data)-keep:])

	b.data = data
	b.capacity = capacity
}

// Reshape changes the channel count. Interleaving old and new frame layouts
// would corrupt alignment, so all buffered history is discarded and the
// consumed counter resets to zero.
func (b *Buffer[F]) Reshape(channels int) {
	if channels < 1 {
		channels = 1
	}

	b.channels = channels
	b.data = make([]F, b.capacity*channels)
	b.consumed = 0
}

// Reset zeroes the buffered history and the consumed counter, forgetting
// everything fed so far. Use after a discontinuity in the source stream.
func (b *Buffer[F]) Reset() {
	clear(b.data)
	b.consumed = 0
}
