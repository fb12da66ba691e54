package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// Test buffer shapes
	testCapacity4 = 4
	testCapacity8 = 8
	monoChannels  = 1
	stereoChans   = 2
)

// ramp returns [start, start+1, ...] of length n as float64 samples.
func ramp(start, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(start + i)
	}
	return s
}

// TestBuffer_StartsZeroFilled verifies the initial window is zero padding.
func TestBuffer_StartsZeroFilled(t *testing.T) {
	b := New[float64](testCapacity4, monoChannels)

	assert.Equal(t, testCapacity4, b.Capacity())
	assert.Equal(t, monoChannels, b.Channels())
	assert.Equal(t, make([]float64, testCapacity4), b.Window())
	assert.False(t, b.WarmedUp(), "fresh buffer must not be warmed up")
}

// TestBuffer_PushOrder verifies the window stays chronological, oldest first.
func TestBuffer_PushOrder(t *testing.T) {
	b := New[float64](testCapacity4, monoChannels)

	require.NoError(t, b.Push(ramp(1, 2))) // [0 0 1 2]
	assert.Equal(t, []float64{0, 0, 1, 2}, b.Window())

	require.NoError(t, b.Push(ramp(3, 3))) // [2 3 4 5]
	assert.Equal(t, []float64{2, 3, 4, 5}, b.Window())
}

// TestBuffer_PushLargerThanCapacity verifies only the tail of a big chunk survives.
func TestBuffer_PushLargerThanCapacity(t *testing.T) {
	b := New[float64](testCapacity4, monoChannels)

	require.NoError(t, b.Push(ramp(1, 10)))
	assert.Equal(t, []float64{7, 8, 9, 10}, b.Window())
}

// TestBuffer_PushShapeError verifies partial frames are rejected.
func TestBuffer_PushShapeError(t *testing.T) {
	b := New[float64](testCapacity4, stereoChans)

	err := b.Push(ramp(1, 3))
	assert.Error(t, err, "3 values are not whole stereo frames")

	// A failed push leaves the window untouched.
	assert.Equal(t, make([]float64, testCapacity4*stereoChans), b.Window())
}

// TestBuffer_Interleaved verifies frame-wise retention for stereo data.
func TestBuffer_Interleaved(t *testing.T) {
	b := New[float64](testCapacity4, stereoChans)

	require.NoError(t, b.Push([]float64{1, -1, 2, -2, 3, -3, 4, -4, 5, -5}))
	assert.Equal(t, []float64{2, -2, 3, -3, 4, -4, 5, -5}, b.Window(),
		"retention must shift whole frames, not values")
}

// TestBuffer_WarmUpThreshold verifies WarmedUp flips exactly at capacity frames.
func TestBuffer_WarmUpThreshold(t *testing.T) {
	b := New[float64](testCapacity4, monoChannels)

	b.RecordConsumed(testCapacity4 - 1)
	assert.False(t, b.WarmedUp(), "one frame short of capacity")

	b.RecordConsumed(1)
	assert.True(t, b.WarmedUp(), "at capacity")
}

// TestBuffer_ConsumedSaturates verifies the counter saturates instead of wrapping.
func TestBuffer_ConsumedSaturates(t *testing.T) {
	b := New[float64](testCapacity4, monoChannels)

	b.RecordConsumed(int(maxConsumed >> 1))
	b.RecordConsumed(int(maxConsumed >> 1))
	b.RecordConsumed(testCapacity4)

	assert.Equal(t, maxConsumed, b.Consumed())
	assert.True(t, b.WarmedUp())
}

// TestBuffer_RecordConsumedIgnoresNonPositive verifies zero and negative counts are no-ops.
func TestBuffer_RecordConsumedIgnoresNonPositive(t *testing.T) {
	b := New[float64](testCapacity4, monoChannels)

	b.RecordConsumed(0)
	b.RecordConsumed(-5)
	assert.Zero(t, b.Consumed())
}

// TestBuffer_ResizePreservesRecent verifies resizing keeps the newest frames
// and the warm-up counter.
func TestBuffer_ResizePreservesRecent(t *testing.T) {
	b := New[float64](testCapacity8, monoChannels)
	require.NoError(t, b.Push(ramp(1, 8)))
	b.RecordConsumed(8)
	require.True(t, b.WarmedUp())

	b.Resize(testCapacity4)
	assert.Equal(t, []float64{5, 6, 7, 8}, b.Window(), "shrink keeps the newest frames")
	assert.True(t, b.WarmedUp(), "counter survives resize")

	b.Resize(testCapacity8)
	assert.Equal(t, []float64{0, 0, 0, 0, 5, 6, 7, 8}, b.Window(),
		"grow zero-pads on the old side")
	assert.True(t, b.WarmedUp(), "shrink-then-grow round trip keeps warm-up state")
}

// TestBuffer_ResizeGrowBeforeWarm verifies a cold buffer stays cold after growing.
func TestBuffer_ResizeGrowBeforeWarm(t *testing.T) {
	b := New[float64](testCapacity4, monoChannels)
	require.NoError(t, b.Push(ramp(1, 2)))
	b.RecordConsumed(2)

	b.Resize(testCapacity8)
	assert.False(t, b.WarmedUp())
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0, 1, 2}, b.Window())
}

// TestBuffer_ReshapeDiscardsEverything verifies a channel change resets history
// and warm-up.
func TestBuffer_ReshapeDiscardsEverything(t *testing.T) {
	b := New[float64](testCapacity4, monoChannels)
	require.NoError(t, b.Push(ramp(1, 4)))
	b.RecordConsumed(4)
	require.True(t, b.WarmedUp())

	b.Reshape(stereoChans)
	assert.Equal(t, stereoChans, b.Channels())
	assert.Equal(t, make([]float64, testCapacity4*stereoChans), b.Window())
	assert.False(t, b.WarmedUp(), "reshape must restart warm-up")
	assert.Zero(t, b.Consumed())
}

// TestBuffer_Reset verifies reset zeroes data and counter in place.
func TestBuffer_Reset(t *testing.T) {
	b := New[float64](testCapacity4, monoChannels)
	require.NoError(t, b.Push(ramp(1, 4)))
	b.RecordConsumed(4)

	b.Reset()
	assert.Equal(t, make([]float64, testCapacity4), b.Window())
	assert.False(t, b.WarmedUp())
	assert.Zero(t, b.Consumed())
}

// TestBuffer_ZeroCapacity verifies a degenerate zero-frame window is harmless.
func TestBuffer_ZeroCapacity(t *testing.T) {
	b := New[float64](0, monoChannels)

	require.NoError(t, b.Push(ramp(1, 3)))
	assert.Empty(t, b.Window())
	assert.True(t, b.WarmedUp(), "nothing to warm up")
}

// TestBuffer_Float32 verifies the float32 instantiation behaves identically.
func TestBuffer_Float32(t *testing.T) {
	b := New[float32](testCapacity4, monoChannels)

	require.NoError(t, b.Push([]float32{1, 2}))
	assert.Equal(t, []float32{0, 0, 1, 2}, b.Window())
}
