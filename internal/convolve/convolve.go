// Package convolve implements piecewise streaming FIR convolution: a chunk is
// partitioned at cutoff-change points and each sub-interval is convolved with
// its own kernel against history-prefixed data, so every output sample uses
// exactly tapCount causal inputs under the kernel active when its window ends.
package convolve

import (
	"fmt"

	"github.com/tphakala/go-streaming-lowpass/internal/simdops"
)

// Channel layout constants.
const (
	monoChannels   = 1
	stereoChannels = 2
)

// Segment describes one sub-interval of a chunk filtered with a single kernel.
// The segment spans from Start (a frame index into the chunk) up to the next
// segment's Start, or the end of the chunk for the last segment.
type Segment[F simdops.Float] struct {
	Start  int
	Kernel []F
}

// Convolver applies piecewise valid convolution to interleaved sample chunks.
// Working buffers are retained between calls to avoid per-chunk allocation.
// Not safe for concurrent use.
type Convolver[F simdops.Float] struct {
	ops *simdops.Ops[F]

	// Working buffers (grown on demand, reused across calls)
	padded  []F   // mono path: history followed by chunk
	chanPad [][]F // per-channel history+chunk
	chanOut [][]F // per-channel output before re-interleaving
}

// New creates a Convolver for sample type F.
func New[F simdops.Float]() *Convolver[F] {
	return &Convolver[F]{ops: simdops.For[F]()}
}

// Piecewise filters chunk into dst.
//
// chunk holds frames of channels interleaved values; hist holds the
// tapCount-1 frames immediately preceding the chunk. Each segment's window is
// extended backward by tapCount-1 frames — drawn from hist for the first
// segment and from the chunk itself for later ones — and convolved in valid
// mode, so dst has exactly the chunk's length and no boundary transients.
//
// All kernels must share one length; segment starts must begin at 0 and be
// strictly increasing.
func (c *Convolver[F]) Piecewise(dst, hist, chunk []F, channels int, segments []Segment[F]) error {
	if err := c.validate(dst, hist, chunk, channels, segments); err != nil {
		return err
	}

	if len(chunk) == 0 {
		return nil
	}

	if channels == monoChannels {
		c.convolveMono(dst, hist, chunk, segments)
		return nil
	}

	c.convolveInterleaved(dst, hist, chunk, channels, segments)
	return nil
}

func (c *Convolver[F]) validate(dst, hist, chunk []F, channels int, segments []Segment[F]) error {
	if channels < 1 {
		return fmt.Errorf("channel count %d must be at least 1", channels)
	}

	if len(chunk)%channels != 0 {
		return fmt.Errorf("chunk of %d values is not a whole number of %d-channel frames", len(chunk), channels)
	}

	if len(dst) != len(chunk) {
		return fmt.Errorf("output length %d does not match chunk length %d", len(dst), len(chunk))
	}

	if len(segments) == 0 {
		return fmt.Errorf("at least one segment is required")
	}

	taps := len(segments[0].Kernel)
	if taps < 1 {
		return fmt.Errorf("empty kernel in segment 0")
	}

	if len(hist) != (taps-1)*channels {
		return fmt.Errorf("history holds %d values, want %d (%d taps, %d channels)",
			len(hist), (taps-1)*channels, taps, channels)
	}

	frames := len(chunk) / channels
	prev := -1
	for i, seg := range segments {
		if len(seg.Kernel) != taps {
			return fmt.Errorf("segment %d kernel length %d differs from %d", i, len(seg.Kernel), taps)
		}
		if i == 0 && seg.Start != 0 {
			return fmt.Errorf("first segment must start at frame 0, got %d", seg.Start)
		}
		if seg.Start <= prev {
			return fmt.Errorf("segment starts must be strictly increasing, got %d after %d", seg.Start, prev)
		}
		if frames > 0 && seg.Start >= frames {
			return fmt.Errorf("segment %d starts at frame %d beyond chunk of %d frames", i, seg.Start, frames)
		}
		prev = seg.Start
	}

	return nil
}

// convolveMono runs the single-channel fast path directly on the chunk.
func (c *Convolver[F]) convolveMono(dst, hist, chunk []F, segments []Segment[F]) {
	taps := len(segments[0].Kernel)
	frames := len(chunk)

	c.padded = growTo(c.padded, len(hist)+frames)
	copy(c.padded, hist)
	copy(c.padded[len(hist):], chunk)

	c.convolveSegments(dst, c.padded, taps, frames, segments)
}

// convolveInterleaved deinterleaves, filters each channel independently, and
// interleaves the results back into the original layout.
func (c *Convolver[F]) convolveInterleaved(dst, hist, chunk []F, channels int, segments []Segment[F]) {
	taps := len(segments[0].Kernel)
	frames := len(chunk) / channels
	padFrames := (taps - 1) + frames

	c.chanPad = growChannels(c.chanPad, channels, padFrames)
	c.chanOut = growChannels(c.chanOut, channels, frames)

	histFrames := taps - 1
	for ch := 0; ch < channels; ch++ {
		pad := c.chanPad[ch]
		for i := 0; i < histFrames; i++ {
			pad[i] = hist[i*channels+ch]
		}
		for i := 0; i < frames; i++ {
			pad[histFrames+i] = chunk[i*channels+ch]
		}

		c.convolveSegments(c.chanOut[ch], pad, taps, frames, segments)
	}

	if channels == stereoChannels {
		c.ops.Interleave2(dst, c.chanOut[0], c.chanOut[1])
		return
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			dst[i*channels+ch] = c.chanOut[ch][i]
		}
	}
}

// convolveSegments places each segment's valid-mode convolution at its output
// offset. padded holds taps-1 history frames followed by the chunk frames, so
// the backward extension of segment i is padded[i.Start : i.Start+taps-1].
func (c *Convolver[F]) convolveSegments(dst, padded []F, taps, frames int, segments []Segment[F]) {
	for i, seg := range segments {
		end := frames
		if i+1 < len(segments) {
			end = segments[i+1].Start
		}

		c.ops.ConvolveValid(dst[seg.Start:end], padded[seg.Start:end+taps-1], seg.Kernel)
	}
}

// growTo returns buf resized to n values, reallocating only when needed.
func growTo[F simdops.Float](buf []F, n int) []F {
	if cap(buf) < n {
		return make([]F, n)
	}
	return buf[:n]
}

// growChannels resizes a per-channel scratch matrix.
func growChannels[F simdops.Float](bufs [][]F, channels, n int) [][]F {
	if len(bufs) < channels {
		grown := make([][]F, channels)
		copy(grown, bufs)
		bufs = grown
	}
	for ch := 0; ch < channels; ch++ {
		bufs[ch] = growTo(bufs[ch], n)
	}
	return bufs
}
