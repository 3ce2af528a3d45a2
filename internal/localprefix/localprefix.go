// Package localprefix implements the local prefix model: a bijective
// transform that predicts each byte from a copy sitting `dist` bytes
// earlier and emits the XOR residual. Three order-tiered context tables
// track which `dist` has recently paid off for a given local context, and
// the active order adapts as hits and misses accumulate. The block is
// split into four independently-initialized segments processed in
// parallel, so no cross-segment state is shared.
package localprefix

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const (
	// MinThreshold and MaxThreshold bound the adaptive hit-count gate.
	MinThreshold = 4
	MaxThreshold = 128
	// MaxDist bounds how far back a prediction anchor may sit.
	MaxDist = 64 * 1024
	// Segments is the fixed parallel fan-out; each segment re-initializes
	// its own tables, so there is no cross-segment dependency.
	Segments = 4
)

type tableEntry struct {
	cxt  uint32
	hits int32
	pos  int
}

// engine holds one segment's adaptive state: three order-tiered tables
// (order 1, 2, 3, i.e. a 2, 3 or 4-byte context window), the active
// order, the rolling context accumulator, and the adaptive hit
// threshold.
type engine struct {
	tables    [3][256]tableEntry
	order     int // 1, 2 or 3
	cxt       uint32
	threshold int32
}

func newEngine() *engine {
	return &engine{order: 2, threshold: MinThreshold}
}

// lpAndLS splits the rolling context into the table index (LP, the byte
// `order`+1 positions back) and the expected-suffix payload (LS, the
// `order` most recent bytes, which follow LP).
func (e *engine) lpAndLS() (byte, uint32) {
	shift := uint(8 * e.order)
	mask := uint32(1)<<shift - 1
	lp := byte((e.cxt >> shift) & 0xff)
	ls := e.cxt & mask
	return lp, ls
}

// anchor returns the predicted source distance for the current context,
// and whether the table is confident enough to use it.
func (e *engine) anchor(pos int) (dist int, ok bool) {
	lp, _ := e.lpAndLS()
	t := &e.tables[e.order-1][lp]
	dist = pos - t.pos
	ok = t.hits > e.threshold && dist > 0 && dist < MaxDist && t.pos != 0
	return
}

// update records the outcome of the context seen at pos (e.cxt holds the
// bytes before pos; the caller pushes the byte at pos afterwards) and
// adapts the active order and threshold.
func (e *engine) update(pos int) {
	lp, ls := e.lpAndLS()
	t := &e.tables[e.order-1][lp]
	if pos > e.order+1 {
		if t.cxt == ls {
			t.hits++
			if t.hits > MaxThreshold && e.order > 1 {
				e.order--
			}
			if e.threshold > MinThreshold {
				e.threshold--
			}
		} else {
			t.hits /= 2
			t.cxt = ls
			if t.hits == 0 && e.order < 3 {
				e.order++
			}
			if e.threshold < MaxThreshold {
				e.threshold++
			}
		}
		t.pos = pos
	}
}

func (e *engine) push(b byte) {
	e.cxt = (e.cxt << 8) | uint32(b)
}

// Encode applies the local prefix transform to src, writing len(src)
// bytes to dst (grown as needed) and returning it. It splits the block
// into Segments equal parts, each processed independently and in
// parallel.
func Encode(ctx context.Context, dst, src []byte) ([]byte, error) {
	return process(ctx, dst, src, true)
}

// Decode inverts Encode.
func Decode(ctx context.Context, dst, src []byte) ([]byte, error) {
	return process(ctx, dst, src, false)
}

func process(ctx context.Context, dst, src []byte, encode bool) ([]byte, error) {
	n := len(src)
	if cap(dst) < n {
		dst = make([]byte, n)
	} else {
		dst = dst[:n]
	}
	if n == 0 {
		return dst, nil
	}

	bounds := segmentBounds(n)
	g, _ := errgroup.WithContext(ctx)
	for s := 0; s < len(bounds)-1; s++ {
		lo, hi := bounds[s], bounds[s+1]
		g.Go(func() error {
			runSegment(src[lo:hi], dst[lo:hi], encode)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dst, nil
}

func segmentBounds(n int) []int {
	bounds := make([]int, 0, Segments+1)
	step := n / Segments
	if step == 0 {
		return []int{0, n}
	}
	for s := 0; s < Segments; s++ {
		bounds = append(bounds, s*step)
	}
	bounds = append(bounds, n)
	return bounds
}

// runSegment runs the local-prefix transform over one independent
// segment. When encode is true, in holds plaintext and out receives XOR
// residuals; when false, in holds residuals and out receives
// reconstructed plaintext. The rolling context is always built from
// plaintext bytes, which is why the same code works in both directions.
func runSegment(in, out []byte, encode bool) {
	e := newEngine()
	n := len(in)
	for i := 0; i < n; {
		dist, ok := e.anchor(i)
		if ok {
			for {
				var plainByte, residual byte
				if encode {
					residual = in[i-dist] ^ in[i]
					plainByte = in[i]
					out[i] = residual
				} else {
					residual = in[i]
					plainByte = out[i-dist] ^ residual
					out[i] = plainByte
				}
				e.update(i)
				e.push(plainByte)
				i++
				if residual != 0 || i >= n {
					break
				}
			}
		} else {
			var plainByte byte
			if encode {
				plainByte = in[i]
				out[i] = plainByte
			} else {
				plainByte = in[i]
				out[i] = plainByte
			}
			e.update(i)
			e.push(plainByte)
			i++
		}
	}
}
