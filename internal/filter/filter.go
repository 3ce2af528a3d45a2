// Package filter implements the structural filter stage: each 64 KiB
// sub-block is independently transformed by one of 97 configurations
// (raw, or {delta, LPC, inline-delta} x width 1..32) chosen to minimize
// estimated entropy, then a 2-byte {type, width} header records the
// choice so decode can invert it without guessing.
package filter

import (
	"github.com/loxxous/Jampack/internal/jamerr"
	"github.com/loxxous/Jampack/internal/stats"
)

// Mode selects how aggressively the encoder searches the configuration
// space.
type Mode int

const (
	// Off always picks raw (no transform).
	Off Mode = iota
	// Heuristic estimates entropy for a handful of promising widths,
	// informed by a stride histogram and the previous sub-block's choice.
	Heuristic
	// BruteForce scores every (type, width) pair and picks the minimum.
	BruteForce
)

const (
	// SubBlockSize is the granularity at which a filter configuration is
	// chosen; spec.md fixes it at 64 KiB.
	SubBlockSize = 64 * 1024
	// MaxWidth is the largest channel width considered.
	MaxWidth = 32
)

// kind identifies which transform a sub-block header names.
type kind byte

const (
	kindRaw kind = iota
	kindDelta
	kindLPC
	kindInlineDelta
)

// config is one point in the 97-entry search space: raw, or (kind, width)
// for width in [1, MaxWidth].
type config struct {
	k     kind
	width int
}

func allConfigs() []config {
	cfgs := make([]config, 0, 1+3*MaxWidth)
	cfgs = append(cfgs, config{kindRaw, 0})
	for _, k := range []kind{kindDelta, kindLPC, kindInlineDelta} {
		for w := 1; w <= MaxWidth; w++ {
			cfgs = append(cfgs, config{k, w})
		}
	}
	return cfgs
}

// Encode applies the filter stage to src, writing the transformed,
// sub-block-framed result to dst (which is grown as needed) and returns
// it.
func Encode(dst, src []byte, mode Mode) []byte {
	dst = dst[:0]
	prev := config{kindRaw, 0}
	for off := 0; off < len(src); off += SubBlockSize {
		end := off + SubBlockSize
		if end > len(src) {
			end = len(src)
		}
		chunk := src[off:end]
		cfg := selectConfig(chunk, mode, prev)
		prev = cfg
		dst = append(dst, byte(cfg.k), byte(cfg.width))
		dst = appendTransformed(dst, chunk, cfg)
	}
	return dst
}

// Decode inverts Encode: src is a sequence of {type,width} headers
// followed by transformed sub-blocks, each of original length SubBlockSize
// except possibly the last (original block length totalLen determines
// the final sub-block's size).
func Decode(dst, src []byte, totalLen int) ([]byte, error) {
	dst = dst[:0]
	remaining := totalLen
	for remaining > 0 {
		if len(src) < 2 {
			return nil, jamerr.Format("filter: truncated sub-block header")
		}
		cfg := config{kind(src[0]), int(src[1])}
		src = src[2:]
		n := SubBlockSize
		if n > remaining {
			n = remaining
		}
		if len(src) < n {
			return nil, jamerr.Format("filter: truncated sub-block payload")
		}
		chunk := src[:n]
		src = src[n:]
		var err error
		dst, err = appendInverse(dst, chunk, cfg)
		if err != nil {
			return nil, err
		}
		remaining -= n
	}
	return dst, nil
}

func appendTransformed(dst, chunk []byte, cfg config) []byte {
	switch cfg.k {
	case kindRaw:
		return append(dst, chunk...)
	case kindDelta:
		return append(dst, deltaEncode(reorder(chunk, cfg.width), cfg.width)...)
	case kindLPC:
		return append(dst, lpcEncode(reorder(chunk, cfg.width), cfg.width)...)
	case kindInlineDelta:
		return append(dst, inlineDeltaEncode(chunk, cfg.width)...)
	default:
		return append(dst, chunk...)
	}
}

func appendInverse(dst, chunk []byte, cfg config) ([]byte, error) {
	switch cfg.k {
	case kindRaw:
		return append(dst, chunk...), nil
	case kindDelta:
		return append(dst, unreorder(deltaDecode(chunk, cfg.width), cfg.width)...), nil
	case kindLPC:
		return append(dst, unreorder(lpcDecode(chunk, cfg.width), cfg.width)...), nil
	case kindInlineDelta:
		return append(dst, inlineDeltaDecode(chunk, cfg.width)...), nil
	default:
		return nil, jamerr.Format("filter: unknown sub-block kind")
	}
}

// reorder groups chunk into channel runs: out[pos++] = in[i + j*width]
// laid out channel-major, mirroring the original's stride transpose.
func reorder(chunk []byte, width int) []byte {
	if width <= 1 {
		return append([]byte{}, chunk...)
	}
	out := make([]byte, len(chunk))
	pos := 0
	for j := 0; j < width; j++ {
		for i := j; i < len(chunk); i += width {
			out[pos] = chunk[i]
			pos++
		}
	}
	return out
}

func unreorder(chunk []byte, width int) []byte {
	if width <= 1 {
		return chunk
	}
	out := make([]byte, len(chunk))
	pos := 0
	for j := 0; j < width; j++ {
		for i := j; i < len(chunk); i += width {
			out[i] = chunk[pos]
			pos++
		}
	}
	return out
}

func channelLen(total, width int) int {
	if width <= 0 {
		return total
	}
	n := total / width
	if total%width != 0 {
		n++
	}
	return n
}

func deltaEncode(reordered []byte, width int) []byte {
	out := make([]byte, len(reordered))
	clen := channelLen(len(reordered), width)
	for j := 0; j < width && j*clen < len(reordered); j++ {
		start := j * clen
		end := start + clen
		if end > len(reordered) {
			end = len(reordered)
		}
		var prevv byte
		for i := start; i < end; i++ {
			out[i] = reordered[i] - prevv
			prevv = reordered[i]
		}
	}
	return out
}

func deltaDecode(reordered []byte, width int) []byte {
	out := make([]byte, len(reordered))
	clen := channelLen(len(reordered), width)
	for j := 0; j < width && j*clen < len(reordered); j++ {
		start := j * clen
		end := start + clen
		if end > len(reordered) {
			end = len(reordered)
		}
		var prevv byte
		for i := start; i < end; i++ {
			out[i] = reordered[i] + prevv
			prevv = out[i]
		}
	}
	return out
}

func lpcEncode(reordered []byte, width int) []byte {
	out := make([]byte, len(reordered))
	clen := channelLen(len(reordered), width)
	for j := 0; j < width && j*clen < len(reordered); j++ {
		start := j * clen
		end := start + clen
		if end > len(reordered) {
			end = len(reordered)
		}
		var p1, p2, weight byte
		for i := start; i < end; i++ {
			pred := p1 + (p1 - p2) + weight
			err := reordered[i] - pred
			out[i] = err
			weight += (err - weight) >> 6
			p2 = p1
			p1 = reordered[i]
		}
	}
	return out
}

func lpcDecode(reordered []byte, width int) []byte {
	out := make([]byte, len(reordered))
	clen := channelLen(len(reordered), width)
	for j := 0; j < width && j*clen < len(reordered); j++ {
		start := j * clen
		end := start + clen
		if end > len(reordered) {
			end = len(reordered)
		}
		var p1, p2, weight byte
		for i := start; i < end; i++ {
			pred := p1 + (p1 - p2) + weight
			err := reordered[i]
			out[i] = err + pred
			weight += (err - weight) >> 6
			p2 = p1
			p1 = out[i]
		}
	}
	return out
}

func inlineDeltaEncode(chunk []byte, width int) []byte {
	out := make([]byte, len(chunk))
	var prev [MaxWidth]byte
	for i := 0; i < len(chunk); i += width {
		end := i + width
		if end > len(chunk) {
			end = len(chunk)
		}
		for j := 0; i+j < end; j++ {
			out[i+j] = chunk[i+j] - prev[j]
			prev[j] = chunk[i+j]
		}
	}
	return out
}

func inlineDeltaDecode(chunk []byte, width int) []byte {
	out := make([]byte, len(chunk))
	var prev [MaxWidth]byte
	for i := 0; i < len(chunk); i += width {
		end := i + width
		if end > len(chunk) {
			end = len(chunk)
		}
		for j := 0; i+j < end; j++ {
			out[i+j] = chunk[i+j] + prev[j]
			prev[j] = out[i+j]
		}
	}
	return out
}

func selectConfig(chunk []byte, mode Mode, prev config) config {
	if mode == Off || len(chunk) == 0 {
		return config{kindRaw, 0}
	}
	if mode == BruteForce {
		best := config{kindRaw, 0}
		bestScore := stats.Mixed(chunk)
		for _, cfg := range allConfigs() {
			if cfg.k == kindRaw {
				continue
			}
			score := scoreConfig(chunk, cfg)
			if score < bestScore {
				bestScore = score
				best = cfg
			}
		}
		return best
	}
	// Heuristic: probe the stride suggested by a position-to-last-seen
	// distance histogram, plus the previous sub-block's winning
	// configuration (smooths decisions across sub-blocks of the same
	// stream), plus width 1 and 4 as cheap generic probes.
	candidates := map[config]bool{
		{kindDelta, 1}:       true,
		{kindDelta, 4}:       true,
		{kindLPC, detectStride(chunk)}: true,
		prev:                 true,
	}
	best := config{kindRaw, 0}
	bestScore := stats.Mixed(chunk)
	for cfg := range candidates {
		if cfg.k == kindRaw || cfg.width < 1 || cfg.width > MaxWidth {
			continue
		}
		score := scoreConfig(chunk, cfg)
		if score < bestScore {
			bestScore = score
			best = cfg
		}
	}
	return best
}

func scoreConfig(chunk []byte, cfg config) float64 {
	var transformed []byte
	switch cfg.k {
	case kindDelta:
		transformed = deltaEncode(reorder(chunk, cfg.width), cfg.width)
	case kindLPC:
		transformed = lpcEncode(reorder(chunk, cfg.width), cfg.width)
	case kindInlineDelta:
		transformed = inlineDeltaEncode(chunk, cfg.width)
	default:
		return stats.Mixed(chunk)
	}
	return stats.Mixed(transformed)
}

// detectStride bins position-to-last-seen-of-this-byte distances modulo
// 33 and returns the most common nonzero bin as the candidate channel
// width, mirroring the original's distance-histogram stride detector.
func detectStride(chunk []byte) int {
	const mod = 33
	var hist [mod]int
	var last [256]int
	for i := range last {
		last[i] = -1
	}
	for i, b := range chunk {
		if last[b] >= 0 {
			d := (i - last[b]) % mod
			hist[d]++
		}
		last[b] = i
	}
	best, bestCount := 1, 0
	for d := 1; d < mod; d++ {
		if hist[d] > bestCount {
			bestCount = hist[d]
			best = d
		}
	}
	return best
}
