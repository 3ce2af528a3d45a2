// Package stats provides the order-0/order-1 entropy estimators shared by
// the filter selection policy and usable as a scoring function for match
// finders. They estimate bits-per-symbol, not an exact code length.
package stats

import "math"

// Order0 estimates the order-0 (context-free) entropy of data, in bits
// per symbol.
func Order0(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var hist [256]int
	for _, b := range data {
		hist[b]++
	}
	n := float64(len(data))
	var bits float64
	for _, c := range hist {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		bits -= p * math.Log2(p)
	}
	return bits
}

// Order1 estimates the order-1 (previous-byte-conditioned) entropy of
// data, in bits per symbol.
func Order1(data []byte) float64 {
	if len(data) < 2 {
		return Order0(data)
	}
	var hist [256][256]int
	var ctxTotal [256]int
	prev := byte(0)
	for _, b := range data {
		hist[prev][b]++
		ctxTotal[prev]++
		prev = b
	}
	n := float64(len(data))
	var bits float64
	for ctx := 0; ctx < 256; ctx++ {
		total := ctxTotal[ctx]
		if total == 0 {
			continue
		}
		ftotal := float64(total)
		for _, c := range hist[ctx] {
			if c == 0 {
				continue
			}
			p := float64(c) / ftotal
			bits -= float64(c) / n * math.Log2(p)
		}
	}
	return bits
}

// Mixed blends order-0 and order-1 estimates: order-1 is discounted by
// the table's sparsity so that short inputs (where order-1 contexts are
// mostly singletons and hence free) don't look artificially compressible.
func Mixed(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	o0 := Order0(data)
	o1 := Order1(data)
	weight := float64(len(data)) / (float64(len(data)) + 256)
	return o1*weight + o0*(1-weight)
}
