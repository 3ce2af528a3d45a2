// Package bwt implements the Burrows-Wheeler transform stage: a
// suffix-array-based forward transform over a BWT_UNITS-aligned prefix
// of the block (the remainder passes through unchanged), and an inverse
// that partitions the BWT_UNITS recorded strand-seed rows across worker
// goroutines for parallel reconstruction.
package bwt

import (
	"bytes"
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/loxxous/Jampack/internal/jamerr"
)

// Units is the fixed block-alignment unit and strand count. spec fixes
// this at 120 (not the 840 some revisions of the original source use).
const Units = 120

// Result is the forward transform's output: the BWT-permuted bytes of
// the aligned prefix, the strand-seed row indices needed to invert it,
// and any unaligned trailing bytes passed through untouched.
type Result struct {
	BWT     []byte
	Indices [Units]int32
	Tail    []byte
	NLen    int
}

// Forward computes the suffix array of the largest prefix of src whose
// length is a multiple of Units, forms the BWT of that prefix, and
// records the sorted-rank row of each of the Units evenly spaced
// original-text positions so the inverse can start Units independent
// parallel walks. If len(src) < Units, the entire input is returned as
// Tail and the BWT output is empty, per spec.
func Forward(src []byte) Result {
	nlen := (len(src) / Units) * Units
	if nlen == 0 {
		return Result{Tail: append([]byte{}, src...)}
	}
	main := src[:nlen]
	tail := src[nlen:]

	sa := suffixArray(main)
	rankOf := make([]int32, nlen)
	for rank, pos := range sa {
		rankOf[pos] = int32(rank)
	}

	bwtOut := make([]byte, nlen)
	for i, pos := range sa {
		prev := (pos - 1 + nlen) % nlen
		bwtOut[i] = main[prev]
	}

	step := nlen / Units
	var indices [Units]int32
	for k := 0; k < Units; k++ {
		indices[k] = rankOf[k*step]
	}

	return Result{BWT: bwtOut, Indices: indices, Tail: tail, NLen: nlen}
}

// suffixArray returns the rotation suffix array of main: sa[r] is the
// original-text start position of the r-th lexicographically smallest
// rotation of main.
func suffixArray(main []byte) []int {
	nlen := len(main)
	doubled := make([]byte, 2*nlen)
	copy(doubled, main)
	copy(doubled[nlen:], main)

	sa := make([]int, nlen)
	for i := range sa {
		sa[i] = i
	}
	sort.Slice(sa, func(a, b int) bool {
		return bytes.Compare(doubled[sa[a]:sa[a]+nlen], doubled[sa[b]:sa[b]+nlen]) < 0
	})
	return sa
}

// Inverse reconstructs the original Units-aligned prefix from a Forward
// Result's BWT bytes and strand-seed indices, then appends Tail.
func Inverse(ctx context.Context, r Result, threads int) ([]byte, error) {
	nlen := r.NLen
	if nlen == 0 {
		return append([]byte{}, r.Tail...), nil
	}
	if nlen%Units != 0 {
		return nil, jamerr.Invariant("bwt: NLen is not a multiple of Units")
	}
	if len(r.BWT) != nlen {
		return nil, jamerr.Invariant("bwt: BWT length does not match NLen")
	}
	for _, idx := range r.Indices {
		if idx < 0 || int(idx) >= nlen {
			return nil, jamerr.Invariant("bwt: strand-seed index out of range")
		}
	}

	next, err := buildNext(r.BWT)
	if err != nil {
		return nil, err
	}

	step := nlen / Units
	out := make([]byte, nlen)

	if threads < 1 {
		threads = 1
	}
	if threads > Units {
		threads = Units
	}
	stridesPerWorker := (Units + threads - 1) / threads

	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < threads; w++ {
		lo := w * stridesPerWorker
		hi := lo + stridesPerWorker
		if hi > Units {
			hi = Units
		}
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			for strand := lo; strand < hi; strand++ {
				p := int(next[r.Indices[strand]])
				base := strand * step
				for s := 0; s < step; s++ {
					out[base+s] = r.BWT[p]
					p = int(next[p])
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]byte, 0, nlen+len(r.Tail))
	result = append(result, out...)
	result = append(result, r.Tail...)
	return result, nil
}

// buildNext constructs the LF-style permutation used to walk the
// original text forward one byte at a time from any known row: next[r]
// is the BWT row whose first (sorted) column falls at sorted-position r.
func buildNext(bwtOut []byte) ([]int32, error) {
	nlen := len(bwtOut)
	var counts [256]int32
	for _, b := range bwtOut {
		counts[b]++
	}
	var sum int32
	var starts [256]int32
	for i := 0; i < 256; i++ {
		starts[i] = sum
		sum += counts[i]
	}
	if int(sum) != nlen {
		return nil, jamerr.Invariant("bwt: symbol counts do not sum to block length")
	}

	cursor := starts
	next := make([]int32, nlen)
	for i, b := range bwtOut {
		next[cursor[b]] = int32(i)
		cursor[b]++
	}
	return next, nil
}
