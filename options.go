// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package jampack

import (
	"runtime"

	"github.com/loxxous/Jampack/internal/filter"
	"github.com/loxxous/Jampack/internal/lz77"
)

// Block size bounds, in bytes.
const (
	MinBlockSize = 1 << 20    // 1 MiB
	MaxBlockSize = 1000 << 20 // 1000 MiB
	defaultBlock = 4 << 20    // 4 MiB
)

// MatchFinder selects which LZ77 pass, if any, runs as the anti-context
// stage just before BWT.
type MatchFinder int

const (
	MatchFinderDedupe      MatchFinder = 0 // no separate anti-context pass
	MatchFinderHashChain   MatchFinder = 1
	MatchFinderSuffixArray MatchFinder = 2
)

// FilterMode selects how the Filter stage searches its configuration
// space.
type FilterMode int

const (
	FilterOff        FilterMode = 0
	FilterHeuristic  FilterMode = 1
	FilterBruteForce FilterMode = 2
)

// Options is the configuration record every stage reads from: it is a
// plain value, not a builder, because the pipeline stages each inspect
// only the one or two fields relevant to them rather than holding a
// reference to the whole record.
type Options struct {
	BlockSize   int
	Threads     int
	MatchFinder MatchFinder
	Filters     FilterMode
	MultiBlock  bool
}

// DefaultOptions returns the recommended configuration: a 4 MiB block
// size, one worker per logical CPU, the hash-chain anti-context match
// finder, and heuristic filter selection.
func DefaultOptions() Options {
	return Options{
		BlockSize:   defaultBlock,
		Threads:     runtime.GOMAXPROCS(-1),
		MatchFinder: MatchFinderHashChain,
		Filters:     FilterHeuristic,
		MultiBlock:  false,
	}
}

// Validate checks that every field is within its documented range,
// returning a FormatError describing the first field found to be out of
// bounds.
func (o Options) Validate() error {
	switch {
	case o.BlockSize < MinBlockSize || o.BlockSize > MaxBlockSize:
		return FormatError("block_size out of range [1MiB, 1000MiB]")
	case o.Threads < 1:
		return FormatError("threads must be >= 1")
	case o.MatchFinder < MatchFinderDedupe || o.MatchFinder > MatchFinderSuffixArray:
		return FormatError("match_finder must be 0, 1 or 2")
	case o.Filters < FilterOff || o.Filters > FilterBruteForce:
		return FormatError("filters must be 0, 1 or 2")
	}
	return nil
}

func (o Options) filterMode() filter.Mode {
	return filter.Mode(o.Filters)
}

func (o Options) lz77Mode() lz77.Mode {
	switch o.MatchFinder {
	case MatchFinderSuffixArray:
		return lz77.ModeSuffixArray
	default:
		return lz77.ModeHashChain
	}
}
