// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package jampack

import (
	"context"

	"github.com/loxxous/Jampack/internal/bwt"
	"github.com/loxxous/Jampack/internal/checksum"
	"github.com/loxxous/Jampack/internal/entropy"
	"github.com/loxxous/Jampack/internal/filter"
	"github.com/loxxous/Jampack/internal/jamerr"
	"github.com/loxxous/Jampack/internal/localprefix"
	"github.com/loxxous/Jampack/internal/lz77"
)

// compressBlock runs one block through the full pipeline in order
// (Dedupe, Filter, LocalPrefix, anti-context LZ77, BWT, Entropy) and
// returns the archive payload bytes and the checksum of the original
// block.
func compressBlock(ctx context.Context, data []byte, opts Options) (payload []byte, sum uint32, err error) {
	sum = checksum.Sum(data)
	if len(data) == 0 {
		// An empty block needs no payload at all: the archive's 15-byte
		// header with payload_len=0 fully describes it.
		return nil, sum, nil
	}

	deduped := lz77.Encode(nil, data, lz77.ModeDedupe)
	dedupedLen := len(deduped)
	filtered := filter.Encode(nil, deduped, opts.filterMode())
	prefixed, err := localprefix.Encode(ctx, nil, filtered)
	if err != nil {
		return nil, 0, err
	}

	// preLZ77Len is the length of the bytes about to enter the optional
	// anti-context LZ77 pass. LocalPrefix is length-preserving, so this
	// is also the origLen the anti-context lz77.Decode needs to reverse
	// it. dedupedLen is separately what filter.Decode needs: Filter's
	// own sub-block framing adds a 2-byte {type,width} header per 64 KiB
	// sub-block, so the filtered length can't stand in for it.
	preLZ77Len := len(prefixed)
	antiContext := prefixed
	if opts.MatchFinder != MatchFinderDedupe {
		antiContext = lz77.Encode(nil, prefixed, opts.lz77Mode())
	}

	transformed := bwt.Forward(antiContext)
	trailer := encodeTrailer(len(data), dedupedLen, preLZ77Len, transformed)
	encoded := entropy.EncodeBlock(trailer)

	payload = make([]byte, 0, len(encoded)+1)
	payload = append(payload, methodByte(opts))
	payload = append(payload, encoded...)
	return payload, sum, nil
}

// methodByte packs the match finder and filter mode actually used for a
// block into one byte, prefixed to the payload ahead of the entropy
// sub-blocks. Decode reads it back instead of trusting its own Options
// to match what the encoder chose, and "jampack inspect" reports it
// without needing to decompress the payload.
func methodByte(opts Options) byte {
	return byte(opts.MatchFinder)<<4 | byte(opts.Filters)
}

func parseMethodByte(b byte) (MatchFinder, FilterMode) {
	return MatchFinder(b >> 4), FilterMode(b & 0x0F)
}

// decompressBlock reverses compressBlock, validating the checksum
// against wantSum.
func decompressBlock(ctx context.Context, payload []byte, wantSum uint32, opts Options) ([]byte, error) {
	if len(payload) == 0 {
		if sum := checksum.Sum(nil); sum != wantSum {
			return nil, jamerr.Integrity("block checksum mismatch")
		}
		return nil, nil
	}
	method, _ := parseMethodByte(payload[0])
	trailer, err := decodeEntropyStream(payload[1:])
	if err != nil {
		return nil, err
	}

	origLen, dedupedLen, preLZ77Len, bwtResult, err := decodeTrailer(trailer)
	if err != nil {
		return nil, err
	}

	antiContext, err := bwt.Inverse(ctx, bwtResult, opts.Threads)
	if err != nil {
		return nil, err
	}

	prefixed := antiContext
	if method != MatchFinderDedupe {
		prefixed, err = lz77.Decode(nil, antiContext, preLZ77Len)
		if err != nil {
			return nil, err
		}
	}

	filtered, err := localprefix.Decode(ctx, nil, prefixed)
	if err != nil {
		return nil, err
	}
	deduped, err := filter.Decode(nil, filtered, dedupedLen)
	if err != nil {
		return nil, err
	}
	data, err := lz77.Decode(nil, deduped, origLen)
	if err != nil {
		return nil, err
	}

	if sum := checksum.Sum(data); sum != wantSum {
		return nil, jamerr.Integrity("block checksum mismatch")
	}
	return data, nil
}

// decodeEntropyStream walks the payload's entropy sub-blocks (normally
// exactly one, but the format allows a sequence) until the whole
// payload has been consumed.
func decodeEntropyStream(payload []byte) ([]byte, error) {
	var out []byte
	for len(payload) > 0 {
		chunk, consumed, err := entropy.DecodeBlock(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		payload = payload[consumed:]
	}
	return out, nil
}
