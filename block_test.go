// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package jampack

import (
	"bytes"
	"io"
	"testing"

	"github.com/loxxous/Jampack/internal/bwt"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := blockHeader{checksum: 0xDEADBEEF, payloadLen: 1234, blockSize: MinBlockSize}
	var buf bytes.Buffer
	if err := writeHeader(&buf, h); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	if buf.Len() != headerSize {
		t.Fatalf("header is %d bytes, want %d", buf.Len(), headerSize)
	}
	got, err := readHeader(&buf)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if got != h {
		t.Fatalf("readHeader() = %+v, want %+v", got, h)
	}
}

func TestReadHeaderCleanEOF(t *testing.T) {
	_, err := readHeader(bytes.NewReader(nil))
	if err != io.EOF {
		t.Fatalf("readHeader on empty stream = %v, want io.EOF", err)
	}
}

func TestReadHeaderBadMagic(t *testing.T) {
	var buf bytes.Buffer
	writeHeader(&buf, blockHeader{blockSize: MinBlockSize})
	corrupt := buf.Bytes()
	corrupt[0] = 0x00
	if _, err := readHeader(bytes.NewReader(corrupt)); err == nil {
		t.Fatal("expected an error for bad magic")
	}
}

func TestReadHeaderBlockSizeOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	writeHeader(&buf, blockHeader{blockSize: MinBlockSize - 1})
	if _, err := readHeader(bytes.NewReader(buf.Bytes())); err == nil {
		t.Fatal("expected an error for an out-of-range block_size")
	}
}

func TestTrailerRoundTrip(t *testing.T) {
	r := bwt.Forward([]byte("the quick brown fox jumps over the lazy dog, repeatedly, many times over"))
	buf := encodeTrailer(1000, 950, 900, r)

	origLen, dedupedLen, preLZ77Len, got, err := decodeTrailer(buf)
	if err != nil {
		t.Fatalf("decodeTrailer: %v", err)
	}
	if origLen != 1000 || dedupedLen != 950 || preLZ77Len != 900 {
		t.Fatalf("lengths = (%d, %d, %d), want (1000, 950, 900)", origLen, dedupedLen, preLZ77Len)
	}
	if got.NLen != r.NLen || !bytes.Equal(got.Tail, r.Tail) || !bytes.Equal(got.BWT, r.BWT) {
		t.Fatalf("decoded BWT result does not match original")
	}
	if got.Indices != r.Indices {
		t.Fatalf("decoded Indices do not match original")
	}
}

func TestMethodByteRoundTrip(t *testing.T) {
	opts := DefaultOptions()
	opts.MatchFinder = MatchFinderSuffixArray
	opts.Filters = FilterBruteForce

	mf, fm := parseMethodByte(methodByte(opts))
	if mf != opts.MatchFinder || fm != opts.Filters {
		t.Fatalf("parseMethodByte(methodByte(opts)) = (%v, %v), want (%v, %v)", mf, fm, opts.MatchFinder, opts.Filters)
	}
}
