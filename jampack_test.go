// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package jampack_test

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/loxxous/Jampack"
)

func roundTrip(t *testing.T, data []byte, opts jampack.Options) []byte {
	t.Helper()
	ctx := context.Background()

	var archive bytes.Buffer
	if _, err := jampack.Compress(ctx, bytes.NewReader(data), &archive, opts); err != nil {
		t.Fatalf("Compress: %v", err)
	}

	var out bytes.Buffer
	if _, err := jampack.Decompress(ctx, bytes.NewReader(archive.Bytes()), &out, opts); err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d bytes", out.Len(), len(data))
	}
	return archive.Bytes()
}

func smallOpts() jampack.Options {
	o := jampack.DefaultOptions()
	o.BlockSize = jampack.MinBlockSize
	o.Threads = 2
	return o
}

func TestEmptyBlockArchiveIsHeaderOnly(t *testing.T) {
	archive := roundTrip(t, nil, smallOpts())
	if len(archive) != 15 {
		t.Fatalf("empty input archive length = %d, want 15", len(archive))
	}
}

func TestSingleZeroByte(t *testing.T) {
	roundTrip(t, []byte{0}, smallOpts())
}

func TestRepeatedByteHighRatio(t *testing.T) {
	data := bytes.Repeat([]byte{0xFF}, 1<<20)
	archive := roundTrip(t, data, smallOpts())
	if ratio := float64(len(data)) / float64(len(archive)); ratio < 100 {
		t.Fatalf("ratio = %.1f, want >= 100:1 (archive %d bytes for %d input)", ratio, len(archive), len(data))
	}
}

func TestAlternatingBytes(t *testing.T) {
	data := make([]byte, 1<<16)
	for i := range data {
		if i%2 == 0 {
			data[i] = 0x00
		} else {
			data[i] = 0xFF
		}
	}
	roundTrip(t, data, smallOpts())
}

func TestRandomData(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	data := make([]byte, 1<<18)
	r.Read(data)
	roundTrip(t, data, smallOpts())
}

func TestTextCorpus(t *testing.T) {
	var buf bytes.Buffer
	line := "the quick brown fox jumps over the lazy dog; "
	for buf.Len() < 1<<19 {
		buf.WriteString(line)
	}
	roundTrip(t, buf.Bytes(), smallOpts())
}

func TestMultiBlockArchive(t *testing.T) {
	data := make([]byte, 3*jampack.MinBlockSize+12345)
	r := rand.New(rand.NewSource(2))
	r.Read(data)
	roundTrip(t, data, smallOpts())
}

func TestMatchFinderModes(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	data := make([]byte, 1<<17)
	r.Read(data)
	for _, mf := range []jampack.MatchFinder{
		jampack.MatchFinderDedupe,
		jampack.MatchFinderHashChain,
		jampack.MatchFinderSuffixArray,
	} {
		opts := smallOpts()
		opts.MatchFinder = mf
		roundTrip(t, data, opts)
	}
}

func TestFilterModes(t *testing.T) {
	data := make([]byte, 1<<17)
	for i := range data {
		data[i] = byte(i * 7)
	}
	for _, fm := range []jampack.FilterMode{
		jampack.FilterOff,
		jampack.FilterHeuristic,
		jampack.FilterBruteForce,
	} {
		opts := smallOpts()
		opts.Filters = fm
		roundTrip(t, data, opts)
	}
}

func TestMultiBlockOption(t *testing.T) {
	data := make([]byte, 2*jampack.MinBlockSize+777)
	r := rand.New(rand.NewSource(4))
	r.Read(data)
	opts := smallOpts()
	opts.MultiBlock = true
	roundTrip(t, data, opts)
}

func TestArchiveByteCountMatchesBlockFraming(t *testing.T) {
	data := make([]byte, 2*jampack.MinBlockSize+42)
	r := rand.New(rand.NewSource(5))
	r.Read(data)
	opts := smallOpts()

	var archive bytes.Buffer
	res, err := jampack.Compress(context.Background(), bytes.NewReader(data), &archive, opts)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if res.BytesOut != int64(archive.Len()) {
		t.Fatalf("Result.BytesOut = %d, archive is %d bytes", res.BytesOut, archive.Len())
	}

	// Archive byte count equals sum over blocks of 15 + payload_len.
	buf := archive.Bytes()
	var total int
	for len(buf) > 0 {
		if len(buf) < 15 {
			t.Fatalf("trailing %d bytes shorter than a header", len(buf))
		}
		pl := int(buf[7])<<24 | int(buf[8])<<16 | int(buf[9])<<8 | int(buf[10])
		total += 15 + pl
		buf = buf[15+pl:]
	}
	if total != archive.Len() {
		t.Fatalf("sum of 15+payload_len = %d, archive length = %d", total, archive.Len())
	}
}

func TestDecompressRejectsBadMagic(t *testing.T) {
	archive := roundTrip(t, []byte("hello world"), smallOpts())
	corrupt := append([]byte(nil), archive...)
	corrupt[0] ^= 0xFF

	var out bytes.Buffer
	_, err := jampack.Decompress(context.Background(), bytes.NewReader(corrupt), &out, smallOpts())
	if err == nil {
		t.Fatal("expected an error decompressing a corrupted magic, got nil")
	}
}

func TestDecompressRejectsChecksumMismatch(t *testing.T) {
	archive := roundTrip(t, []byte("hello world, checksum this"), smallOpts())
	corrupt := append([]byte(nil), archive...)
	// Flip a byte inside the checksum field, not the magic or lengths.
	corrupt[4] ^= 0xFF

	var out bytes.Buffer
	_, err := jampack.Decompress(context.Background(), bytes.NewReader(corrupt), &out, smallOpts())
	if err == nil {
		t.Fatal("expected a checksum error, got nil")
	}
}

func TestOptionsValidate(t *testing.T) {
	good := jampack.DefaultOptions()
	if err := good.Validate(); err != nil {
		t.Fatalf("DefaultOptions() failed validation: %v", err)
	}

	bad := good
	bad.BlockSize = jampack.MinBlockSize - 1
	if err := bad.Validate(); err == nil {
		t.Fatal("expected an error for an undersized block size")
	}

	bad = good
	bad.Threads = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected an error for zero threads")
	}
}
