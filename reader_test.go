// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package jampack_test

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"testing"

	"github.com/loxxous/Jampack"
)

func compressToBuffer(t *testing.T, data []byte, opts jampack.Options) []byte {
	t.Helper()
	var archive bytes.Buffer
	if _, err := jampack.Compress(context.Background(), bytes.NewReader(data), &archive, opts); err != nil {
		t.Fatalf("Compress: %v", err)
	}
	return archive.Bytes()
}

func TestNewReaderLazilyDecompresses(t *testing.T) {
	opts := smallOpts()
	r := rand.New(rand.NewSource(42))
	data := make([]byte, 3*jampack.MinBlockSize+999)
	r.Read(data)
	archive := compressToBuffer(t, data, opts)

	rd := jampack.NewReader(context.Background(), bytes.NewReader(archive), opts)
	got, err := io.ReadAll(rd)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("NewReader output mismatch: got %d bytes, want %d", len(got), len(data))
	}
}

func TestNewReaderSurfacesCorruption(t *testing.T) {
	opts := smallOpts()
	archive := compressToBuffer(t, []byte("a small archive to corrupt"), opts)
	corrupt := append([]byte(nil), archive...)
	corrupt[0] ^= 0xFF

	rd := jampack.NewReader(context.Background(), bytes.NewReader(corrupt), opts)
	if _, err := io.ReadAll(rd); err == nil {
		t.Fatal("expected an error reading a corrupted archive")
	}
}

func TestNewReaderCancellation(t *testing.T) {
	opts := smallOpts()
	data := make([]byte, 2*jampack.MinBlockSize)
	archive := compressToBuffer(t, data, opts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rd := jampack.NewReader(ctx, bytes.NewReader(archive), opts)
	if _, err := io.ReadAll(rd); err == nil {
		t.Fatal("expected an error reading from an already-canceled context")
	}
}
