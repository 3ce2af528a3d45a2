// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package jampack implements a general-purpose block compressor built
// from a chain of reversible transforms: deduplication, structural
// filtering, a local prefix model, an anti-context LZ77 pass, a
// Burrows-Wheeler transform and a structured rANS entropy coder. Blocks
// are framed independently so a stream can be compressed and
// decompressed by a pool of workers running strictly in order.
package jampack

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/loxxous/Jampack/internal/jamerr"
)

// Result reports the outcome of one Compress or Decompress run: running
// byte totals and the wall-clock time taken, in the same shape the
// teacher's Progress reports per-block progress, but accumulated over
// the whole archive.
type Result struct {
	BytesIn  int64
	BytesOut int64
	Blocks   uint64
	Elapsed  time.Duration
}

// Ratio returns BytesOut/BytesIn, or 0 if nothing was processed.
func (r Result) Ratio() float64 {
	if r.BytesIn == 0 {
		return 0
	}
	return float64(r.BytesOut) / float64(r.BytesIn)
}

// Compress reads raw data from r in opts.BlockSize chunks, compresses
// each block independently (opts.Threads of them in flight at once) and
// writes the framed archive to w in block order.
func Compress(ctx context.Context, r io.Reader, w io.Writer, opts Options) (Result, error) {
	if opts == (Options{}) {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	start := time.Now()

	d := newDriver(ctx, opts.Threads, func(j *job) {
		payload, sum, err := compressBlock(ctx, j.in, opts)
		j.out, j.meta, j.err = payload, sum, err
	})
	var bytesIn, bytesOut, blocks int64
	d.onDone = func(j *job) error {
		h := blockHeader{
			checksum:   j.meta,
			payloadLen: uint32(len(j.out)),
			blockSize:  uint32(opts.BlockSize),
		}
		if err := writeHeader(d, h); err != nil {
			return jamerr.Wrap("compress", err)
		}
		if len(j.out) > 0 {
			if _, err := d.Write(j.out); err != nil {
				return jamerr.Wrap("compress", err)
			}
		}
		atomic.AddInt64(&bytesOut, int64(headerSize)+int64(len(j.out)))
		atomic.AddInt64(&blocks, 1)
		return nil
	}

	readErrCh := make(chan error, 1)
	go func() {
		defer d.Finish()
		buf := make([]byte, opts.BlockSize)
		submitted := false
		for {
			n, err := io.ReadFull(r, buf)
			if n > 0 {
				block := append([]byte(nil), buf[:n]...)
				atomic.AddInt64(&bytesIn, int64(n))
				if serr := d.Submit(block, 0); serr != nil {
					readErrCh <- serr
					return
				}
				submitted = true
			}
			if err == io.EOF {
				if !submitted {
					// An entirely empty input still produces one block:
					// a 15-byte header with payload_len=0.
					if serr := d.Submit(nil, 0); serr != nil {
						readErrCh <- serr
						return
					}
				}
				readErrCh <- nil
				return
			}
			if err == io.ErrUnexpectedEOF {
				readErrCh <- nil
				return
			}
			if err != nil {
				readErrCh <- jamerr.IO("short read from input")
				return
			}
		}
	}()

	copyErrCh := make(chan error, 1)
	go func() {
		_, err := io.Copy(w, d)
		copyErrCh <- err
	}()

	readErr := <-readErrCh
	copyErr := <-copyErrCh

	res := Result{
		BytesIn:  atomic.LoadInt64(&bytesIn),
		BytesOut: atomic.LoadInt64(&bytesOut),
		Blocks:   uint64(atomic.LoadInt64(&blocks)),
		Elapsed:  time.Since(start),
	}
	if readErr != nil {
		return res, readErr
	}
	if copyErr != nil {
		return res, jamerr.Wrap("compress", copyErr)
	}
	return res, nil
}

// Decompress reads a Jampack archive from r, decompresses each block
// (one at a time with opts.Threads workers inside it by default, or
// opts.Threads blocks in flight when opts.MultiBlock is set) and writes
// the reassembled data to w in original order.
func Decompress(ctx context.Context, r io.Reader, w io.Writer, opts Options) (Result, error) {
	if opts == (Options{}) {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	start := time.Now()

	// Single-block parallel (the default) decodes one block at a time,
	// with that block's own stages (BWT inverse) using all opts.Threads
	// internally; multi_block=true instead keeps opts.Threads blocks in
	// flight across the driver, each decoded single-threaded.
	concurrency, blockThreads := 1, opts.Threads
	if opts.MultiBlock {
		concurrency, blockThreads = opts.Threads, 1
	}
	blockOpts := opts
	blockOpts.Threads = blockThreads

	d := newDriver(ctx, concurrency, func(j *job) {
		out, err := decompressBlock(ctx, j.in, j.meta, blockOpts)
		j.out, j.err = out, err
	})
	var bytesIn, bytesOut, blocks int64
	d.onDone = func(j *job) error {
		if len(j.out) > 0 {
			if _, err := d.Write(j.out); err != nil {
				return jamerr.Wrap("decompress", err)
			}
		}
		atomic.AddInt64(&bytesOut, int64(len(j.out)))
		atomic.AddInt64(&blocks, 1)
		return nil
	}

	readErrCh := make(chan error, 1)
	go func() {
		defer d.Finish()
		for {
			h, err := readHeader(r)
			if err == io.EOF {
				readErrCh <- nil
				return
			}
			if err != nil {
				readErrCh <- err
				return
			}
			payload := make([]byte, h.payloadLen)
			if h.payloadLen > 0 {
				if _, err := io.ReadFull(r, payload); err != nil {
					readErrCh <- jamerr.IO("short read on block payload")
					return
				}
			}
			atomic.AddInt64(&bytesIn, int64(headerSize)+int64(h.payloadLen))
			if serr := d.Submit(payload, h.checksum); serr != nil {
				readErrCh <- serr
				return
			}
		}
	}()

	copyErrCh := make(chan error, 1)
	go func() {
		_, err := io.Copy(w, d)
		copyErrCh <- err
	}()

	readErr := <-readErrCh
	copyErr := <-copyErrCh

	res := Result{
		BytesIn:  atomic.LoadInt64(&bytesIn),
		BytesOut: atomic.LoadInt64(&bytesOut),
		Blocks:   uint64(atomic.LoadInt64(&blocks)),
		Elapsed:  time.Since(start),
	}
	if readErr != nil {
		return res, readErr
	}
	if copyErr != nil {
		return res, jamerr.Wrap("decompress", copyErr)
	}
	return res, nil
}
