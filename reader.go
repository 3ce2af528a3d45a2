// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package jampack

import (
	"context"
	"io"
	"sync"

	"github.com/loxxous/Jampack/internal/jamerr"
)

type reader struct {
	ctx   context.Context
	errCh chan error
	wg    *sync.WaitGroup
	d     *driver
}

// NewReader returns an io.Reader that lazily decompresses a jampack
// archive read from rd: unlike Decompress, it does not block until the
// whole archive has been consumed, so callers can pipe it straight into
// another io.Reader-consuming API.
func NewReader(ctx context.Context, rd io.Reader, opts Options) io.Reader {
	if opts == (Options{}) {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		errCh := make(chan error, 1)
		errCh <- err
		close(errCh)
		return &reader{ctx: ctx, errCh: errCh, wg: new(sync.WaitGroup), d: nil}
	}
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
	d.onDone = func(j *job) error {
		_, err := d.Write(j.out)
		return err
	}

	errCh := make(chan error, 1)
	wg := new(sync.WaitGroup)
	wg.Add(1)
	go func() {
		errCh <- scanBlocks(rd, d)
		close(errCh)
		wg.Done()
	}()
	return &reader{ctx: ctx, errCh: errCh, d: d, wg: wg}
}

// scanBlocks reads archive block headers and payloads from rd, submitting
// each to d, and always calls Finish exactly once.
func scanBlocks(rd io.Reader, d *driver) error {
	for {
		h, err := readHeader(rd)
		if err == io.EOF {
			return d.Finish()
		}
		if err != nil {
			d.Finish()
			return err
		}
		payload := make([]byte, h.payloadLen)
		if h.payloadLen > 0 {
			if _, err := io.ReadFull(rd, payload); err != nil {
				d.Finish()
				return jamerr.IO("short read on block payload")
			}
		}
		if err := d.Submit(payload, h.checksum); err != nil {
			d.Finish()
			return err
		}
	}
}

// handleErrorOrCancel returns an error returned by the decompression
// goroutine above or if the context is canceled.
func (rd *reader) handleErrorOrCancel() error {
	select {
	case err := <-rd.errCh:
		return err
	case <-rd.ctx.Done():
		return rd.ctx.Err()
	default:
		return nil
	}
}

// Read implements io.Reader.
func (rd *reader) Read(buf []byte) (int, error) {
	if err := rd.handleErrorOrCancel(); err != nil {
		rd.wg.Wait()
		return 0, err
	}
	n, err := rd.d.Read(buf)
	if err == nil {
		return n, nil
	}

	rd.wg.Wait()

	select {
	case cerr := <-rd.errCh:
		if err != io.EOF {
			return n, err
		}
		if cerr != nil {
			return n, cerr
		}
	default:
	}
	return n, err
}
