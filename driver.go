// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package jampack

import (
	"container/heap"
	"context"
	"io"
	"sync"
	"sync/atomic"
)

// job is one unit of work flowing through the driver: a block read from
// the input (raw bytes to compress, or a header+payload to decompress),
// tagged with its position in the stream so results can be reassembled
// in order regardless of which worker finishes first.
type job struct {
	order uint64
	in    []byte
	meta  uint32 // block checksum: read from the header (decompress) or computed by work and read back by onDone (compress)

	out []byte
	err error
}

// driver runs a worker pool over a stream of jobs and reassembles their
// results strictly in source order, generalizing parallel.go's
// Decompressor to run in either direction: work does the per-block
// transform (compress or decompress), and onDone is called by assemble
// once per job, in order, to emit its result downstream.
type driver struct {
	order uint64 // atomic; must stay first for alignment on 32-bit platforms

	ctx    context.Context
	cancel context.CancelFunc
	work   func(*job)
	onDone func(*job) error

	workWg sync.WaitGroup
	doneWg sync.WaitGroup
	workCh chan *job
	doneCh chan *job

	prd *io.PipeReader
	pwr *io.PipeWriter

	jobHeap  jobHeap
	firstErr error
}

// newDriver starts the worker pool. onDone is set on the returned driver
// before any job can reach assemble(), since Submit (and therefore the
// earliest possible job completion) only happens after the caller gets
// the driver back and wires onDone up.
func newDriver(ctx context.Context, concurrency int, work func(*job)) *driver {
	if concurrency < 1 {
		concurrency = 1
	}
	innerCtx, cancel := context.WithCancel(ctx)
	d := &driver{
		ctx:    innerCtx,
		cancel: cancel,
		work:   work,
		workCh: make(chan *job, concurrency),
		doneCh: make(chan *job, concurrency),
	}
	d.prd, d.pwr = io.Pipe()
	heap.Init(&d.jobHeap)

	d.workWg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer d.workWg.Done()
			d.worker()
		}()
	}
	d.doneWg.Add(1)
	go func() {
		defer d.doneWg.Done()
		d.assemble()
	}()
	return d
}

func (d *driver) worker() {
	for {
		select {
		case j, ok := <-d.workCh:
			if !ok {
				return
			}
			d.work(j)
			select {
			case d.doneCh <- j:
			case <-d.ctx.Done():
				return
			}
		case <-d.ctx.Done():
			return
		}
	}
}

// Submit wraps in and meta in a new job, tags it with the next order
// number and enqueues it for processing.
func (d *driver) Submit(in []byte, meta uint32) error {
	j := &job{
		order: atomic.AddUint64(&d.order, 1),
		in:    in,
		meta:  meta,
	}
	select {
	case d.workCh <- j:
		return nil
	case <-d.ctx.Done():
		return d.ctx.Err()
	}
}

// Finish signals that no more jobs will be submitted, waits for all
// outstanding work and reassembly to complete, and returns the first
// error encountered (if any). It must be called exactly once.
func (d *driver) Finish() error {
	close(d.workCh)
	d.workWg.Wait()
	close(d.doneCh)
	d.doneWg.Wait()
	return d.firstErr
}

func (d *driver) assemble() {
	defer d.pwr.Close()
	defer d.cancel()
	expected := uint64(1)
	for {
		select {
		case j, ok := <-d.doneCh:
			if !ok {
				return
			}
			heap.Push(&d.jobHeap, j)
			for d.jobHeap.Len() > 0 && d.jobHeap[0].order == expected {
				next := heap.Pop(&d.jobHeap).(*job)
				expected++
				if next.err != nil {
					if d.firstErr == nil {
						d.firstErr = next.err
					}
					d.pwr.CloseWithError(next.err)
					return
				}
				if err := d.onDone(next); err != nil {
					if d.firstErr == nil {
						d.firstErr = err
					}
					d.pwr.CloseWithError(err)
					return
				}
			}
		case <-d.ctx.Done():
			if d.firstErr == nil {
				d.firstErr = d.ctx.Err()
			}
			d.pwr.CloseWithError(d.ctx.Err())
			return
		}
	}
}

// Read implements io.Reader over the reassembled output stream.
func (d *driver) Read(buf []byte) (int, error) {
	return d.prd.Read(buf)
}

// Write lets onDone callbacks push reassembled bytes downstream.
func (d *driver) Write(buf []byte) (int, error) {
	return d.pwr.Write(buf)
}

type jobHeap []*job

func (h jobHeap) Len() int            { return len(h) }
func (h jobHeap) Less(i, j int) bool  { return h[i].order < h[j].order }
func (h jobHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *jobHeap) Push(x interface{}) { *h = append(*h, x.(*job)) }
func (h *jobHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
