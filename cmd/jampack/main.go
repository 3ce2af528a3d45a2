// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"github.com/schollz/progressbar/v2"

	"github.com/loxxous/Jampack"
)

// CommonFlags maps onto jampack.Options the way cmd/pbzip2/main.go's
// CommonFlags maps onto pbzip2.Decompressor's functional options.
type CommonFlags struct {
	BlockSizeMB int  `subcmd:"b,4,'block size in MiB'"`
	Threads     int  `subcmd:"t,,'worker threads, defaults to GOMAXPROCS'"`
	MatchFinder int  `subcmd:"m,1,'match finder: 0=dedupe, 1=hash-chain, 2=suffix-array'"`
	Filters     int  `subcmd:"f,1,'filter search: 0=off, 1=heuristic, 2=brute-force'"`
	MultiBlock  bool `subcmd:"T,false,'decode multiple blocks concurrently instead of one block at a time'"`
	Progress    bool `subcmd:"progress,true,'display a progress bar'"`
}

func (cl *CommonFlags) options() jampack.Options {
	o := jampack.DefaultOptions()
	o.BlockSize = cl.BlockSizeMB * (1 << 20)
	if cl.Threads > 0 {
		o.Threads = cl.Threads
	}
	o.MatchFinder = jampack.MatchFinder(cl.MatchFinder)
	o.Filters = jampack.FilterMode(cl.Filters)
	o.MultiBlock = cl.MultiBlock
	return o
}

type compressFlags struct {
	CommonFlags
}

type decompressFlags struct {
	CommonFlags
}

type inspectFlags struct{}

var cmdSet *subcmd.CommandSet

func init() {
	compressCmd := subcmd.NewCommand("c",
		subcmd.MustRegisterFlagStruct(&compressFlags{}, nil, nil),
		compress, subcmd.ExactlyNumArguments(2))
	compressCmd.Document(`compress <input> <output>.`)

	decompressCmd := subcmd.NewCommand("d",
		subcmd.MustRegisterFlagStruct(&decompressFlags{}, nil, nil),
		decompress, subcmd.ExactlyNumArguments(2))
	decompressCmd.Document(`decompress <input> <output>.`)

	inspectCmd := subcmd.NewCommand("inspect",
		subcmd.MustRegisterFlagStruct(&inspectFlags{}, nil, nil),
		inspect, subcmd.AtLeastNArguments(1))
	inspectCmd.Document(`print each block's header fields without decompressing its payload.`)

	cmdSet = subcmd.NewCommandSet(compressCmd, decompressCmd, inspectCmd)
	cmdSet.Document(`compress, decompress and inspect jampack archives.`)
}

func main() {
	cmdSet.MustDispatch(context.Background())
}

func openInput(name string) (io.ReadCloser, int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func createOutput(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

func summarize(name string, res jampack.Result, err error) {
	if err != nil {
		return
	}
	mbps := float64(0)
	if s := res.Elapsed.Seconds(); s > 0 {
		mbps = float64(res.BytesIn) / (1 << 20) / s
	}
	fmt.Printf("%s: Read: %d MB => %d MB (%.2f%%) @ %.2f MB/s\n",
		name, res.BytesIn>>20, res.BytesOut>>20, res.Ratio()*100, mbps)
}

func runProgressBar(ctx context.Context, size int64, bytesRead func() int64) func() {
	if size <= 0 {
		return func() {}
	}
	bar := progressbar.NewOptions64(size,
		progressbar.OptionSetBytes64(size),
		progressbar.OptionSetPredictTime(true))
	bar.RenderBlank()
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		last := int64(0)
		for {
			select {
			case <-ticker.C:
				n := bytesRead()
				bar.Add64(n - last)
				last = n
			case <-done:
				bar.Finish()
				fmt.Println()
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return func() { close(done) }
}

func compress(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)

	cl := values.(*compressFlags)
	opts := cl.options()

	in, size, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := createOutput(args[1])
	if err != nil {
		return err
	}
	defer out.Close()

	var read countingReader
	read.r = in
	var stop func()
	if cl.Progress {
		stop = runProgressBar(ctx, size, read.Count)
	}
	res, err := jampack.Compress(ctx, &read, out, opts)
	if stop != nil {
		stop()
	}
	summarize(args[0], res, err)
	return err
}

func decompress(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)

	cl := values.(*decompressFlags)
	opts := cl.options()

	in, size, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := createOutput(args[1])
	if err != nil {
		return err
	}
	defer out.Close()

	var read countingReader
	read.r = in
	var stop func()
	if cl.Progress {
		stop = runProgressBar(ctx, size, read.Count)
	}
	res, err := jampack.Decompress(ctx, &read, out, opts)
	if stop != nil {
		stop()
	}
	summarize(args[0], res, err)
	return err
}

// countingReader tracks cumulative bytes read so the progress bar can
// poll it from another goroutine without racing the reader itself.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		atomic.AddInt64(&c.n, int64(n))
	}
	return n, err
}

func (c *countingReader) Count() int64 {
	return atomic.LoadInt64(&c.n)
}
