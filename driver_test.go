// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package jampack

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestDriverPreservesOrder(t *testing.T) {
	ctx := context.Background()
	d := newDriver(ctx, 4, func(j *job) {
		// Reverse the bytes; workers finish out of order, assemble must
		// still emit them in submission order.
		out := make([]byte, len(j.in))
		for i, b := range j.in {
			out[len(j.in)-1-i] = b
		}
		j.out = out
	})
	d.onDone = func(j *job) error {
		_, err := d.Write(j.out)
		return err
	}

	var want bytes.Buffer
	inputs := [][]byte{[]byte("one"), []byte("two"), []byte("three"), []byte("four"), []byte("five")}
	for _, in := range inputs {
		rev := make([]byte, len(in))
		for i, b := range in {
			rev[len(in)-1-i] = b
		}
		want.Write(rev)
	}

	readDone := make(chan []byte, 1)
	go func() {
		buf, _ := io.ReadAll(d)
		readDone <- buf
	}()

	for _, in := range inputs {
		if err := d.Submit(in, 0); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	got := <-readDone
	if !bytes.Equal(got, want.Bytes()) {
		t.Fatalf("assembled output = %q, want %q", got, want.Bytes())
	}
}

func TestDriverPropagatesWorkError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	d := newDriver(ctx, 2, func(j *job) {
		if bytes.Equal(j.in, []byte("bad")) {
			j.err = boom
			return
		}
		j.out = j.in
	})
	d.onDone = func(j *job) error {
		_, err := d.Write(j.out)
		return err
	}

	go io.Copy(io.Discard, d)

	d.Submit([]byte("ok"), 0)
	d.Submit([]byte("bad"), 0)
	d.Submit([]byte("ok2"), 0)
	err := d.Finish()
	if !errors.Is(err, boom) {
		t.Fatalf("Finish() error = %v, want %v", err, boom)
	}
}
