// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"

	"cloudeng.io/cmdutil"
	"cloudeng.io/errors"

	"github.com/loxxous/Jampack"
)

func inspectFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Printf("=== %s ===\n", name)
	fmt.Println("Block, Checksum, PayloadLen, BlockSize, MatchFinder, Filters")
	return jampack.Inspect(f, func(b jampack.BlockInfo) error {
		fmt.Printf("% 6d  %#08x  % 10d  % 10d  %d  %d\n",
			b.Index, b.Checksum, b.PayloadLen, b.BlockSize, b.MatchFinder, b.Filters)
		return nil
	})
}

func inspect(ctx context.Context, values interface{}, args []string) error {
	_, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)

	errs := errors.M{}
	for _, arg := range args {
		errs.Append(inspectFile(arg))
	}
	return errs.Err()
}
