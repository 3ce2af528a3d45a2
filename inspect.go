// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package jampack

import (
	"io"

	"github.com/loxxous/Jampack/internal/jamerr"
)

// BlockInfo describes one archive block's header fields plus the
// compression/filter method recorded at the front of its payload,
// without decompressing the payload itself. It is the Go equivalent of
// the original's DisplayHeaderContents dump.
type BlockInfo struct {
	Index       int
	Checksum    uint32
	PayloadLen  uint32
	BlockSize   uint32
	MatchFinder MatchFinder
	Filters     FilterMode
}

// Inspect reads r as a sequence of archive blocks and calls fn once per
// block with its header and method-byte fields, skipping over (not
// decoding) the payload bytes. It stops at the first error or at fn
// returning a non-nil error, which Inspect then returns unwrapped.
func Inspect(r io.Reader, fn func(BlockInfo) error) error {
	for i := 0; ; i++ {
		h, err := readHeader(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		info := BlockInfo{
			Index:      i,
			Checksum:   h.checksum,
			PayloadLen: h.payloadLen,
			BlockSize:  h.blockSize,
		}
		if h.payloadLen > 0 {
			var mb [1]byte
			if _, err := io.ReadFull(r, mb[:]); err != nil {
				return jamerr.IO("short read on block payload")
			}
			info.MatchFinder, info.Filters = parseMethodByte(mb[0])
			if err := skip(r, int64(h.payloadLen)-1); err != nil {
				return err
			}
		}
		if err := fn(info); err != nil {
			return err
		}
	}
}

func skip(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if s, ok := r.(io.Seeker); ok {
		if _, err := s.Seek(n, io.SeekCurrent); err == nil {
			return nil
		}
	}
	_, err := io.CopyN(io.Discard, r, n)
	if err != nil {
		return jamerr.IO("short read skipping block payload")
	}
	return nil
}
