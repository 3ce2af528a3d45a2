// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package jampack

import (
	"encoding/binary"
	"io"

	"github.com/loxxous/Jampack/internal/bwt"
	"github.com/loxxous/Jampack/internal/jamerr"
	"github.com/loxxous/Jampack/internal/varint"
)

// blockMagic opens every archive block.
var blockMagic = [3]byte{0x4A, 0x41, 0x4D} // "JAM"

// headerSize is the fixed-size portion of a block: magic, checksum,
// payload length, block size.
const headerSize = 3 + 4 + 4 + 4

// blockHeader is the 15-byte record that precedes every block's payload.
type blockHeader struct {
	checksum   uint32
	payloadLen uint32
	blockSize  uint32
}

func writeHeader(w io.Writer, h blockHeader) error {
	var buf [headerSize]byte
	copy(buf[0:3], blockMagic[:])
	binary.BigEndian.PutUint32(buf[3:7], h.checksum)
	binary.BigEndian.PutUint32(buf[7:11], h.payloadLen)
	binary.BigEndian.PutUint32(buf[11:15], h.blockSize)
	_, err := w.Write(buf[:])
	return err
}

// readHeader reads and validates one block header. io.EOF (unwrapped) is
// returned when the stream ends cleanly between blocks.
func readHeader(r io.Reader) (blockHeader, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF {
			return blockHeader{}, io.EOF
		}
		return blockHeader{}, jamerr.IO("short read on block header")
	}
	if buf[0] != blockMagic[0] || buf[1] != blockMagic[1] || buf[2] != blockMagic[2] {
		return blockHeader{}, jamerr.Format("bad block magic")
	}
	h := blockHeader{
		checksum:   binary.BigEndian.Uint32(buf[3:7]),
		payloadLen: binary.BigEndian.Uint32(buf[7:11]),
		blockSize:  binary.BigEndian.Uint32(buf[11:15]),
	}
	if h.blockSize < MinBlockSize || h.blockSize > MaxBlockSize {
		return blockHeader{}, jamerr.Format("declared block_size out of range")
	}
	return h, nil
}

// encodeTrailer packages the lengths needed to reverse the length-
// changing stages (dedupe LZ77, Filter, and, when enabled, the
// anti-context LZ77 pass) together with the BWT forward-transform's own
// trailer (strand-seed indices and the unaligned tail) into one byte
// stream, which is what actually gets rank-coded, RLE0'd and rANS-coded.
//
// origLen is the final decompressed block length; dedupedLen is the
// length of the dedupe LZ77 pass's output, i.e. what Filter.Decode must
// be told to bound its sub-block loop (Filter's own framing adds a
// 2-byte {type,width} header per 64 KiB sub-block, so this can't be
// recovered from the filtered length alone); preLZ77Len is the length
// of the bytes fed into the (optional) anti-context LZ77 pass, i.e. the
// output length of Filter/LocalPrefix.
func encodeTrailer(origLen, dedupedLen, preLZ77Len int, r bwt.Result) []byte {
	buf := varint.Encode(nil, uint64(origLen))
	buf = varint.Encode(buf, uint64(dedupedLen))
	buf = varint.Encode(buf, uint64(preLZ77Len))
	buf = varint.Encode(buf, uint64(r.NLen))
	buf = varint.Encode(buf, uint64(len(r.Tail)))
	buf = append(buf, r.Tail...)
	for _, idx := range r.Indices {
		buf = varint.Encode(buf, uint64(idx))
	}
	buf = append(buf, r.BWT...)
	return buf
}

// decodeTrailer is the inverse of encodeTrailer.
func decodeTrailer(buf []byte) (origLen, dedupedLen, preLZ77Len int, r bwt.Result, err error) {
	v, n, err := varint.Decode(buf)
	if err != nil {
		return 0, 0, 0, bwt.Result{}, err
	}
	origLen = int(v)
	buf = buf[n:]

	v, n, err = varint.Decode(buf)
	if err != nil {
		return 0, 0, 0, bwt.Result{}, err
	}
	dedupedLen = int(v)
	buf = buf[n:]

	v, n, err = varint.Decode(buf)
	if err != nil {
		return 0, 0, 0, bwt.Result{}, err
	}
	preLZ77Len = int(v)
	buf = buf[n:]

	v, n, err = varint.Decode(buf)
	if err != nil {
		return 0, 0, 0, bwt.Result{}, err
	}
	r.NLen = int(v)
	buf = buf[n:]

	v, n, err = varint.Decode(buf)
	if err != nil {
		return 0, 0, 0, bwt.Result{}, err
	}
	tailLen := int(v)
	buf = buf[n:]

	if len(buf) < tailLen {
		return 0, 0, 0, bwt.Result{}, jamerr.Format("trailer: tail shorter than declared")
	}
	r.Tail = append([]byte{}, buf[:tailLen]...)
	buf = buf[tailLen:]

	for i := range r.Indices {
		v, n, err = varint.Decode(buf)
		if err != nil {
			return 0, 0, 0, bwt.Result{}, err
		}
		r.Indices[i] = int32(v)
		buf = buf[n:]
	}

	if len(buf) != r.NLen {
		return 0, 0, 0, bwt.Result{}, jamerr.Format("trailer: BWT payload length mismatch")
	}
	r.BWT = buf
	return origLen, dedupedLen, preLZ77Len, r, nil
}
