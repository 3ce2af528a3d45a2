// Package varint implements the carry-biased LEB128 variable-length
// integer encoding used throughout the block format: match tokens, rANS
// sub-block headers, and the sorted-rank frequency tables. Unlike the
// textbook LEB128 scheme, each encoded length has a bias subtracted on
// encode and added back on decode, so each longer length continues the
// value range where the shorter one ends instead of re-covering small
// values. Encode always picks the shortest length; the largest payload
// of one length decodes to the same value as the smallest payload of the
// next (e.g. 0xFF and 0x00 0x80 both decode to 127).
package varint

import "github.com/loxxous/Jampack/internal/jamerr"

// biases[k] is the value added back to a (k+2)-byte decode (i.e. a decode
// that consumed k continuation bytes followed by one terminator byte).
// biases[0] corresponds to a 2-byte encoding, and so on up to the 5-byte
// cap. These are the original encoder's constants, each one less than the
// naive cumulative power-of-two sum per extra byte of continuation.
var biases = [4]uint64{
	127,       // (1<<7) - 1
	16510,     // (1<<7)+(1<<14) - 2
	2113661,   // (1<<7)+(1<<14)+(1<<21) - 3
	270549116, // (1<<7)+(1<<14)+(1<<21)+(1<<28) - 4
}

// MaxBytes is the hard cap on an encoded integer's length. A continuation
// chain longer than this is always a corrupt or adversarial stream.
const MaxBytes = 5

// Size returns the number of bytes Encode would write for v.
func Size(v uint64) int {
	switch {
	case v < biases[0]:
		return 1
	case v < biases[1]:
		return 2
	case v < biases[2]:
		return 3
	case v < biases[3]:
		return 4
	default:
		return 5
	}
}

// Encode appends the carry-biased LEB128 encoding of v to buf and returns
// the extended slice.
func Encode(buf []byte, v uint64) []byte {
	n := Size(v)
	if n > 1 {
		v -= biases[n-2]
	}
	// The low 7 bits of each of the first n-1 bytes carry payload, high bit
	// clear; the final byte carries the low 7 bits with the high bit set
	// as a terminator, written most-significant-byte first.
	var tmp [MaxBytes]byte
	tmp[n-1] = byte(v&0x7f) | 0x80
	v >>= 7
	for i := n - 2; i >= 0; i-- {
		tmp[i] = byte(v & 0x7f)
		v >>= 7
	}
	return append(buf, tmp[:n]...)
}

// Decode reads one carry-biased LEB128 integer from the front of buf,
// returning the value and the number of bytes consumed. It returns an
// InvariantError if the continuation chain exceeds MaxBytes bytes without
// terminating, and io.ErrUnexpectedEOF equivalent (via jamerr) if buf runs
// out first.
func Decode(buf []byte) (uint64, int, error) {
	var val uint64
	d := 0
	for {
		if d >= MaxBytes {
			return 0, 0, jamerr.Invariant("varint: continuation chain exceeds 5 bytes")
		}
		if d >= len(buf) {
			return 0, 0, jamerr.IO("varint: truncated integer")
		}
		if buf[d]&0x80 != 0 {
			break
		}
		val = (val << 7) | uint64(buf[d])
		d++
	}
	val = (val << 7) | uint64(buf[d]&0x7f)
	if d > 0 {
		val += biases[d-1]
	}
	return val, d + 1, nil
}
