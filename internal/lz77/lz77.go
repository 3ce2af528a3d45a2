// Package lz77 implements the anti-context LZ77 coder: it only emits a
// match token when doing so clearly beats leaving the bytes as literals,
// or when the match is long/positional enough that the later
// Burrows-Wheeler stage could never cluster it on its own. It runs in one
// of three match-finder modes (dedupe, hash-chain, suffix-array), all of
// which share the same token format and decoder.
package lz77

import (
	"github.com/loxxous/Jampack/internal/jamerr"
	"github.com/loxxous/Jampack/internal/varint"
)

// Mode selects the match-finding strategy used by Encode.
type Mode int

const (
	// ModeDedupe removes only long, exact repeats (the "Dedupe" stage of
	// the pipeline, run early, before Filter/LocalPrefix).
	ModeDedupe Mode = iota
	// ModeHashChain walks a bounded hash-chain, scoring candidates and
	// filtering them through the cyclic hashed history model (the
	// "anti-context" stage, run just before BWT).
	ModeHashChain
	// ModeSuffixArray scans suffix-array neighbors for longer matches,
	// same peak filtering as ModeHashChain.
	ModeSuffixArray
)

const (
	// MinMatch is the shortest match length ever worth tokenizing.
	MinMatch = 4
	// DupeMatch is the minimum length mode 0 requires before emitting a
	// token; it exists purely to remove exact duplication, leaving
	// shorter redundancy for the later stages to exploit.
	DupeMatch = 256
	// HashBits sizes mode 0's single rolling-context hash table.
	HashBits = 20
	hashSize = 1 << HashBits
	// ChainHashBits sizes mode 1's hash table; ChainDepth bounds how far
	// back a single chain walk goes.
	ChainHashBits = 18
	chainHashSize = 1 << ChainHashBits
	ChainDepth    = 32
	// candidateBufferSize is the CHHM ring-buffer size for modes 1/2 and
	// the number of candidates between CHHM model rebuilds. Candidates
	// are not batched: each one is accepted or rejected as it is found.
	candidateBufferSize = 1 << 16
	// saNeighborRadius bounds how far mode 2 scans around a position's
	// suffix-array rank.
	saNeighborRadius = 1 << 12
)

// token is the internal match-or-literal-run record; offset 0 is the
// stream terminator.
type token struct {
	matchLen   int
	literalLen int
	offset     int
}

// writeToken appends the wire encoding of tok to dst: a 1-byte header
// packing the low bits of match length and literal count, the LEB128
// offset, and LEB128 extensions when either field saturates its header
// bits.
func writeToken(dst []byte, tok token) []byte {
	m := tok.matchLen - MinMatch
	if m < 0 {
		m = 0
	}
	mHeader := m
	if mHeader > 31 {
		mHeader = 31
	}
	lHeader := tok.literalLen
	if lHeader > 7 {
		lHeader = 7
	}
	header := byte(mHeader<<3) | byte(lHeader)
	dst = append(dst, header)
	dst = varint.Encode(dst, uint64(tok.offset))
	if mHeader == 31 {
		dst = varint.Encode(dst, uint64(m-31))
	}
	if lHeader == 7 {
		dst = varint.Encode(dst, uint64(tok.literalLen-7))
	}
	return dst
}

// readToken reads one token from the front of src, returning it and the
// number of bytes consumed.
func readToken(src []byte) (token, int, error) {
	if len(src) < 1 {
		return token{}, 0, jamerr.Format("lz77: truncated token header")
	}
	header := src[0]
	mHeader := int(header >> 3)
	lHeader := int(header & 0x7)
	n := 1
	offset, on, err := varint.Decode(src[n:])
	if err != nil {
		return token{}, 0, err
	}
	n += on

	match := 0
	if offset != 0 {
		match = mHeader + MinMatch
		if mHeader == 31 {
			ext, en, err := varint.Decode(src[n:])
			if err != nil {
				return token{}, 0, err
			}
			n += en
			match += int(ext)
		}
	}

	literal := lHeader
	if lHeader == 7 {
		ext, en, err := varint.Decode(src[n:])
		if err != nil {
			return token{}, 0, err
		}
		n += en
		literal += int(ext)
	}
	return token{matchLen: match, literalLen: literal, offset: int(offset)}, n, nil
}

// compressible scores a candidate match: how many raw bytes it removes
// per byte spent encoding it. Larger is better; <= 1 means the token
// costs as much as leaving the bytes as literals.
func compressible(matchLen, literalLen, offset int) float64 {
	if matchLen < MinMatch {
		return 0
	}
	tok := token{matchLen: matchLen, literalLen: literalLen, offset: offset}
	cost := len(writeToken(nil, tok))
	if cost == 0 {
		return 0
	}
	return float64(matchLen) / float64(cost)
}

// fastCopyOverlap performs a left-to-right byte copy from dst[pos-offset:]
// to dst[pos:pos+n], which is the only safe direction when offset < n
// (the copied region legitimately overlaps its source, e.g. run-length
// patterns).
func fastCopyOverlap(dst []byte, pos, offset, n int) {
	src := pos - offset
	for i := 0; i < n; i++ {
		dst[pos+i] = dst[src+i]
	}
}

// Encode runs the configured match finder over src and writes the
// resulting token stream (plus trailing raw literals) to dst.
func Encode(dst, src []byte, mode Mode) []byte {
	switch mode {
	case ModeDedupe:
		return encodeDedupe(dst, src)
	case ModeHashChain:
		return encodeHashChain(dst, src)
	case ModeSuffixArray:
		return encodeSuffixArray(dst, src)
	default:
		return encodeDedupe(dst, src)
	}
}

// Decode reverses Encode: mode is irrelevant to decoding since every mode
// shares the same token format.
func Decode(dst, src []byte, origLen int) ([]byte, error) {
	dst = dst[:0]
	for len(dst) < origLen {
		tok, n, err := readToken(src)
		if err != nil {
			return nil, err
		}
		src = src[n:]
		if tok.offset == 0 {
			// Terminator: remaining bytes up to origLen are raw tail
			// literals (tok.literalLen is not used here; the encoders
			// write the terminator with a zero literal count and put the
			// whole tail after it).
			remaining := origLen - len(dst)
			if len(src) < remaining {
				return nil, jamerr.Format("lz77: truncated tail literals")
			}
			dst = append(dst, src[:remaining]...)
			return dst, nil
		}
		if tok.literalLen > 0 {
			if len(src) < tok.literalLen {
				return nil, jamerr.Format("lz77: truncated literal run")
			}
			dst = append(dst, src[:tok.literalLen]...)
			src = src[tok.literalLen:]
		}
		if tok.offset > len(dst) {
			return nil, jamerr.Invariant("lz77: match offset exceeds decoded length")
		}
		pos := len(dst)
		dst = append(dst, make([]byte, tok.matchLen)...)
		fastCopyOverlap(dst, pos, tok.offset, tok.matchLen)
	}
	return dst, nil
}
