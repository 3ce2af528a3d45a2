package lz77

import "github.com/cespare/xxhash/v2"

// hash4 hashes a 4-byte window for mode 1's fixed-window hash table.
func hash4(b []byte) uint32 {
	return uint32(xxhash.Sum64(b))
}

// dedupeHashMul and dedupeShift implement the original's rolling-context
// hash: a single accumulator cxt is advanced one byte at a time by
// cxt = (cxt<<dedupeShift) ^ b, where b is always the byte DupeMatch
// positions ahead of the table entry being recorded. Hashing the
// accumulator instead of a fixed window lets one bucket recognize long
// repeats anywhere in their DupeMatch-byte lookahead, not just an exact
// 4-byte prefix. DupeMatch (256) exceeds 32, so the shift is always 1.
const (
	dedupeHashMul = 0x9E3779B1
	dedupeShift   = 1
)

// contextHash hashes the rolling context accumulator into a table index.
func contextHash(cxt uint32) uint32 {
	return (cxt * dedupeHashMul) >> (32 - HashBits)
}

// lookaheadByte returns the byte at p, or 0 if p falls outside src; the
// rolling hash reads DupeMatch bytes ahead of the position it is
// recording, which runs past the end of src near the tail of the block.
func lookaheadByte(src []byte, p int) byte {
	if p < 0 || p >= len(src) {
		return 0
	}
	return src[p]
}

// encodeDedupe implements mode 0: a single rolling-context hash table,
// used only to remove long exact duplicates (>= DupeMatch) before the
// rest of the pipeline runs. A candidate match is first extended forward
// from the hash hit, then extended backward over literals already
// pending in the current run (a repeat can start partway through a run
// of bytes the forward scan from the hash position would otherwise emit
// as literals).
func encodeDedupe(dst, src []byte) []byte {
	n := len(src)
	table := make([]int32, hashSize)
	for i := range table {
		table[i] = -1
	}

	var cxt uint32
	pos := 0
	lit := 0
	for pos < n {
		matched := false
		back, length, offset := 0, 0, 0

		h := contextHash(cxt)
		if cand := table[h]; cand >= 0 {
			ppos, cpos := int(cand), pos
			var mb, mf int
			for mb < lit && ppos-mb-1 > 0 && cpos-mb-1 >= 0 && src[ppos-mb-1] == src[cpos-mb-1] {
				mb++
			}
			for cpos+mf+MinMatch < n && src[ppos+mf] == src[cpos+mf] {
				mf++
			}
			if mf+mb >= DupeMatch {
				matched = true
				length, back, offset = mf, mb, cpos-ppos
			}
		}

		if matched {
			length += back
			lit -= back
			pos -= back
			dst = writeToken(dst, token{matchLen: length, literalLen: lit, offset: offset})
			dst = append(dst, src[pos-lit:pos]...)
			for i := 0; i < length; i++ {
				table[contextHash(cxt)] = int32(pos)
				cxt = (cxt << dedupeShift) ^ uint32(lookaheadByte(src, pos+DupeMatch+i))
			}
			pos += length
			lit = 0
			continue
		}

		table[h] = int32(pos)
		cxt = (cxt << dedupeShift) ^ uint32(lookaheadByte(src, pos+DupeMatch))
		pos++
		lit++
	}
	dst = writeToken(dst, token{})
	dst = append(dst, src[pos-lit:]...)
	return dst
}

// extendForward returns how many consecutive bytes match starting at a
// and b respectively, stopping at limit. Shared by modes 1 and 2, whose
// candidates come from a hash chain / suffix-array neighbor rather than
// the rolling-context scheme mode 0 uses.
func extendForward(src []byte, a, b, limit int) int {
	n := 0
	for b+n < limit && src[a+n] == src[b+n] {
		n++
	}
	return n
}
