// Package entropy implements the final compression stage: a sorted-rank
// recoding of the (typically BWT-permuted) input bytes, RLE0 expansion
// of the resulting zero-heavy rank stream, and a two-level structured
// rANS coder over the expanded symbols. Each sub-block is framed with
// its own rank frequency table and length fields so sub-blocks can be
// decoded independently.
package entropy

import "github.com/loxxous/Jampack/internal/varint"

// EncodeBlock entropy-codes one sub-block of src and returns the framed
// bytes: rank_freqs[256]|olen|clen|rlen|rans_bytes[clen].
func EncodeBlock(src []byte) []byte {
	var freqs [256]uint64
	for _, b := range src {
		freqs[b]++
	}

	rc := newRankCoder(freqs)
	ranks := make([]int, len(src))
	for i, b := range src {
		ranks[i] = rc.encode(b)
	}

	rleSyms := rle0Encode(ranksToBytes(ranks))
	ransBytes := twoLevelEncode(rleSyms)

	var out []byte
	for _, f := range freqs {
		out = varint.Encode(out, f)
	}
	out = varint.Encode(out, uint64(len(src)))
	out = varint.Encode(out, uint64(len(ransBytes)))
	out = varint.Encode(out, uint64(len(rleSyms)))
	out = append(out, ransBytes...)
	return out
}

// DecodeBlock reverses EncodeBlock, returning the decoded bytes and the
// number of bytes of buf consumed.
func DecodeBlock(buf []byte) ([]byte, int, error) {
	orig := buf
	var freqs [256]uint64
	for i := range freqs {
		f, n, err := varint.Decode(buf)
		if err != nil {
			return nil, 0, err
		}
		freqs[i] = f
		buf = buf[n:]
	}
	olen, n, err := varint.Decode(buf)
	if err != nil {
		return nil, 0, err
	}
	buf = buf[n:]
	clen, n, err := varint.Decode(buf)
	if err != nil {
		return nil, 0, err
	}
	buf = buf[n:]
	rlen, n, err := varint.Decode(buf)
	if err != nil {
		return nil, 0, err
	}
	buf = buf[n:]
	if uint64(len(buf)) < clen {
		return nil, 0, errTruncated
	}

	rleSyms, err := twoLevelDecode(buf[:clen], int(rlen))
	if err != nil {
		return nil, 0, err
	}
	rankBytes, err := rle0Decode(rleSyms, int(olen))
	if err != nil {
		return nil, 0, err
	}

	rc := newRankCoder(freqs)
	out := make([]byte, olen)
	for i, rb := range rankBytes {
		out[i] = rc.decode(int(rb))
	}

	consumed := len(orig) - len(buf) + int(clen)
	return out, consumed, nil
}

// ranksToBytes packs rank values (each in [0,255]) into a byte slice for
// rle0Encode, which operates on bytes.
func ranksToBytes(ranks []int) []byte {
	b := make([]byte, len(ranks))
	for i, r := range ranks {
		b[i] = byte(r)
	}
	return b
}
