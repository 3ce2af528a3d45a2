package entropy

import "github.com/loxxous/Jampack/internal/varint"

// exponentBounds partitions the RLE0 symbol range [0,256] into 8
// exponentially widening buckets, per spec.md's structured model: the
// first level codes which bucket a symbol falls in (an 8-symbol
// alphabet, cheap to model adaptively), the second level codes the
// symbol's offset within that bucket (the mantissa).
var exponentBounds = [9]int{0, 2, 4, 8, 16, 32, 64, 128, 257}

const numBuckets = len(exponentBounds) - 1

// adaptiveBuckets is how many of the low buckets use the fast-adapting
// Adaptive CDF model; the wider, rarer buckets use the quasi-static
// model instead, matching spec.md's "ModelSwitchThreshold=2".
const adaptiveBuckets = 2

func bucketOf(v int) (bucket, mantissa int) {
	for b := numBuckets - 1; b >= 0; b-- {
		if v >= exponentBounds[b] {
			return b, v - exponentBounds[b]
		}
	}
	return 0, v
}

func bucketWidth(b int) int {
	return exponentBounds[b+1] - exponentBounds[b]
}

// twoLevelEncode rANS-codes a stream of RLE0 symbols (each in [0,256])
// using the bucket/mantissa split, and returns the encoded bytes.
func twoLevelEncode(syms []uint16) []byte {
	n := len(syms)
	bucketModel := newAdaptiveModel(numBuckets)
	mantModels := make([]model, numBuckets)
	for b := 0; b < numBuckets; b++ {
		w := bucketWidth(b)
		if w == 1 {
			mantModels[b] = nil
			continue
		}
		if b < adaptiveBuckets {
			mantModels[b] = newAdaptiveModel(w)
		} else {
			mantModels[b] = newQuasiModel(w)
		}
	}

	buckets := make([]int, n)
	byBucket := make([][]int, numBuckets)
	for i, s := range syms {
		b, m := bucketOf(int(s))
		buckets[i] = b
		if mantModels[b] != nil {
			byBucket[b] = append(byBucket[b], m)
		}
	}

	bucketStream := encodeSymbols(buckets, bucketModel)

	var out []byte
	out = varint.Encode(out, uint64(len(bucketStream)))
	out = append(out, bucketStream...)
	for b := 0; b < numBuckets; b++ {
		if mantModels[b] == nil {
			continue
		}
		ms := encodeSymbols(byBucket[b], mantModels[b])
		out = varint.Encode(out, uint64(len(byBucket[b])))
		out = varint.Encode(out, uint64(len(ms)))
		out = append(out, ms...)
	}
	return out
}

// twoLevelDecode reconstructs n RLE0 symbols from an encoded stream
// produced by twoLevelEncode.
func twoLevelDecode(buf []byte, n int) ([]uint16, error) {
	bucketModel := newAdaptiveModel(numBuckets)
	mantModels := make([]model, numBuckets)
	for b := 0; b < numBuckets; b++ {
		w := bucketWidth(b)
		if w == 1 {
			continue
		}
		if b < adaptiveBuckets {
			mantModels[b] = newAdaptiveModel(w)
		} else {
			mantModels[b] = newQuasiModel(w)
		}
	}

	bucketStreamLen, consumed, err := varint.Decode(buf)
	if err != nil {
		return nil, err
	}
	buf = buf[consumed:]
	if uint64(len(buf)) < bucketStreamLen {
		return nil, errTruncated
	}
	buckets, _, err := decodeSymbols(buf[:bucketStreamLen], n, bucketModel)
	if err != nil {
		return nil, err
	}
	buf = buf[bucketStreamLen:]

	mantissas := make([][]int, numBuckets)
	for b := 0; b < numBuckets; b++ {
		if mantModels[b] == nil {
			continue
		}
		cnt, c1, err := varint.Decode(buf)
		if err != nil {
			return nil, err
		}
		buf = buf[c1:]
		mlen, c2, err := varint.Decode(buf)
		if err != nil {
			return nil, err
		}
		buf = buf[c2:]
		if uint64(len(buf)) < mlen {
			return nil, errTruncated
		}
		ms, _, err := decodeSymbols(buf[:mlen], int(cnt), mantModels[b])
		if err != nil {
			return nil, err
		}
		mantissas[b] = ms
		buf = buf[mlen:]
	}

	cursor := make([]int, numBuckets)
	out := make([]uint16, n)
	for i, b := range buckets {
		if bucketWidth(b) == 1 {
			out[i] = uint16(exponentBounds[b])
			continue
		}
		m := mantissas[b][cursor[b]]
		cursor[b]++
		out[i] = uint16(exponentBounds[b] + m)
	}
	return out, nil
}
