package lz77

// encodeHashChain implements mode 1: a hash table plus a per-position
// chain of earlier occupants of the same bucket, walked up to ChainDepth
// deep. Every candidate match is scored and passed through the
// anti-context filter before being kept, so only matches that are either
// unambiguously long or recur densely enough to matter end up as tokens.
func encodeHashChain(dst, src []byte) []byte {
	n := len(src)
	table := make([]int32, chainHashSize)
	chain := make([]int32, n)
	for i := range table {
		table[i] = -1
	}
	filter := newAntiContextFilter(candidateBufferSize)

	literalStart := 0
	i := 0
	for i+4 <= n {
		h := hash4(src[i:i+4]) & (chainHashSize - 1)
		cand := table[h]
		chain[i] = cand
		table[h] = int32(i)

		bestLen, bestPos := 0, -1
		depth := 0
		for j := cand; j >= 0 && depth < ChainDepth; j, depth = chain[j], depth+1 {
			l := extendForward(src, int(j), i, n)
			if l > bestLen {
				bestLen = l
				bestPos = int(j)
			}
		}

		if bestPos >= 0 && bestLen >= MinMatch {
			offset := i - bestPos
			literalLen := i - literalStart
			if filter.accept(bestLen, literalLen, offset) {
				dst = writeToken(dst, token{matchLen: bestLen, literalLen: literalLen, offset: offset})
				dst = append(dst, src[literalStart:i]...)
				i += bestLen
				literalStart = i
				continue
			}
		}
		i++
	}
	dst = writeToken(dst, token{})
	dst = append(dst, src[literalStart:]...)
	return dst
}
