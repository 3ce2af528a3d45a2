package entropy

import "github.com/loxxous/Jampack/internal/jamerr"

// rle0Encode expands zero-runs into a prefix-free binary code and shifts
// every nonzero byte up by one, so the resulting alphabet never collides
// a literal with a run-length bit: literals land in [2,256], run bits
// are 0 or 1.
//
// A run of length n is coded as the binary expansion of n+1 with its
// leading (always-set) bit omitted, most-significant bit first. This is
// the same zero-run code the original rle.cpp uses.
func rle0Encode(src []byte) []uint16 {
	out := make([]uint16, 0, len(src))
	i := 0
	for i < len(src) {
		if src[i] != 0 {
			out = append(out, uint16(src[i])+1)
			i++
			continue
		}
		run := 1
		for i+run < len(src) && src[i+run] == 0 {
			run++
		}
		i += run
		l := run + 1
		bits := bitLen(l) - 1
		for shift := bits - 1; shift >= 0; shift-- {
			out = append(out, uint16((l>>uint(shift))&1))
		}
	}
	return out
}

// rle0Decode is the inverse of rle0Encode. realLen is the expected
// decoded length, used as a corruption check.
func rle0Decode(in []uint16, realLen int) ([]byte, error) {
	out := make([]byte, 0, realLen)
	i := 0
	for i < len(in) {
		if in[i] > 1 {
			out = append(out, byte(in[i]-1))
			i++
			continue
		}
		l := 1
		for i < len(in) && in[i] <= 1 {
			l = (l << 1) | int(in[i])
			i++
		}
		run := l - 1
		for ; run > 0; run-- {
			out = append(out, 0)
		}
	}
	if len(out) != realLen {
		return nil, jamerr.Integrity("entropy: rle0 decoded length mismatch")
	}
	return out, nil
}

func bitLen(v int) int {
	n := 0
	for v > 0 {
		v >>= 1
		n++
	}
	return n
}
