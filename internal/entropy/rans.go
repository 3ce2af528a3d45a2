package entropy

import "github.com/loxxous/Jampack/internal/jamerr"

// rANSLowerBound is the renormalization floor: a state is never allowed
// to drop below this value between symbols, matching spec.md's
// L = 1<<23.
const rANSLowerBound = 1 << 23

// numStates is the interleave factor: four independent rANS states are
// coded round-robin so adjacent symbols' dependency chains overlap,
// letting the compiler and CPU pipeline the integer division rANS
// needs on every symbol.
const numStates = 4

// encodeSymbols rANS-encodes syms[i] against model, mutating model with
// an update call after every symbol as if decoded in the same order, and
// returns the encoded byte stream.
func encodeSymbols(syms []int, m model) []byte {
	// The model the decoder consults for symbol k has already absorbed
	// updates from symbols 0..k-1. Walk forward once to capture each
	// symbol's (freq, start) under that history, then encode in reverse
	// using the captured values — the model itself is never queried
	// out of order.
	type params struct{ freq, start uint32 }
	captured := make([]params, len(syms))
	for k, sym := range syms {
		freq, start := m.freqAndStart(sym)
		captured[k] = params{freq, start}
		m.update(sym)
	}

	var states [numStates]uint32
	for i := range states {
		states[i] = rANSLowerBound
	}

	// Encoding must walk in reverse so that decoding, which must run
	// forward, reproduces the same round-robin state assignment and
	// renormalization timing.
	out := make([]byte, 0, len(syms)/2+64)
	for k := len(syms) - 1; k >= 0; k-- {
		sIdx := k % numStates
		freq, start := captured[k].freq, captured[k].start
		xMax := ((rANSLowerBound >> ProbBits) << 8) * freq
		for states[sIdx] >= xMax {
			out = append(out, byte(states[sIdx]))
			states[sIdx] >>= 8
		}
		states[sIdx] = ((states[sIdx]/freq)<<ProbBits) + (states[sIdx]%freq) + start
	}

	for i := numStates - 1; i >= 0; i-- {
		s := states[i]
		for b := 0; b < 4; b++ {
			out = append(out, byte(s))
			s >>= 8
		}
	}
	reverseBytes(out)
	return out
}

// decodeSymbols reconstructs n symbols from buf using model, returning
// the symbols and the number of bytes of buf consumed.
func decodeSymbols(buf []byte, n int, m model) ([]int, int, error) {
	if len(buf) < numStates*4 {
		return nil, 0, jamerr.Format("entropy: rANS stream shorter than state header")
	}
	var states [numStates]uint32
	pos := 0
	for i := 0; i < numStates; i++ {
		states[i] = uint32(buf[pos])<<24 | uint32(buf[pos+1])<<16 | uint32(buf[pos+2])<<8 | uint32(buf[pos+3])
		pos += 4
	}

	syms := make([]int, n)
	for k := 0; k < n; k++ {
		sIdx := k % numStates
		slot := states[sIdx] & (ProbScale - 1)
		sym, freq, start := m.symbolAt(slot)
		states[sIdx] = freq*(states[sIdx]>>ProbBits) + slot - start
		for states[sIdx] < rANSLowerBound {
			if pos >= len(buf) {
				return nil, 0, jamerr.Format("entropy: rANS stream truncated during renormalization")
			}
			states[sIdx] = (states[sIdx] << 8) | uint32(buf[pos])
			pos++
		}
		syms[k] = sym
		m.update(sym)
	}
	return syms, pos, nil
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
