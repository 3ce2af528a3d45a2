package entropy

// ProbBits is the rANS coder's precision for every model in this
// package: spec.md fixes the stream's own renormalization precision at
// 15 bits, and this implementation uses the same precision for each
// model's cumulative-frequency table rather than plumbing a second,
// model-specific precision through the coder.
const (
	ProbBits  = 15
	ProbScale = 1 << ProbBits
)

// model is the interface the rANS coder needs from either the adaptive
// or the quasi-static model: a cumulative-frequency table lookup by
// symbol or by decoded slot, and a post-symbol update hook.
type model interface {
	size() int
	freqAndStart(sym int) (freq, start uint32)
	symbolAt(slot uint32) (sym int, freq, start uint32)
	update(sym int)
}

// adaptiveModel is the Adaptive CDF model from spec.md §3/§4.7: its
// cumulative table is nudged toward the one-hot distribution of the
// observed symbol every step, shifted by rate bits.
type adaptiveModel struct {
	cdf  []uint32 // length n+1, cdf[0]=0, cdf[n]=ProbScale
	rate uint
}

const adaptiveRate = 5

func newAdaptiveModel(n int) *adaptiveModel {
	m := &adaptiveModel{cdf: make([]uint32, n+1), rate: adaptiveRate}
	for i := range m.cdf {
		m.cdf[i] = uint32(i) * ProbScale / uint32(n)
	}
	m.cdf[0] = 0
	m.cdf[n] = ProbScale
	return m
}

func (m *adaptiveModel) size() int { return len(m.cdf) - 1 }

func (m *adaptiveModel) freqAndStart(sym int) (uint32, uint32) {
	return m.cdf[sym+1] - m.cdf[sym], m.cdf[sym]
}

func (m *adaptiveModel) symbolAt(slot uint32) (int, uint32, uint32) {
	// Alphabets here are small (at most 129 entries), so linear search
	// is cheap and avoids a second sorted index structure.
	for sym := len(m.cdf) - 2; sym >= 0; sym-- {
		if slot >= m.cdf[sym] {
			return sym, m.cdf[sym+1] - m.cdf[sym], m.cdf[sym]
		}
	}
	return 0, m.cdf[1], m.cdf[0]
}

func (m *adaptiveModel) update(sym int) {
	for i := 1; i < len(m.cdf)-1; i++ {
		var target uint32
		if i > sym {
			target = ProbScale
		}
		m.cdf[i] = uint32(int32(m.cdf[i]) + (int32(target)-int32(m.cdf[i]))>>m.rate)
	}
	m.fixup()
}

// fixup enforces invariants 1 and 2: the endpoints stay pinned at 0 and
// ProbScale, and every symbol keeps at least one count of probability
// mass so a symbol observed now can always be decoded later.
func (m *adaptiveModel) fixup() {
	m.cdf[0] = 0
	n := len(m.cdf) - 1
	for i := 1; i < n; i++ {
		if m.cdf[i] <= m.cdf[i-1] {
			m.cdf[i] = m.cdf[i-1] + 1
		}
	}
	if m.cdf[n-1] >= ProbScale {
		// Extremely unlikely given the alphabet sizes in play, but keep
		// the table well-formed rather than let it invert.
		m.cdf[n-1] = ProbScale - 1
	}
	m.cdf[n] = ProbScale
}

// quasiModel is the quasi-static model from spec.md §3/§4.7: frequency
// counts accumulate until a threshold is hit, then the table rescales to
// ProbScale and the threshold doubles, up to UpdateRate.
type quasiModel struct {
	counts []uint32
	cum    []uint32 // cached normalized table, length n+1
	seen   uint32
	exp    uint32
}

const (
	quasiInitialExp = 256
	quasiUpdateRate = 65536
)

func newQuasiModel(n int) *quasiModel {
	m := &quasiModel{counts: make([]uint32, n), cum: make([]uint32, n+1), exp: quasiInitialExp}
	for i := range m.counts {
		m.counts[i] = 1
	}
	m.rescale()
	return m
}

func (m *quasiModel) size() int { return len(m.counts) }

func (m *quasiModel) freqAndStart(sym int) (uint32, uint32) {
	return m.cum[sym+1] - m.cum[sym], m.cum[sym]
}

func (m *quasiModel) symbolAt(slot uint32) (int, uint32, uint32) {
	for sym := len(m.cum) - 2; sym >= 0; sym-- {
		if slot >= m.cum[sym] {
			return sym, m.cum[sym+1] - m.cum[sym], m.cum[sym]
		}
	}
	return 0, m.cum[1], m.cum[0]
}

func (m *quasiModel) update(sym int) {
	m.counts[sym]++
	m.seen++
	if m.seen >= m.exp {
		m.rescale()
		m.seen = 0
		if m.exp < quasiUpdateRate {
			m.exp *= 2
			if m.exp > quasiUpdateRate {
				m.exp = quasiUpdateRate
			}
		}
	}
}

// rescale normalizes counts to ProbScale: every symbol with a nonzero
// count keeps at least one count of mass, and the rounding remainder is
// absorbed by the most frequent symbol (the "stretch and fit"
// normalization from the original quasi-static model).
func (m *quasiModel) rescale() {
	n := len(m.counts)
	var total uint64
	for _, c := range m.counts {
		total += uint64(c)
	}
	scaled := make([]uint32, n)
	var sum uint32
	maxSym, maxCount := 0, uint32(0)
	for i, c := range m.counts {
		f := uint32(uint64(c) * ProbScale / total)
		if f == 0 && c > 0 {
			f = 1
		}
		scaled[i] = f
		sum += f
		if c > maxCount {
			maxCount = c
			maxSym = i
		}
	}
	if sum != ProbScale {
		diff := int64(ProbScale) - int64(sum)
		newVal := int64(scaled[maxSym]) + diff
		if newVal < 1 {
			newVal = 1
		}
		scaled[maxSym] = uint32(newVal)
	}
	m.cum[0] = 0
	acc := uint32(0)
	for i, f := range scaled {
		acc += f
		m.cum[i+1] = acc
	}
	// Absorb any residual rounding drift into the final boundary so the
	// table always sums to exactly ProbScale.
	m.cum[n] = ProbScale
}
