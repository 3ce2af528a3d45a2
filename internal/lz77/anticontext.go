package lz77

// antiContextFilter wraps a cyclicHashHistory with the online accept/
// reject policy shared by modes 1 and 2: a candidate is always kept once
// it is long enough to be unambiguously worthwhile (>= DupeMatch), and
// otherwise only when it clears both a cost bar (compressible > 1) and
// the CHHM's density bar (findPeaks). The model is rebuilt from its
// accumulated histogram every candidateBufferSize candidates, so the
// density bar tightens as the run's statistics firm up.
type antiContextFilter struct {
	chhm *cyclicHashHistory
	seen int
}

func newAntiContextFilter(windowSize int) *antiContextFilter {
	return &antiContextFilter{chhm: newCyclicHashHistory(windowSize)}
}

func (f *antiContextFilter) accept(matchLen, literalLen, offset int) bool {
	if matchLen >= DupeMatch {
		f.observe(offset)
		return true
	}
	if matchLen < MinMatch {
		f.observe(offset)
		return false
	}
	peak := f.chhm.findPeaks(uint32(offset))
	f.observe(offset)
	return compressible(matchLen, literalLen, offset) > 1.0 && peak
}

func (f *antiContextFilter) observe(offset int) {
	f.chhm.update(uint32(offset))
	f.seen++
	if f.seen%candidateBufferSize == 0 {
		f.chhm.buildModel()
	}
}
