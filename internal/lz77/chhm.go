package lz77

import "github.com/cespare/xxhash/v2"

const (
	chhmHashBits = 16
	chhmHashSize = 1 << chhmHashBits
	// chhmModSize is the modulus used for the structure-width histogram;
	// kept prime-ish so that true periodic structure doesn't alias into a
	// handful of buckets.
	chhmModSize = 4099
)

// cyclicHashHistory is a fixed-size ring buffer of recently seen hashed
// values plus two histograms: History (how often each hash bucket has
// appeared in the current window) and ModDensity (how often each
// XOR-difference-modulo-chhmModSize has appeared across the whole run).
// It answers, in O(1), whether a candidate value recurs densely enough to
// be worth keeping as a token — the "anti-context" filter for modes 1
// and 2: BWT already clusters genuinely contextual redundancy, so only
// positional/non-Markovian recurrence (the kind this model detects)
// is worth spending a token on.
type cyclicHashHistory struct {
	buf           []uint32
	pos           int
	previousValue uint32

	history   []uint32
	modDensity []uint32

	structureWidth  int
	averageDensity  int
	uniqueDensities int
}

func newCyclicHashHistory(size int) *cyclicHashHistory {
	return &cyclicHashHistory{
		buf:            make([]uint32, size),
		history:        make([]uint32, chhmHashSize),
		modDensity:     make([]uint32, chhmModSize),
		structureWidth: 1,
	}
}

func chhmHash(value uint32) uint32 {
	var b [4]byte
	b[0] = byte(value)
	b[1] = byte(value >> 8)
	b[2] = byte(value >> 16)
	b[3] = byte(value >> 24)
	return uint32(xxhash.Sum64(b[:])) & (chhmHashSize - 1)
}

// update stacks value into the ring buffer, evicting the oldest entry's
// contribution to the hash histogram, and records the XOR-distance to the
// previous value into the structure-width histogram.
func (c *cyclicHashHistory) update(value uint32) {
	h := chhmHash(value)
	slot := c.pos % len(c.buf)
	old := c.buf[slot]

	c.buf[slot] = h
	c.history[h]++
	if c.pos >= len(c.buf) {
		c.history[old]--
	}

	diff := c.previousValue ^ value
	c.modDensity[int(diff)%chhmModSize]++
	c.previousValue = value
	c.pos++
}

// findPeaks decomposes value by repeatedly dividing by the learned
// structure width, returning true as soon as a subset lands in a
// disproportionately dense modDensity bucket.
func (c *cyclicHashHistory) findPeaks(value uint32) bool {
	reduce := c.structureWidth
	if reduce <= 1 {
		reduce = 2
	}
	div := c.averageDensity
	if div == 0 {
		div = 1
	}
	threshold := c.uniqueDensities / (div * div)
	k := value
	for k != 0 {
		if int(c.modDensity[int(k)%chhmModSize]) > threshold {
			return true
		}
		k /= uint32(reduce)
	}
	return false
}

// buildModel recomputes the structure width and average density from the
// accumulated modDensity histogram; called once per candidate-token
// batch.
func (c *cyclicHashHistory) buildModel() {
	total := 0
	zeros := 0
	for _, v := range c.modDensity {
		total += int(v)
		if v == 0 {
			zeros++
		}
	}
	if chhmModSize > zeros {
		c.averageDensity = total / (chhmModSize - zeros)
	} else {
		c.averageDensity = 0
	}
	c.uniqueDensities = chhmModSize - zeros

	max := c.modDensity[0]
	best := 0
	for i := 1; i < chhmModSize; i++ {
		if c.modDensity[i] > max {
			max = c.modDensity[i]
			best = i
		}
	}
	if best == 0 {
		c.structureWidth = 1
	} else {
		c.structureWidth = best
	}
}

// cleanModel clears the structure-width histogram and the learned model.
// The encoders do not call it, so modDensity accumulates over the whole
// run.
func (c *cyclicHashHistory) cleanModel() {
	c.averageDensity = 0
	for i := range c.modDensity {
		c.modDensity[i] = 0
	}
	c.structureWidth = 1
}
