package checksum_test

import (
	"testing"

	"github.com/loxxous/Jampack/internal/checksum"
	"github.com/stretchr/testify/require"
)

func TestDeterministic(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, repeatedly")
	require.Equal(t, checksum.Sum(data), checksum.Sum(append([]byte{}, data...)))
}

func TestDistinctTrivialInputs(t *testing.T) {
	zeros16 := make([]byte, 16)
	zeros17 := make([]byte, 17)
	sums := map[uint32]string{}
	for name, in := range map[string][]byte{
		"empty":   {},
		"single":  {0x00},
		"zeros16": zeros16,
		"zeros17": zeros17,
	} {
		s := checksum.Sum(in)
		if prev, ok := sums[s]; ok {
			t.Fatalf("checksum collision between %q and %q: %08x", prev, name, s)
		}
		sums[s] = name
	}
}

func TestBitFlipChangesSum(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	base := checksum.Sum(data)
	for i := range data {
		flipped := append([]byte{}, data...)
		flipped[i] ^= 0x01
		require.NotEqual(t, base, checksum.Sum(flipped), "bit flip at byte %d undetected", i)
	}
}
