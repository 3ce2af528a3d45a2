package filter_test

import (
	"math/rand"
	"testing"

	"github.com/loxxous/Jampack/internal/filter"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, data []byte, mode filter.Mode) {
	t.Helper()
	encoded := filter.Encode(nil, data, mode)
	decoded, err := filter.Decode(nil, encoded, len(data))
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

func TestRoundTripEmpty(t *testing.T) {
	roundTrip(t, nil, filter.Off)
	roundTrip(t, nil, filter.Heuristic)
	roundTrip(t, nil, filter.BruteForce)
}

func TestRoundTripRaw(t *testing.T) {
	data := []byte("hello, world! this is not very structured text at all.")
	for _, m := range []filter.Mode{filter.Off, filter.Heuristic, filter.BruteForce} {
		roundTrip(t, data, m)
	}
}

func TestRoundTripStridedData(t *testing.T) {
	// Four interleaved channels each counting up: classic delta/LPC bait.
	data := make([]byte, 4000)
	for i := range data {
		data[i] = byte((i / 4) + (i % 4))
	}
	for _, m := range []filter.Mode{filter.Off, filter.Heuristic, filter.BruteForce} {
		roundTrip(t, data, m)
	}
}

func TestRoundTripMultiSubBlock(t *testing.T) {
	data := make([]byte, filter.SubBlockSize*3+1234)
	rnd := rand.New(rand.NewSource(42))
	rnd.Read(data)
	for _, m := range []filter.Mode{filter.Off, filter.Heuristic, filter.BruteForce} {
		roundTrip(t, data, m)
	}
}

func TestRoundTripRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	data := make([]byte, 50000)
	rnd.Read(data)
	roundTrip(t, data, filter.BruteForce)
}

func TestDecodeTruncatedHeaderErrors(t *testing.T) {
	_, err := filter.Decode(nil, []byte{0}, 10)
	require.Error(t, err)
}
