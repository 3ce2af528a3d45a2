package lz77_test

import (
	"math/rand"
	"testing"

	"github.com/loxxous/Jampack/internal/lz77"
	"github.com/stretchr/testify/require"
)

var allModes = []lz77.Mode{lz77.ModeDedupe, lz77.ModeHashChain, lz77.ModeSuffixArray}

func roundTrip(t *testing.T, data []byte, mode lz77.Mode) {
	t.Helper()
	encoded := lz77.Encode(nil, data, mode)
	decoded, err := lz77.Decode(nil, encoded, len(data))
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

func TestRoundTripEmpty(t *testing.T) {
	for _, m := range allModes {
		roundTrip(t, nil, m)
	}
}

func TestRoundTripShort(t *testing.T) {
	for _, m := range allModes {
		roundTrip(t, []byte("abc"), m)
		roundTrip(t, []byte("abcd"), m)
	}
}

func TestRoundTripLongExactRepeat(t *testing.T) {
	block := make([]byte, 600)
	for i := range block {
		block[i] = byte(i % 7)
	}
	data := append(append([]byte{}, block...), block...)
	for _, m := range allModes {
		roundTrip(t, data, m)
	}
}

func TestRoundTripRepetitiveText(t *testing.T) {
	pattern := []byte("abcdefghijklmnopqrstuvwxyz0123456789")
	data := make([]byte, 0, 50000)
	for len(data) < 50000 {
		data = append(data, pattern...)
	}
	for _, m := range allModes {
		roundTrip(t, data, m)
	}
}

func TestRoundTripRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	data := make([]byte, 20000)
	rnd.Read(data)
	for _, m := range allModes {
		roundTrip(t, data, m)
	}
}

func TestRoundTripAllZeros(t *testing.T) {
	data := make([]byte, 5000)
	for _, m := range allModes {
		roundTrip(t, data, m)
	}
}

func TestDecodeTruncatedErrors(t *testing.T) {
	_, err := lz77.Decode(nil, []byte{}, 10)
	require.Error(t, err)
}
