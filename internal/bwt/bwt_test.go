package bwt_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/loxxous/Jampack/internal/bwt"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, data []byte, threads int) {
	t.Helper()
	r := bwt.Forward(data)
	out, err := bwt.Inverse(context.Background(), r, threads)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestBelowUnitsPassesThrough(t *testing.T) {
	data := []byte("short input below the alignment unit")
	r := bwt.Forward(data)
	require.Empty(t, r.BWT)
	require.Equal(t, data, r.Tail)
	roundTrip(t, data, 4)
}

func TestExactMultipleOfUnits(t *testing.T) {
	data := make([]byte, bwt.Units*10)
	rnd := rand.New(rand.NewSource(1))
	rnd.Read(data)
	for _, threads := range []int{1, 2, 4, 8, 120, 200} {
		roundTrip(t, data, threads)
	}
}

func TestWithTrailingRemainder(t *testing.T) {
	data := make([]byte, bwt.Units*3+47)
	rnd := rand.New(rand.NewSource(2))
	rnd.Read(data)
	roundTrip(t, data, 4)
}

func TestHighlyRepetitiveData(t *testing.T) {
	data := make([]byte, bwt.Units*20)
	for i := range data {
		data[i] = byte(i % 3)
	}
	roundTrip(t, data, 4)
}

func TestAllSameByte(t *testing.T) {
	data := make([]byte, bwt.Units*5)
	roundTrip(t, data, 4)
}

func TestEmpty(t *testing.T) {
	roundTrip(t, nil, 4)
}

func TestInverseRejectsBadIndex(t *testing.T) {
	r := bwt.Forward(make([]byte, bwt.Units*2))
	r.Indices[0] = -1
	_, err := bwt.Inverse(context.Background(), r, 4)
	require.Error(t, err)
}
