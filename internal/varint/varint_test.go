package varint_test

import (
	"testing"

	"github.com/loxxous/Jampack/internal/jamerr"
	"github.com/loxxous/Jampack/internal/varint"
	"github.com/stretchr/testify/require"
)

func TestRoundTripBoundaries(t *testing.T) {
	values := []uint64{
		0, 1, 126, 127, 128, 129,
		16511, 16512, 16513,
		2113663, 2113664, 2113665,
		270549119, 270549120, 270549121,
		1<<35 - 1,
	}
	for _, v := range values {
		buf := varint.Encode(nil, v)
		require.LessOrEqual(t, len(buf), varint.MaxBytes)
		got, n, err := varint.Decode(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got, "round trip of %d", v)
	}
}

func TestRoundTripSpread(t *testing.T) {
	for v := uint64(0); v < 1<<20; v += 97 {
		buf := varint.Encode(nil, v)
		got, n, err := varint.Decode(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}

func TestSizeMatchesEncodedLength(t *testing.T) {
	for _, v := range []uint64{0, 200, 1 << 20, 1 << 30, 1<<35 - 1} {
		require.Equal(t, varint.Size(v), len(varint.Encode(nil, v)))
	}
}

func TestOverlongChainIsInvariantError(t *testing.T) {
	buf := []byte{0, 0, 0, 0, 0, 0x80}
	_, _, err := varint.Decode(buf)
	var ie jamerr.InvariantError
	require.ErrorAs(t, err, &ie)
}

func TestTruncatedIsError(t *testing.T) {
	buf := []byte{0, 0}
	_, _, err := varint.Decode(buf)
	require.Error(t, err)
}

func TestSequentialEncodingsAppend(t *testing.T) {
	var buf []byte
	buf = varint.Encode(buf, 10)
	buf = varint.Encode(buf, 1<<20)
	v1, n1, err := varint.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, uint64(10), v1)
	v2, _, err := varint.Decode(buf[n1:])
	require.NoError(t, err)
	require.Equal(t, uint64(1<<20), v2)
}
