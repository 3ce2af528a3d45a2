package stats_test

import (
	"testing"

	"github.com/loxxous/Jampack/internal/stats"
	"github.com/stretchr/testify/require"
)

func TestOrder0ConstantIsZero(t *testing.T) {
	data := make([]byte, 4096)
	require.Equal(t, 0.0, stats.Order0(data))
}

func TestOrder0UniformIsHigherThanSkewed(t *testing.T) {
	uniform := make([]byte, 256)
	for i := range uniform {
		uniform[i] = byte(i)
	}
	skewed := make([]byte, 256)
	skewed[0] = 1
	require.Greater(t, stats.Order0(uniform), stats.Order0(skewed))
}

func TestOrder1BeatsOrder0OnStructuredData(t *testing.T) {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i % 4) // perfectly predictable from previous byte
	}
	require.Less(t, stats.Order1(data), stats.Order0(data))
}

func TestMixedWithinBounds(t *testing.T) {
	data := []byte("hello world, hello world, hello world")
	m := stats.Mixed(data)
	require.GreaterOrEqual(t, m, 0.0)
	require.LessOrEqual(t, m, stats.Order0(data)+1)
}
