package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownsample_NoDownsampling(t *testing.T) {
	src := []float32{1.0, 1.1, 1.2}

	// Test with nil dst
	result := Downsample(nil, src, 10)
	require.Equal(t, 3, len(result))
	assert.Equal(t, src, result)

	// Test with sufficient capacity dst
	dst := make([]float32, 0, 10)
	result = Downsample(dst, src, 10)
	require.Equal(t, 3, len(result))
	assert.Equal(t, src, result)
	// Should reuse dst
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsample_WithDownsampling(t *testing.T) {
	src := make([]int, 100)
	for i := range src {
		src[i] = i
	}

	dst := make([]int, 0, 20)
	result := Downsample(dst, src, 10)
	require.Equal(t, 10, len(result))

	// Should always include first element
	assert.Equal(t, 0, result[0])

	// Last element should be in the last 20% of the range
	assert.GreaterOrEqual(t, result[len(result)-1], 80)

	// Elements stay in order
	for i := 1; i < len(result); i++ {
		assert.Greater(t, result[i], result[i-1])
	}
}

func TestDownsample_DestinationReuse(t *testing.T) {
	first := []string{"a", "b"}
	second := []string{"c", "d", "e"}

	dst := make([]string, 0, 10)
	result1 := Downsample(dst, first, 10)
	require.Equal(t, first, result1)

	// Second call reuses the same backing array
	result2 := Downsample(result1, second, 10)
	require.Equal(t, second, result2)
	assert.Equal(t, cap(dst), cap(result2))
}

func TestDownsample_NonPositiveLimitCopiesAll(t *testing.T) {
	src := []int{1, 2, 3, 4}

	assert.Equal(t, src, Downsample(nil, src, 0))
	assert.Equal(t, src, Downsample(nil, src, -1))
}

func TestDownsample_Empty(t *testing.T) {
	result := Downsample[int](nil, nil, 10)
	assert.Len(t, result, 0)
}
