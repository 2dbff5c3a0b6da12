package workerpool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeVisitsEveryIndexOnce(t *testing.T) {
	p, err := New(4)
	require.NoError(t, err)
	defer p.Release()

	seen := make([]int32, 1000)
	require.NoError(t, p.Range(len(seen), 64, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	}))
	for i, n := range seen {
		assert.Equal(t, int32(1), n, "index %d", i)
	}
}

func TestNilPoolRunsInline(t *testing.T) {
	var p *Pool
	var calls int
	require.NoError(t, p.Range(10, 3, func(lo, hi int) {
		calls++
		assert.Equal(t, 0, lo)
		assert.Equal(t, 10, hi)
	}))
	assert.Equal(t, 1, calls)
	p.Release()
}

func TestChunks(t *testing.T) {
	assert.Equal(t, 0, Chunks(0, 10))
	assert.Equal(t, 1, Chunks(5, 10))
	assert.Equal(t, 3, Chunks(25, 10))
	assert.Equal(t, 1, Chunks(25, 0))
}
