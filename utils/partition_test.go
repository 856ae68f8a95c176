package utils

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	getHisto := func(K, Np int) (histo map[int]int) {
		pm := NewPartitionMap(Np, K)
		histo = make(map[int]int)
		for np := 0; np < pm.ParallelDegree; np++ {
			kMin, kMax := pm.GetBucketRange(np)
			histo[kMax-kMin]++
		}
		return
	}
	assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
	assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
	assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
	assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))

	// partitions tile the range without gaps
	pm := NewPartitionMap(7, 100)
	assert.Equal(t, 0, pm.Partitions[0][0])
	for np := 1; np < 7; np++ {
		assert.Equal(t, pm.Partitions[np-1][1], pm.Partitions[np][0])
	}
	assert.Equal(t, 100, pm.Partitions[6][1])

	assert.Equal(t, 1, NewPartitionMap(0, 10).ParallelDegree)
}

func TestParallelRange(t *testing.T) {
	for _, n := range []int{0, 1, 5, 1000} {
		var (
			seen  = make([]int32, n)
			total int64
		)
		ParallelRange(n, func(kMin, kMax int) {
			for k := kMin; k < kMax; k++ {
				seen[k]++
				atomic.AddInt64(&total, 1)
			}
		})
		assert.Equal(t, int64(n), total)
		for k := range seen {
			assert.Equal(t, int32(1), seen[k])
		}
	}
}
