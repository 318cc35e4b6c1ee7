package hyperloglog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"
)

type hashString string

func (hs hashString) Sum64() uint64 {
	return xxhash.Sum64String(string(hs))
}

// The original implementation panics with "concurrent map writes" under
// parallel Add; the wrapper must not.
func TestConcurrentAdd(t *testing.T) {
	h, err := NewPlus(14)
	require.NoError(t, err)

	const count = 10000
	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		go func(i int) {
			defer wg.Done()
			h.Add(hashString(fmt.Sprintf("item-%d", i%100)))
		}(i)
	}
	wg.Wait()

	require.InDelta(t, 100, h.Count(), 5)
}

func TestMergeAccumulates(t *testing.T) {
	global, err := NewPlus(14)
	require.NoError(t, err)

	for part := 0; part < 4; part++ {
		local, err := NewPlus(14)
		require.NoError(t, err)
		for i := 0; i < 500; i++ {
			local.Add(hashString(fmt.Sprintf("part%d-item%d", part, i)))
		}
		require.NoError(t, global.Merge(local))
	}

	require.InEpsilon(t, 2000, global.Count(), 0.05)
}
