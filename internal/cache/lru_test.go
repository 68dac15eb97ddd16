package cache

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)

	_, ok := c.Get("a") // a becomes MRU
	require.True(t, ok)
	c.Add("c", 3) // evicts b

	_, ok = c.Get("b")
	require.False(t, ok)
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 2, c.Len())

	require.Equal(t, Stats{Len: 2, Hits: 2, Misses: 1, Evictions: 1}, c.Stats())
}

func TestLRU_UpdateRemovePurge(t *testing.T) {
	c := New[string, string](4)
	c.Add("k", "v1")
	c.Add("k", "v2")
	v, _ := c.Get("k")
	require.Equal(t, "v2", v)
	require.Equal(t, 1, c.Len())

	c.Remove("k")
	c.Remove("absent")
	_, ok := c.Get("k")
	require.False(t, ok)

	c.Add("x", "1")
	c.Add("y", "2")
	c.Purge()
	require.Zero(t, c.Len())
	c.Add("z", "3")
	v, ok = c.Get("z")
	require.True(t, ok)
	require.Equal(t, "3", v)
}

func TestLRU_OrderAfterUpdate(t *testing.T) {
	c := New[int, int](3)
	for i := range 3 {
		c.Add(i, i)
	}
	c.Add(0, 10) // 0 is now MRU; 1 is LRU
	c.Add(3, 3)

	_, ok := c.Get(1)
	require.False(t, ok)
	v, ok := c.Get(0)
	require.True(t, ok)
	require.Equal(t, 10, v)
}

func TestLRU_Concurrent(t *testing.T) {
	c := New[string, int](16)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				k := strconv.Itoa((g*200 + i) % 40)
				c.Add(k, i)
				c.Get(k)
			}
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, c.Len(), 16)
}

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	require.Panics(t, func() { New[int, int](0) })
}
