package slab

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cross-cache invariant sweep, in the assertion style the pack's own
// testify-using suites favor (nmxmxh-inos_v1/kernel/threads/supervisor):
// require for setup that must succeed before the rest of the test means
// anything, assert for the properties actually under test.
func TestCacheInvariantsAcrossSizes(t *testing.T) {
	sizes := []uintptr{1, 8, 16, 32, 64, 100, 257, 1000}

	for _, sz := range sizes {
		fp := newFakePageAllocator()
		c, err := Create("invariant-sweep", sz, WithPageAllocator(fp))
		require.NoError(t, err, "Create(%d)", sz)
		require.NotNil(t, c)

		assert.Equal(t, sz, c.ObjSize(), "ObjSize for size %d", sz)
		assert.GreaterOrEqual(t, c.SlabNobjs(), 1, "SlabNobjs for size %d", sz)
		assert.Equal(t, 0, c.Inuse(), "fresh cache should have zero inuse")
		assert.Equal(t, 0, c.NumSlabs(), "fresh cache should have zero slabs")

		n := c.SlabNobjs() + 1 // force at least one growth
		seen := make(map[uintptr]bool, n)
		for i := 0; i < n; i++ {
			p, err := c.Alloc()
			require.NoError(t, err, "alloc %d/%d for size %d", i, n, sz)
			require.NotNil(t, p)
			assert.False(t, seen[uintptr(p)], "duplicate address for size %d", sz)
			seen[uintptr(p)] = true
		}
		assert.Equal(t, n, c.Inuse(), "Inuse after %d allocs for size %d", n, sz)
		assert.GreaterOrEqual(t, c.NumSlabs(), 2, "expected growth into a second slab for size %d", sz)
	}
}

// Inuse must always stay within [0, SlabNobjs * NumSlabs] as objects are
// allocated and freed in an interleaved pattern.
func TestCacheInuseStaysWithinCapacity(t *testing.T) {
	fp := newFakePageAllocator()
	c, err := Create("capacity-bound", 40, WithPageAllocator(fp))
	require.NoError(t, err)

	var live []unsafe.Pointer
	for i := 0; i < 500; i++ {
		if len(live) > 0 && i%3 == 0 {
			p := live[len(live)-1]
			live = live[:len(live)-1]
			c.Free(p)
		} else {
			p, err := c.Alloc()
			require.NoError(t, err)
			live = append(live, p)
		}

		capacity := c.SlabNobjs() * c.NumSlabs()
		inuse := c.Inuse()
		assert.GreaterOrEqual(t, inuse, 0)
		assert.LessOrEqual(t, inuse, capacity, "inuse exceeded capacity at step %d", i)
	}
}
