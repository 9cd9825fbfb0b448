package slab

import (
	"unsafe"

	"go.uber.org/zap"
)

// Kmalloc's supported size range (§4.6): buckets cover 2^kmallocMinOrder
// through 2^kmallocMaxOrder bytes, i.e. 64 B through 256 KiB.
const (
	kmallocMinOrder = 6
	kmallocMaxOrder = 18
)

// kmallocBucketNames restores the original source's
// kmalloc_allocator_names table (§4.1 "records it purely for
// diagnostics"; SPEC_FULL.md §4 "supplemented features").
var kmallocBucketNames = [kmallocMaxOrder - kmallocMinOrder + 1]string{
	"size-64", "size-128", "size-256", "size-512", "size-1024",
	"size-2048", "size-4096", "size-8192", "size-16384", "size-32768",
	"size-65536", "size-131072", "size-262144",
}

// buckets holds one Cache per power-of-two size class. It is populated
// once, by Init, and never mutated afterward (§9: "read-only for the
// bucket array").
var buckets [kmallocMaxOrder - kmallocMinOrder + 1]*Cache

// initKmallocBuckets draws every bucket's descriptor from the bootstrap
// cache, the same way a user Create call does (§4.5, §9: "every kmalloc
// bucket cache" counts toward the bootstrap cache's inuse). Buckets are
// still never destroyed, so registryAdd's token bookkeeping exists here
// purely to keep bootstrap's accounting honest, not because a bucket
// will ever give its descriptor back.
func initKmallocBuckets(cfg Config) {
	for order := kmallocMinOrder; order <= kmallocMaxOrder; order++ {
		i := order - kmallocMinOrder

		tok, err := bootstrapAlloc()
		if err != nil {
			panic(err)
		}

		c := &Cache{}
		if err := initCache(c, kmallocBucketNames[i], uintptr(1)<<uint(order), cfg); err != nil {
			panic(err)
		}
		registryAdd(c, tok)
		buckets[i] = c
	}
}

// bucketFor returns the smallest bucket cache able to hold need bytes,
// or nil if need exceeds the largest bucket (§4.6 step 2).
func bucketFor(need uintptr) *Cache {
	for order := kmallocMinOrder; order <= kmallocMaxOrder; order++ {
		if uintptr(1)<<uint(order) >= need {
			return buckets[order-kmallocMinOrder]
		}
	}
	return nil
}

// Kmalloc allocates at least size bytes from the smallest bucket that
// fits size plus a hidden pointer-sized header mapping the returned
// region back to its owning Cache (§4.6). A size with no large-enough
// bucket is fatal (§7 item 4), matching the original's
// "panic(size bigger than maxorder)".
func Kmalloc(size uintptr) (unsafe.Pointer, error) {
	Init()

	need := size + wordSize
	c := bucketFor(need)
	if c == nil {
		fatal(defaultLogger, ErrObjectTooLarge, zap.Uintptr("size", size))
	}

	addr, err := c.Alloc()
	if err != nil {
		return nil, err
	}

	*(*unsafe.Pointer)(addr) = unsafe.Pointer(c)
	return unsafe.Pointer(uintptr(addr) + wordSize), nil
}

// Kfree returns a region previously produced by Kmalloc to its owning
// bucket cache (§4.6).
func Kfree(p unsafe.Pointer) {
	header := unsafe.Pointer(uintptr(p) - wordSize)
	c := (*Cache)(*(*unsafe.Pointer)(header))
	c.Free(header)
}
