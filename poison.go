package slab

import "unsafe"

// Poison byte patterns (§4.7): written across the caller-visible region
// on Alloc and Free to catch use-before-init and use-after-free. These
// mirror the common MM_POISON_ALLOC/MM_POISON_FREE values from the
// original source's kmalloc front end, generalized here to every Cache,
// not just the kmalloc buckets.
const (
	poisonAlloc byte = 0xAA
	poisonFree  byte = 0xDD
)

func poisonFill(p unsafe.Pointer, n uintptr, b byte) {
	buf := unsafe.Slice((*byte)(p), int(n))
	for i := range buf {
		buf[i] = b
	}
}
