package slab

import "unsafe"

// Slab describes one page run carved into N object-slot-plus-bufctl
// pairs in address order, followed by the Slab descriptor itself (§3):
// the caller-visible region begins at the page-aligned addr, and this
// header occupies the remaining bytes after the last bufctl.
type Slab struct {
	next  *Slab          // link to the next slab owned by the same cache
	inuse int             // number of currently allocated objects, 0..N
	free  unsafe.Pointer  // head of the intra-slab free list; nil when full
	addr  unsafe.Pointer  // start address of the page run
}

// slabHeaderSize is sizeof(Slab) in the spec's formulas (§4.2, §4.4).
const slabHeaderSize = unsafe.Sizeof(Slab{})

// slabAt overlays a *Slab immediately after the last bufctl of a page run
// carved for nobjs objects of objsize (post-red-zone) bytes each. It does
// not initialize the header; callers must set addr/free/inuse/next.
func slabAt(runAddr unsafe.Pointer, objsize uintptr, nobjs int) *Slab {
	off := uintptr(nobjs)*(objsize+bufctlSize)
	return (*Slab)(unsafe.Pointer(uintptr(runAddr) + off))
}

// slotIndex returns the address of the i'th object slot in a run starting
// at runAddr, for i in [0, nobjs).
func slotIndex(runAddr unsafe.Pointer, objsize uintptr, i int) unsafe.Pointer {
	return unsafe.Pointer(uintptr(runAddr) + uintptr(i)*(objsize+bufctlSize))
}
