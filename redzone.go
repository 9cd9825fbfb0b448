package slab

import "unsafe"

// wordSize is sizeof(machine word) for the purposes of §3 invariant 5 and
// §4.6's "sizeof(pointer)" header: one native pointer width.
const wordSize = unsafe.Sizeof(uintptr(0))

// redzoneSentinel is SLAB_REDZONE: the bit pattern written into the first
// and last machine word of every slot when red-zoning is enabled (§3
// invariant 5, §4.7).
const redzoneSentinel = uintptr(0xDEADC0DE)

// redzonePad is how much larger an object size class becomes once
// red-zoning is enabled (§4.1: "enlarges the effective object size by
// 2 * sizeof(machine word)").
const redzonePad = 2 * wordSize

func frontRedzone(obj unsafe.Pointer) *uintptr {
	return (*uintptr)(obj)
}

func rearRedzone(obj unsafe.Pointer, objsize uintptr) *uintptr {
	return (*uintptr)(unsafe.Pointer(uintptr(obj) + objsize - wordSize))
}

func writeRedzones(obj unsafe.Pointer, objsize uintptr) {
	*frontRedzone(obj) = redzoneSentinel
	*rearRedzone(obj, objsize) = redzoneSentinel
}

// checkRedzones reports whether both sentinels in the slot at obj
// (objsize bytes, post-pad) are intact.
func checkRedzones(obj unsafe.Pointer, objsize uintptr) bool {
	return *frontRedzone(obj) == redzoneSentinel && *rearRedzone(obj, objsize) == redzoneSentinel
}
