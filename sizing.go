package slab

import (
	"github.com/pkg/errors"
)

// slabSize returns the total byte size of a slab holding nobjs objects of
// objsize bytes each, including their bufctls and the trailing Slab
// header (§4.2 slab_size).
func slabSize(objsize uintptr, nobjs int) uintptr {
	return uintptr(nobjs)*(objsize+bufctlSize) + slabHeaderSize
}

// slabNobjs returns how many objsize-byte objects (plus bufctl) fit in a
// page run of runSize bytes once the trailing Slab header is reserved
// (§4.2 nobjs). It returns 0 if the header alone does not fit.
func slabNobjs(objsize uintptr, runSize uintptr) int {
	if runSize <= slabHeaderSize {
		return 0
	}
	return int((runSize - slabHeaderSize) / (objsize + bufctlSize))
}

// slabWaste returns the number of bytes in a run of 2^order pages left
// over after packing the optimal number of objsize objects (§4.2 waste).
func slabWaste(objsize uintptr, order int) uintptr {
	runSize := uintptr(PageSize) << uint(order)
	n := slabNobjs(objsize, runSize)
	return runSize - slabSize(objsize, n)
}

// calcSlabSize implements the waste-minimization procedure of §4.2: it
// picks the smallest order that can hold at least one object, then
// searches strictly-decreasing waste up to SlabMaxOrder, preferring the
// smaller order on ties.
func calcSlabSize(objsize uintptr) (order, nobjs int, err error) {
	minSize := slabSize(objsize, 1)
	minorder := -1
	for o := 0; o < PageNSizes; o++ {
		if uintptr(PageSize)<<uint(o) >= minSize {
			minorder = o
			break
		}
	}
	if minorder < 0 {
		return 0, 0, errors.Errorf("slab: object size %d has no page-run order within PageNSizes=%d", objsize, PageNSizes)
	}

	best := minorder
	bestWaste := slabWaste(objsize, minorder)
	for o := minorder + 1; o < SlabMaxOrder; o++ {
		if w := slabWaste(objsize, o); w < bestWaste {
			bestWaste = w
			best = o
		}
	}

	n := slabNobjs(objsize, uintptr(PageSize)<<uint(best))
	if n < 1 {
		return 0, 0, errors.Errorf("slab: sizing produced zero objects per slab for size %d", objsize)
	}
	return best, n, nil
}
