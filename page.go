package slab

import (
	"os"
	"unsafe"

	"github.com/pkg/errors"
)

const (
	// SlabMaxOrder is the exclusive upper bound on the page-run orders
	// calcSlabSize compares past the minimum one (§4.2).
	SlabMaxOrder = 5

	// PageNSizes bounds the highest page-run order a PageAllocator is
	// expected to honor: orders 0..PageNSizes-1.
	PageNSizes = 11
)

// PageSize is the granularity of one page-run order, i.e. order o spans
// PageSize<<o bytes. It mirrors the external PAGE_SIZE contract (§6).
var PageSize = os.Getpagesize()

// PageAllocator is the external page-allocator collaborator (§6): it
// hands out (and takes back) physically-contiguous, page-aligned runs of
// 2^order pages. It is out of scope for this package's core; Cache only
// depends on the interface, and osPageAllocator below is the
// OS-backed implementation a freestanding Go process actually has
// available, adapted from the teacher's mmap-based allocator.
type PageAllocator interface {
	// AllocPages returns the start address of a new, zeroed page run of
	// 2^order pages, or an error if none is available.
	AllocPages(order int) (unsafe.Pointer, error)
	// FreePages releases a run previously returned by AllocPages for the
	// same order. Callers must not use addr afterward.
	FreePages(addr unsafe.Pointer, order int)
}

// ErrOrderTooLarge is returned by the default PageAllocator when asked for
// an order at or beyond PageNSizes.
var ErrOrderTooLarge = errors.New("slab: page-run order exceeds PageNSizes")

// osPageAllocator acquires page runs directly from the OS via anonymous
// mmap, the same mechanism the teacher uses to back its own Allocator.
type osPageAllocator struct{}

// DefaultPageAllocator is the PageAllocator every Cache uses unless a
// Config overrides it (e.g. with a fake, in tests).
var DefaultPageAllocator PageAllocator = osPageAllocator{}

func (osPageAllocator) AllocPages(order int) (unsafe.Pointer, error) {
	if order < 0 || order >= PageNSizes {
		return nil, errors.Wrapf(ErrOrderTooLarge, "order %d", order)
	}
	size := PageSize << uint(order)
	b, err := mmap0(size)
	if err != nil {
		return nil, errors.Wrap(err, "slab: page allocation failed")
	}
	return unsafe.Pointer(&b[0]), nil
}

func (osPageAllocator) FreePages(addr unsafe.Pointer, order int) {
	size := PageSize << uint(order)
	// Errors from unmap are not actionable by the caller: the contract
	// (§6) gives page_free_n no return value. Best-effort only.
	_ = unmap(addr, size)
}
