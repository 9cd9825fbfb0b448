package slab

import (
	"fmt"

	"github.com/pkg/errors"
)

// Recoverable failures (§7 taxonomy item 1): surfaced as plain errors so
// callers can handle out-of-memory the way they would any other
// operation that legitimately fails.
var (
	// ErrOutOfMemory is returned by Alloc/Create/Kmalloc when the page
	// allocator (or the bootstrap cache) has no more room to grow.
	ErrOutOfMemory = errors.New("slab: out of memory")

	// ErrCacheNotEmpty is returned by Destroy when one of the cache's
	// objects is still allocated (see the open question in §7 and the
	// decision in DESIGN.md).
	ErrCacheNotEmpty = errors.New("slab: cache has outstanding objects")

	// ErrObjectTooLarge is the panic value Kmalloc raises for a size with
	// no bucket large enough to serve it (§4.6, §7 item 4); Kmalloc never
	// returns it. It is exported so a recover() site can identify the
	// cause.
	ErrObjectTooLarge = errors.New("slab: requested size exceeds the largest kmalloc bucket")

	// ErrReclaimNotImplemented is the panic value raised by Reclaim
	// (§4.8, §7 item 5, §9 "Reclaim is absent").
	ErrReclaimNotImplemented = errors.New("slab: Reclaim is not implemented: no protocol exists yet to unlink a slab while another goroutine may be mid-alloc/free on it")
)

// FatalError reports an invariant violation detected at Alloc or Free
// time (§3, §4.7, §7 item 3): a red-zone mismatch or a free-flag
// disagreement. The allocator cannot continue correctly once raised,
// because the free-list topology it depends on may no longer be
// consistent — so, per §7, the only valid response is to abort, which in
// Go means panicking with this value rather than returning it.
type FatalError struct {
	Cache     string         // cache name, for diagnostics
	Addr      uintptr        // object or slot address involved
	Invariant string         // which invariant was violated
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("slab: fatal: cache %q, addr %#x: %s", e.Cache, e.Addr, e.Invariant)
}
