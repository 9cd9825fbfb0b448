package slab

// Reclaim is reserved (§4.8, §6 slab_allocators_reclaim): walk every
// cache, unlink slabs with inuse == 0, return their pages via the
// PageAllocator, stopping early once target pages have been freed.
//
// That behavior is not implemented here. Safely unlinking a slab
// requires knowing no other goroutine is mid-Alloc/Free on it, which
// needs more than the per-cache spinlock already held during the scan —
// a second goroutine could be parked spinning on c.mu for an entirely
// different slab in the same cache while this walk mutates the list out
// from under it. That protocol has not been designed (§9: "Reclaim is
// absent"), so, per §7 item 5, Reclaim stays a fatal stub rather than a
// silent no-op.
func Reclaim(target int) (int, error) {
	fatal(defaultLogger, ErrReclaimNotImplemented)
	return 0, nil
}
