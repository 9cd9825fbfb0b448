package slab

import "unsafe"

// AllocHook and FreeHook restore the original source's
// GDB_DEFINE_HOOK/GDB_CALL_HOOK call sites (§4.7, §6, and the
// "Supplemented features" section of SPEC_FULL.md): named, otherwise
// no-op call sites at every Alloc/Free that let an external observer
// (a test, a tool) watch allocation events without instrumenting Cache
// itself. Both are nil by default, costing one nil check per call.
var (
	AllocHook func(addr unsafe.Pointer, c *Cache)
	FreeHook  func(addr unsafe.Pointer, c *Cache)
)

func callAllocHook(addr unsafe.Pointer, c *Cache) {
	if AllocHook != nil {
		AllocHook(addr, c)
	}
}

func callFreeHook(addr unsafe.Pointer, c *Cache) {
	if FreeHook != nil {
		FreeHook(addr, c)
	}
}
