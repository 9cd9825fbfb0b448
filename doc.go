// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package slab implements a slab-based object allocator, modeled on the
// kernel slab allocator described by Vahalia's "UNIX Internals: The New
// Frontiers" and implemented in the Weenix teaching kernel's
// kernel/mm/slab.c.
//
// A Cache serves objects of one fixed size out of page runs ("slabs") it
// acquires from a PageAllocator. Within a slab, unallocated objects are
// threaded into a singly linked free list through a per-object trailer
// (bufctl); the same trailer holds a back-pointer to the owning slab once
// the object is handed out, so Free can locate the slab in O(1) without a
// separate lookup structure.
//
// Cache descriptors are themselves allocated from a bootstrap Cache that
// Init sets up exactly once, and every Cache created this
// way is linked onto a process-wide registry for diagnostic enumeration.
// On top of the Cache/Slab core sits a generic, size-bucketed front end,
// Kmalloc/Kfree, that dispatches to one of a fixed array of power-of-two
// Caches and hides the owning Cache behind each returned pointer.
//
// None of this is backed by the Go garbage collector: page runs come
// from the OS via mmap (or an injected PageAllocator, for tests) and are
// never referenced from inside another garbage-collected object, the same
// discipline the slab.c source observes with raw pointer arithmetic.
package slab
