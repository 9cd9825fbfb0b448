package slab

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"
)

// cacheDescriptorSize models sizeof(slab_allocator_t) (§4.5): the object
// size the bootstrap cache is parameterized with. Unlike every other
// cache, the bootstrap cache's "objects" are never cast back to *Cache —
// see bootstrapAlloc below for why — so this only has to be realistic
// enough to make the bootstrap cache's own slab geometry representative
// of what it would look like if it really held Cache descriptors.
var cacheDescriptorSize = unsafe.Sizeof(Cache{})

var (
	registryMu   sync.Mutex
	registryHead *Cache
	bootstrap    *Cache
	// bootstrapTokens keeps the real *Cache for every descriptor
	// "allocated" from bootstrap, keyed by the token address Alloc
	// handed back. A Cache descriptor has Go-managed fields (name
	// string, *zap.Logger, the PageAllocator interface value) that must
	// stay reachable through ordinary garbage-collector roots; the
	// bootstrap cache's backing memory is raw, OS-mapped, and invisible
	// to the collector; exactly like every other cache's slabs, so it
	// must never be the only thing holding a live Go pointer. This map
	// is that root. The token itself is opaque: Alloc/Free treat it as
	// sizeof(Cache)-shaped bytes and never read or write through it as a
	// *Cache.
	bootstrapTokens map[unsafe.Pointer]*Cache
	initOnce        sync.Once
)

// Init installs the bootstrap cache and every kmalloc bucket (§4.5,
// §4.6) — the "slab_init" entry point of §6. It is idempotent and safe
// to call more than once; only the first call's options take effect.
// Create and Kmalloc call it automatically, mirroring §9's one-shot
// initialization function gated by a flag, used because Go forbids the
// static self-referential initialization the original's file-scope
// slab_allocator_allocator relies on.
func Init(opts ...Option) {
	initOnce.Do(func() {
		cfg := buildConfig(opts...)
		bootstrapTokens = make(map[unsafe.Pointer]*Cache)
		bootstrap = &Cache{}
		if err := initCache(bootstrap, "slab_allocators", cacheDescriptorSize, cfg); err != nil {
			panic(errors.Wrap(err, "slab: failed to initialize bootstrap cache"))
		}
		registryAdd(bootstrap, nil)
		initKmallocBuckets(cfg)
	})
}

func bootstrapAlloc() (unsafe.Pointer, error) {
	if bootstrap == nil {
		Init()
	}
	return bootstrap.Alloc()
}

func bootstrapFree(tok unsafe.Pointer) {
	bootstrap.Free(tok)
}

// registryAdd links c onto the head of the global registry (§4.5:
// "Initialization pushes each new cache at the head"). tok is the
// bootstrap token backing c's descriptor, or nil for the bootstrap cache
// itself, whose descriptor is not drawn from any cache.
func registryAdd(c *Cache, tok unsafe.Pointer) {
	registryMu.Lock()
	defer registryMu.Unlock()

	c.next = registryHead
	registryHead = c
	c.bootstrapToken = tok
	if tok != nil {
		bootstrapTokens[tok] = c
	}
}

func registryRemove(c *Cache) error {
	registryMu.Lock()
	defer registryMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	for s := c.slabs; s != nil; s = s.next {
		if s.inuse != 0 {
			return ErrCacheNotEmpty
		}
	}
	for s := c.slabs; s != nil; {
		next := s.next // s lives inside the run being freed
		c.pages.FreePages(s.addr, c.order)
		s = next
	}
	c.slabs = nil

	var prev *Cache
	for cur := registryHead; cur != nil; cur = cur.next {
		if cur == c {
			if prev == nil {
				registryHead = cur.next
			} else {
				prev.next = cur.next
			}
			break
		}
		prev = cur
	}

	tok := c.bootstrapToken
	delete(bootstrapTokens, tok)
	c.bootstrapToken = nil
	bootstrapFree(tok)
	return nil
}

// Registry returns every currently live cache, most-recently-created
// first, for diagnostic enumeration (§4.5: "exposed to external debugger
// scripts").
func Registry() []*Cache {
	registryMu.Lock()
	defer registryMu.Unlock()

	var out []*Cache
	for c := registryHead; c != nil; c = c.next {
		out = append(out, c)
	}
	return out
}
