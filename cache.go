package slab

import (
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Cache is a named slab allocator serving one object size class (§3,
// §4.1). Its zero value is not ready for use; obtain one from Create.
type Cache struct {
	mu spinLock

	name     string
	userSize uintptr // S: the caller-visible object size
	objsize  uintptr // S': S plus red-zone padding, if enabled (§4.1)
	order    int     // page-run size is PageSize * 2^order
	nobjs    int     // N: objects per slab
	slabs    *Slab   // head of this cache's slab list
	next     *Cache  // registry link (§4.5)

	redzone   bool
	freeCheck bool
	poison    bool
	log       *zap.Logger
	pages     PageAllocator

	bootstrapToken unsafe.Pointer // opaque capacity token from the bootstrap cache; nil for the bootstrap cache itself
}

// initCache is the single internal routine that initializes any cache —
// the bootstrap cache, every kmalloc bucket, and every cache returned by
// Create all run through it (§4.5).
func initCache(c *Cache, name string, size uintptr, cfg Config) error {
	if size < 1 {
		return errors.New("slab: object size must be positive")
	}
	if name == "" {
		name = "<unnamed>"
	}

	objsize := size
	if cfg.Redzone {
		objsize += redzonePad
	}

	order, nobjs, err := calcSlabSize(objsize)
	if err != nil {
		return err
	}

	c.name = name
	c.userSize = size
	c.objsize = objsize
	c.order = order
	c.nobjs = nobjs
	c.slabs = nil
	c.redzone = cfg.Redzone
	c.freeCheck = cfg.FreeCheck
	c.poison = cfg.Poison
	c.log = cfg.Logger
	c.pages = cfg.Pages

	c.log.Debug("initialized cache",
		zap.String("cache", c.name),
		zap.Uintptr("objsize", objsize),
		zap.Int("order", order),
		zap.Int("slab_nobjs", nobjs),
	)
	return nil
}

// grow acquires a new page run and threads a fresh free list through it
// (§4.3). Callers must hold c.mu.
func (c *Cache) grow() error {
	addr, err := c.pages.AllocPages(c.order)
	if err != nil {
		return errors.Wrap(ErrOutOfMemory, err.Error())
	}

	// Thread the free list through every slot before the slab header is
	// exposed to anyone (§4.3: "the bufctl threading must be complete
	// before the slab header is exposed to other callers").
	obj := addr
	for i := 0; i < c.nobjs-1; i++ {
		bc := bufctlAt(obj, c.objsize)
		if c.freeCheck {
			bc.freeFlag = true
		}
		next := nextSlot(obj, c.objsize)
		bc.link = next
		obj = next
	}
	lastBC := bufctlAt(obj, c.objsize)
	if c.freeCheck {
		lastBC.freeFlag = true
	}
	lastBC.link = nil

	if c.redzone {
		o := addr
		for i := 0; i < c.nobjs; i++ {
			writeRedzones(o, c.objsize)
			o = nextSlot(o, c.objsize)
		}
	}

	s := slabAt(addr, c.objsize, c.nobjs)
	s.addr = addr
	s.free = addr
	s.inuse = 0

	s.next = c.slabs
	c.slabs = s

	c.log.Debug("grew cache",
		zap.String("cache", c.name),
		zap.Int("order", c.order),
		zap.Int("slab_nobjs", c.nobjs),
	)
	return nil
}

// Alloc returns one object from the cache, growing it if no slab has
// room, or an error if the page allocator cannot supply a new slab
// (§4.4).
func (c *Cache) Alloc() (unsafe.Pointer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var s *Slab
	for cur := c.slabs; cur != nil; cur = cur.next {
		if cur.inuse < c.nobjs {
			s = cur
			break
		}
	}
	if s == nil {
		if err := c.grow(); err != nil {
			return nil, err
		}
		s = c.slabs // newly grown slabs are pushed at the head (§4.3.5)
	}

	obj := s.free
	bc := bufctlAt(obj, c.objsize)
	s.free = bc.link
	bc.link = unsafe.Pointer(s)
	if c.freeCheck {
		bc.freeFlag = false
	}
	s.inuse++

	if c.redzone {
		if !checkRedzones(obj, c.objsize) {
			fatal(c.log, &FatalError{Cache: c.name, Addr: uintptr(obj), Invariant: "red-zone mismatch on alloc"})
		}
		obj = unsafe.Pointer(uintptr(obj) + wordSize)
	}

	if c.poison {
		poisonFill(obj, c.userSize, poisonAlloc)
	}

	callAllocHook(obj, c)
	c.log.Debug("alloc",
		zap.String("cache", c.name),
		zap.Uintptr("obj", uintptr(obj)),
		zap.Int("inuse", s.inuse),
	)
	return obj, nil
}

// Free returns obj, previously produced by this cache's Alloc, to its
// owning slab's free list (§4.4). obj must have come from this exact
// Cache; the cache parameter is authoritative, per §4.4.
func (c *Cache) Free(obj unsafe.Pointer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	callFreeHook(obj, c)

	userPtr := obj // caller-visible range starts here regardless of red-zoning
	if c.redzone {
		obj = unsafe.Pointer(uintptr(obj) - wordSize)
		if !checkRedzones(obj, c.objsize) {
			fatal(c.log, &FatalError{Cache: c.name, Addr: uintptr(obj), Invariant: "red-zone mismatch on free"})
		}
	}

	bc := bufctlAt(obj, c.objsize)
	if c.freeCheck {
		if bc.freeFlag {
			fatal(c.log, &FatalError{Cache: c.name, Addr: uintptr(obj), Invariant: "double free"})
		}
		bc.freeFlag = true
	}

	s := (*Slab)(bc.link)
	bc.link = s.free
	s.free = obj
	s.inuse--

	if c.poison {
		poisonFill(userPtr, c.userSize, poisonFree)
	}

	c.log.Debug("free",
		zap.String("cache", c.name),
		zap.Uintptr("obj", uintptr(obj)),
		zap.Int("inuse", s.inuse),
	)
}

// Name returns the cache's display name (§3: "display only").
func (c *Cache) Name() string { return c.name }

// ObjSize returns S, the caller-visible object size.
func (c *Cache) ObjSize() uintptr { return c.userSize }

// Order returns the cache's page-run order: PageSize*2^Order bytes/slab.
func (c *Cache) Order() int { return c.order }

// SlabNobjs returns N, the number of objects per slab (§8 property 7:
// constant for the cache's lifetime).
func (c *Cache) SlabNobjs() int { return c.nobjs }

// Inuse returns the total number of currently allocated objects across
// every slab this cache owns.
func (c *Cache) Inuse() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for s := c.slabs; s != nil; s = s.next {
		n += s.inuse
	}
	return n
}

// NumSlabs returns how many slabs this cache currently owns.
func (c *Cache) NumSlabs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for s := c.slabs; s != nil; s = s.next {
		n++
	}
	return n
}

// Create allocates a new cache descriptor from the bootstrap allocator
// and initializes it to serve objects of size bytes (§4.1). It returns
// ErrOutOfMemory if the bootstrap cache cannot supply a descriptor, or a
// wrapped sizing error if size cannot be satisfied within any supported
// page-run order (§4.2, §7 item 2).
func Create(name string, size uintptr, opts ...Option) (*Cache, error) {
	Init()
	cfg := buildConfig(opts...)

	tok, err := bootstrapAlloc()
	if err != nil {
		return nil, err
	}

	c := &Cache{}
	if err := initCache(c, name, size, cfg); err != nil {
		bootstrapFree(tok)
		return nil, err
	}

	registryAdd(c, tok)
	return c, nil
}

// Destroy returns a cache descriptor to the bootstrap allocator (§4.1).
//
// Open question (§7): this implementation returns ErrCacheNotEmpty, and
// leaves the cache untouched, while any of its objects is still
// allocated. Once every object has been freed, Destroy returns each of
// the cache's (now empty) slabs to its PageAllocator, unlinks the cache
// from the registry, and frees its descriptor. Destroy does not
// coordinate with goroutines that keep using c afterward. See DESIGN.md.
func Destroy(c *Cache) error {
	return registryRemove(c)
}
