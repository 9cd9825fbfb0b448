package slab

import (
	"runtime"
	"sync/atomic"
)

// spinLock is the Go stand-in for the "spinlock with interrupt masking on
// the local processor" §5 requires guarding each Cache's slab list, and
// every slab's free/inuse and bufctls. A process can't mask its own
// interrupts from user space, so there is no IPL to raise here; what
// carries over is the non-blocking discipline itself — this type never
// parks a goroutine on a channel or a semaphore. It spins on a CAS and
// calls runtime.Gosched between attempts, which lets other goroutines run
// but leaves the caller runnable rather than asleep. sync.Mutex is
// deliberately not used here: it can put a goroutine to sleep under
// contention.
type spinLock struct {
	held atomic.Bool
}

func (l *spinLock) Lock() {
	for !l.held.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

func (l *spinLock) Unlock() {
	l.held.Store(false)
}
