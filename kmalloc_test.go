package slab

import (
	"testing"
	"unsafe"
)

// bucketNameOf reads the hidden header Kmalloc writes just before p and
// returns the name of the Cache it points at, mirroring what Kfree does
// internally.
func bucketNameOf(p unsafe.Pointer) string {
	header := unsafe.Pointer(uintptr(p) - wordSize)
	c := (*Cache)(*(*unsafe.Pointer)(header))
	return c.Name()
}

// E4: kmalloc(100) is routed to the 128-byte bucket (100 + header >= 108,
// the next power of two at or above that is 128).
func TestKmallocRoutesToSmallestFittingBucket(t *testing.T) {
	p, err := Kmalloc(100)
	if err != nil {
		t.Fatalf("Kmalloc(100): %v", err)
	}
	defer Kfree(p)

	if got := bucketNameOf(p); got != "size-128" {
		t.Fatalf("Kmalloc(100) routed to bucket %q, want %q", got, "size-128")
	}
}

// Property 8: Kmalloc always returns memory from the smallest bucket that
// can hold size+header bytes.
func TestKmallocBucketRoutingInvariant(t *testing.T) {
	cases := []struct {
		size uintptr
		want string
	}{
		{1, "size-64"},
		{56, "size-64"},
		{57, "size-128"}, // 57 + 8 = 65 > 64
		{100, "size-128"},
		{120, "size-128"},
		{121, "size-256"}, // 121 + 8 = 129 > 128
		{4096, "size-8192"}, // 4096 + 8 = 4104 > 4096
	}
	for _, tc := range cases {
		p, err := Kmalloc(tc.size)
		if err != nil {
			t.Fatalf("Kmalloc(%d): %v", tc.size, err)
		}
		if got := bucketNameOf(p); got != tc.want {
			t.Errorf("Kmalloc(%d) routed to %q, want %q", tc.size, got, tc.want)
		}
		Kfree(p)
	}
}

func TestKmallocRejectsOversizedRequest(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Kmalloc with an oversized request: want panic, got none")
		}
		if _, ok := r.(error); !ok {
			t.Fatalf("recovered value %v is not an error", r)
		}
	}()

	tooBig := uintptr(1) << uint(kmallocMaxOrder+1)
	Kmalloc(tooBig)
}

func TestKfreeRoundTrip(t *testing.T) {
	p, err := Kmalloc(200)
	if err != nil {
		t.Fatalf("Kmalloc: %v", err)
	}
	buf := unsafe.Slice((*byte)(p), 200)
	for i := range buf {
		buf[i] = byte(i)
	}
	for i := range buf {
		if buf[i] != byte(i) {
			t.Fatalf("byte %d corrupted before Kfree", i)
		}
	}
	Kfree(p)
}
