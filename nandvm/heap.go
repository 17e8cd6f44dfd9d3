package nandvm

import "github.com/jcorbin/nandlang/internal/mem"

// heap backs malloc/free/deref/assign with a bit-addressed arena: handle ==
// address, bump-allocated. The spec describes a handle as referring to "the
// handle's current position" for deref, but no other intrinsic ever moves a
// handle, so that phrase is read here as just "the address it was returned
// with" -- see DESIGN.md for the reasoning.
//
// mem.Ints (grounded on the teacher's paged integer memory, internal/mem)
// is reused directly as the backing store: a bit fits in an int, and the
// paging means a program that only ever touches a few live handles doesn't
// pay for the whole address space.
type heap struct {
	mem  mem.Ints
	next uint64
}

func newHeap(pageSize uint) *heap {
	h := &heap{}
	h.mem.PageSize = pageSize
	return h
}

// alloc reserves n contiguous bit addresses and returns the handle (address)
// of the first one. There is no free list: free only marks intent, matching
// a NAND machine's general unwillingness to reuse storage behind a
// program's back.
func (h *heap) alloc(n uint64) uint64 {
	addr := h.next
	h.next += n
	return addr
}

func (h *heap) load(handle uint64) (bool, error) {
	v, err := h.mem.Load(uint(handle))
	return v != 0, err
}

func (h *heap) store(handle uint64, bit bool) error {
	v := 0
	if bit {
		v = 1
	}
	return h.mem.Stor(uint(handle), v)
}
