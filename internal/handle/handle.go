// Package handle maps opaque integer handles to Go values so foreign
// callers never hold Go pointers.
//
// A Handle packs a slot index and a generation. Releasing a slot bumps its
// generation, so a stale handle to a reused slot no longer resolves.
package handle

import "sync"

// Handle identifies a live value in a Table. Zero is never issued.
type Handle uint64

// Invalid is the zero handle.
const Invalid Handle = 0

func makeHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index+1))
}

func (h Handle) split() (index, gen uint32, ok bool) {
	low := uint32(h)
	if low == 0 {
		return 0, 0, false
	}
	return low - 1, uint32(h >> 32), true
}

type slot[T any] struct {
	value T
	gen   uint32
	live  bool
}

// Table is a generation-checked arena. It is safe for concurrent use.
type Table[T any] struct {
	mu    sync.RWMutex
	slots []slot[T]
	free  []uint32
	live  int
}

// Insert stores v and returns its handle.
func (t *Table[T]) Insert(v T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.slots = append(t.slots, slot[T]{gen: 1})
		idx = uint32(len(t.slots) - 1)
	}
	s := &t.slots[idx]
	s.value = v
	s.live = true
	t.live++
	return makeHandle(idx, s.gen)
}

// Get returns the value for h. ok is false for the zero handle, unknown
// handles, and handles whose value was released.
func (t *Table[T]) Get(h Handle) (v T, ok bool) {
	idx, gen, valid := h.split()
	if !valid {
		return v, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(idx) >= len(t.slots) {
		return v, false
	}
	s := t.slots[idx]
	if !s.live || s.gen != gen {
		return v, false
	}
	return s.value, true
}

// Release removes h and returns the value it held. Releasing an invalid or
// already released handle returns ok == false and changes nothing.
func (t *Table[T]) Release(h Handle) (v T, ok bool) {
	idx, gen, valid := h.split()
	if !valid {
		return v, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(idx) >= len(t.slots) {
		return v, false
	}
	s := &t.slots[idx]
	if !s.live || s.gen != gen {
		return v, false
	}
	v = s.value
	var zero T
	s.value = zero
	s.live = false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	t.free = append(t.free, idx)
	t.live--
	return v, true
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}
