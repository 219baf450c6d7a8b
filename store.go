package cp3d

import "fmt"

// BodyID names a body in a space. The zero value is never a valid id.
// Ids of removed bodies stay invalid even when their slot is reused.
type BodyID uint64

// ConstraintID names a constraint in a space. The zero value is never valid.
type ConstraintID uint64

func (id BodyID) String() string {
	return fmt.Sprintf("%d.%d", handle(id).index(), handle(id).generation())
}

func (id ConstraintID) String() string {
	return fmt.Sprintf("%d.%d", handle(id).index(), handle(id).generation())
}

// handle packs a slot index in the low 32 bits and the slot generation in
// the high 32 bits. Generations start at 1.
type handle uint64

func makeHandle(index, generation uint32) handle {
	return handle(uint64(generation)<<32 | uint64(index))
}

func (h handle) index() uint32 {
	return uint32(h)
}

func (h handle) generation() uint32 {
	return uint32(h >> 32)
}

type slot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// handleTable is a fixed capacity table with generational handles. Freed slots
// are reused last in, first out so identical call sequences hand out identical
// handles.
type handleTable[T any] struct {
	slots    []slot[T]
	free     []uint32
	capacity int
	count    int
}

func newHandleTable[T any](capacity int) *handleTable[T] {
	return &handleTable[T]{capacity: capacity}
}

func (t *handleTable[T]) insert(value T) (handle, bool) {
	if t.count >= t.capacity {
		return 0, false
	}

	var index uint32
	if n := len(t.free); n > 0 {
		index = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		index = uint32(len(t.slots))
		t.slots = append(t.slots, slot[T]{})
	}

	s := &t.slots[index]
	s.generation++
	s.value = value
	s.live = true
	t.count++
	return makeHandle(index, s.generation), true
}

func (t *handleTable[T]) get(h handle) (T, bool) {
	var zero T
	index := h.index()
	if h == 0 || int(index) >= len(t.slots) {
		return zero, false
	}
	s := &t.slots[index]
	if !s.live || s.generation != h.generation() {
		return zero, false
	}
	return s.value, true
}

func (t *handleTable[T]) remove(h handle) (T, bool) {
	value, ok := t.get(h)
	if !ok {
		return value, false
	}
	s := &t.slots[h.index()]
	var zero T
	s.value = zero
	s.live = false
	t.free = append(t.free, h.index())
	t.count--
	return value, true
}

// each visits live entries in slot order.
func (t *handleTable[T]) each(f func(h handle, value T)) {
	for i := range t.slots {
		s := &t.slots[i]
		if s.live {
			f(makeHandle(uint32(i), s.generation), s.value)
		}
	}
}

func (t *handleTable[T]) len() int {
	return t.count
}

func (t *handleTable[T]) reset() {
	t.slots = nil
	t.free = nil
	t.count = 0
}
