package fsmx

import "fmt"

// arena is a block-allocated table of stable-index slots.
//
// Blocks are never reallocated, so a slot index stays valid for the lifetime of the
// element placed in it. A fixed arena owns exactly one block sized at construction;
// an expandable arena appends blocks of the same size on demand, up to limit slots.
// Released slots are recycled lowest-index first.
type arena[T any] struct {
	blocks     [][]*T
	blockSize  int
	limit      int
	expandable bool
	free       []int
	next       int // first never-used slot
	count      int
}

func newArena[T any](capacity, limit int, expandable bool) (*arena[T], error) {
	if capacity <= 0 {
		if !expandable {
			return nil, fmt.Errorf("%w: fixed arena needs a positive capacity", ErrAllocation)
		}
		capacity = 1
	}
	if capacity > limit {
		return nil, fmt.Errorf("%w: capacity %d exceeds limit %d", ErrAllocation, capacity, limit)
	}
	return &arena[T]{
		blocks:     [][]*T{make([]*T, capacity)},
		blockSize:  capacity,
		limit:      limit,
		expandable: expandable,
	}, nil
}

// put stores v in a free slot and returns its index.
func (a *arena[T]) put(v *T) (int, error) {
	if n := len(a.free); n > 0 {
		idx := a.popFree()
		*a.slot(idx) = v
		a.count++
		return idx, nil
	}
	if a.next == a.cap() {
		if !a.expandable {
			return -1, fmt.Errorf("%w: capacity %d exhausted", ErrAllocation, a.cap())
		}
		if a.cap()+a.blockSize > a.limit {
			return -1, fmt.Errorf("%w: growth past %d slots", ErrAllocation, a.limit)
		}
		a.blocks = append(a.blocks, make([]*T, a.blockSize))
	}
	idx := a.next
	a.next++
	*a.slot(idx) = v
	a.count++
	return idx, nil
}

// release empties the slot at idx. Releasing an empty slot is a no-op.
func (a *arena[T]) release(idx int) {
	if idx < 0 || idx >= a.next {
		return
	}
	p := a.slot(idx)
	if *p == nil {
		return
	}
	*p = nil
	a.count--
	a.pushFree(idx)
}

func (a *arena[T]) get(idx int) *T {
	if idx < 0 || idx >= a.next {
		return nil
	}
	return *a.slot(idx)
}

// each visits occupied slots in index order. Returning false stops the walk.
func (a *arena[T]) each(fn func(idx int, v *T) bool) {
	for idx := 0; idx < a.next; idx++ {
		if v := *a.slot(idx); v != nil {
			if !fn(idx, v) {
				return
			}
		}
	}
}

// reset empties every slot and drops grown blocks, keeping the first one.
func (a *arena[T]) reset() {
	first := a.blocks[0]
	clear(first)
	a.blocks = [][]*T{first}
	a.free = a.free[:0]
	a.next = 0
	a.count = 0
}

func (a *arena[T]) len() int { return a.count }

func (a *arena[T]) cap() int { return len(a.blocks) * a.blockSize }

func (a *arena[T]) slot(idx int) **T {
	return &a.blocks[idx/a.blockSize][idx%a.blockSize]
}

// free is kept sorted descending so the lowest index pops first.
func (a *arena[T]) pushFree(idx int) {
	i := len(a.free)
	a.free = append(a.free, idx)
	for i > 0 && a.free[i-1] < idx {
		a.free[i] = a.free[i-1]
		i--
	}
	a.free[i] = idx
}

func (a *arena[T]) popFree() int {
	n := len(a.free) - 1
	idx := a.free[n]
	a.free = a.free[:n]
	return idx
}
