package arena

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// ErrFull is returned by Alloc/AllocN once a pool's backing buffer is
// exhausted. There is no deallocation within a generation; recovery is
// always "flip to the other generation," handled by the caller.
var ErrFull = errors.New("arena: pool exhausted")

// Pool is a fixed-capacity bump allocator for T. Allocation is lock-free:
// a single atomic counter reserves a contiguous run of slots, and the
// backing array never moves or grows, so pointers into it stay valid for
// the pool's lifetime.
type Pool[T any] struct {
	slots []T
	next  atomic.Uint32
}

// NewPool preallocates a pool with room for capacity elements of T.
func NewPool[T any](capacity int) *Pool[T] {
	return &Pool[T]{slots: make([]T, capacity)}
}

// Cap returns the pool's total capacity.
func (p *Pool[T]) Cap() int { return len(p.slots) }

// Len returns the number of slots reserved so far. A failed reservation
// still advances the counter, so Len may exceed Cap() by the combined
// width of every failed reservation since the last Reset; callers only use
// indices below Cap().
func (p *Pool[T]) Len() int { return int(p.next.Load()) }

// IsFull reports whether the pool has no room left for a single element.
func (p *Pool[T]) IsFull() bool {
	return int(p.next.Load()) >= len(p.slots)
}

// Alloc reserves a single slot and returns a pointer to it along with its
// 1-based index (0 is reserved for the null Handle).
func (p *Pool[T]) Alloc() (*T, uint32, error) {
	idx := p.next.Add(1) - 1
	if int(idx) >= len(p.slots) {
		return nil, 0, ErrFull
	}
	return &p.slots[idx], idx + 1, nil
}

// AllocN reserves n contiguous slots and returns them as a slice along
// with the 1-based index of the first slot. Used to allocate a node's
// edge list as one contiguous run.
func (p *Pool[T]) AllocN(n int) ([]T, uint32, error) {
	if n == 0 {
		return nil, 0, nil
	}
	start := p.next.Add(uint32(n)) - uint32(n)
	if int(start)+n > len(p.slots) {
		return nil, 0, ErrFull
	}
	return p.slots[start : start+uint32(n) : start+uint32(n)], start + 1, nil
}

// Get dereferences a 1-based index produced by Alloc/AllocN.
func (p *Pool[T]) Get(index uint32) *T {
	return &p.slots[index-1]
}

// Reset rewinds the bump pointer to the start, recycling the whole pool
// for the next generation. Slot contents are left as-is; every caller
// fully reinitializes a slot's fields immediately after allocating it, so
// stale data from a prior generation is never observed.
func (p *Pool[T]) Reset() {
	p.next.Store(0)
}
