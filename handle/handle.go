// Package handle implements generational handles: (index, generation) pairs
// that identify a logical slot independently of physical slot reuse.
package handle

import (
	"github.com/pkg/errors"
)

var ErrOutOfHandles = errors.New("handle allocator exhausted")

// Handle identifies a logical entity. Two handles with the same index but
// different generations refer to different lifetimes of the same slot.
type Handle struct {
	Index      int    `json:"index"`
	Generation uint64 `json:"generation"`
}

type allocation struct {
	Allocated  bool   `json:"allocated"`
	Generation uint64 `json:"generation"`
}

// Allocator issues handles from a free list of retired slot indices.
// A handle (i, g) is valid iff i is in range, the stored generation equals g
// and the slot is marked allocated.
type Allocator struct {
	Allocations []allocation `json:"allocations"`
	FreeList    []int        `json:"free_list"`

	// MaxHandles caps the number of physical slots when non-zero.
	MaxHandles int `json:"max_handles,omitempty"`
}

// Allocate reuses a retired index if one is available, bumping its
// generation so stale handles to the slot stay invalid forever.
func (a *Allocator) Allocate() (Handle, error) {
	if n := len(a.FreeList); n != 0 {
		index := a.FreeList[n-1]
		a.FreeList = a.FreeList[:n-1]
		a.Allocations[index].Generation++
		a.Allocations[index].Allocated = true
		return Handle{Index: index, Generation: a.Allocations[index].Generation}, nil
	}
	if a.MaxHandles != 0 && len(a.Allocations) >= a.MaxHandles {
		return Handle{}, ErrOutOfHandles
	}
	a.Allocations = append(a.Allocations, allocation{Allocated: true})
	return Handle{Index: len(a.Allocations) - 1}, nil
}

// Deallocate retires the handle's index. Deallocating a handle that is not
// currently allocated is a no-op, so double frees are safe. The generation
// is not bumped here; that happens on the next Allocate that reuses the slot.
func (a *Allocator) Deallocate(h Handle) {
	if !a.IsAllocated(h) {
		return
	}
	a.Allocations[h.Index].Allocated = false
	a.FreeList = append(a.FreeList, h.Index)
}

func (a *Allocator) IsAllocated(h Handle) bool {
	return h.Index >= 0 && h.Index < len(a.Allocations) &&
		a.Allocations[h.Index].Generation == h.Generation &&
		a.Allocations[h.Index].Allocated
}

// AllocatedHandles lists live handles in ascending index order.
func (a *Allocator) AllocatedHandles() []Handle {
	handles := make([]Handle, 0, len(a.Allocations))
	for index, allocation := range a.Allocations {
		if allocation.Allocated {
			handles = append(handles, Handle{Index: index, Generation: allocation.Generation})
		}
	}
	return handles
}
