package handle

type slot[T any] struct {
	Value      T      `json:"value"`
	Generation uint64 `json:"generation"`
}

// SlotMap is a sparse array mapping handles to values with
// generation-checked access. It keeps its own generation bookkeeping and is
// usually driven by handles from an Allocator, but nothing enforces that.
type SlotMap[T any] struct {
	Slots []*slot[T] `json:"slots"`
}

// Insert stores the value under the handle's index, growing the backing
// storage as needed. A write whose generation is older than the stored one
// is dropped so that slot contents never regress to a stale lifetime.
func (m *SlotMap[T]) Insert(h Handle, value T) {
	if h.Index < 0 {
		return
	}
	for len(m.Slots) <= h.Index {
		m.Slots = append(m.Slots, nil)
	}
	if existing := m.Slots[h.Index]; existing != nil && existing.Generation > h.Generation {
		return
	}
	m.Slots[h.Index] = &slot[T]{Value: value, Generation: h.Generation}
}

// Get returns the value for the handle. Both staler and newer generation
// mismatches miss.
func (m *SlotMap[T]) Get(h Handle) (T, bool) {
	var zero T
	entry := m.lookup(h)
	if entry == nil {
		return zero, false
	}
	return entry.Value, true
}

// GetMut returns a pointer into the slot for in-place mutation, or nil on a
// generation mismatch.
func (m *SlotMap[T]) GetMut(h Handle) *T {
	entry := m.lookup(h)
	if entry == nil {
		return nil
	}
	return &entry.Value
}

// Remove clears the slot at the handle's index unconditionally, with no
// generation check.
func (m *SlotMap[T]) Remove(h Handle) {
	if h.Index >= 0 && h.Index < len(m.Slots) {
		m.Slots[h.Index] = nil
	}
}

func (m *SlotMap[T]) lookup(h Handle) *slot[T] {
	if h.Index < 0 || h.Index >= len(m.Slots) {
		return nil
	}
	entry := m.Slots[h.Index]
	if entry == nil || entry.Generation != h.Generation {
		return nil
	}
	return entry
}
