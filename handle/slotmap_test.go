package handle

import "testing"

func TestSlotMapInsertGet(t *testing.T) {
	var a Allocator
	var m SlotMap[int]

	h, _ := a.Allocate()
	m.Insert(h, 3)
	if v, ok := m.Get(h); !ok || v != 3 {
		t.Fatalf("Get(%v) = %d,%v; expected 3,true", h, v, ok)
	}

	if p := m.GetMut(h); p == nil {
		t.Fatal("GetMut returned nil for live handle")
	} else {
		*p = 10
	}
	if v, _ := m.Get(h); v != 10 {
		t.Errorf("Get after GetMut = %d; expected 10", v)
	}
}

func TestSlotMapGenerationMismatch(t *testing.T) {
	var m SlotMap[int]

	h := Handle{Index: 2, Generation: 5}
	m.Insert(h, 42)

	// Exact match only: staler and newer generations both miss.
	for _, generation := range []uint64{4, 6} {
		probe := Handle{Index: h.Index, Generation: generation}
		if _, ok := m.Get(probe); ok {
			t.Errorf("Get(%v) hit; expected miss", probe)
		}
		if m.GetMut(probe) != nil {
			t.Errorf("GetMut(%v) hit; expected miss", probe)
		}
	}
}

func TestSlotMapStaleWriteDropped(t *testing.T) {
	var m SlotMap[string]

	current := Handle{Index: 0, Generation: 3}
	stale := Handle{Index: 0, Generation: 2}

	m.Insert(current, "current")
	m.Insert(stale, "stale")

	if v, ok := m.Get(current); !ok || v != "current" {
		t.Errorf("stale write clobbered slot: got %q,%v", v, ok)
	}
	if _, ok := m.Get(stale); ok {
		t.Error("stale handle reads the slot after dropped write")
	}
}

func TestSlotMapEqualGenerationOverwrites(t *testing.T) {
	var m SlotMap[string]

	h := Handle{Index: 1, Generation: 7}
	m.Insert(h, "first")
	m.Insert(h, "second")

	if v, _ := m.Get(h); v != "second" {
		t.Errorf("Get = %q; expected same-generation write to overwrite", v)
	}
}

func TestSlotMapRemove(t *testing.T) {
	var m SlotMap[int]

	h := Handle{Index: 4, Generation: 9}
	m.Insert(h, 1)
	m.Remove(h)

	// Remove clears unconditionally; any generation misses afterwards.
	for generation := uint64(0); generation < 12; generation += 3 {
		if _, ok := m.Get(Handle{Index: 4, Generation: generation}); ok {
			t.Errorf("Get hit generation %d after Remove", generation)
		}
	}
}

func TestSlotMapGapFill(t *testing.T) {
	var m SlotMap[int]

	m.Insert(Handle{Index: 5}, 50)
	if len(m.Slots) != 6 {
		t.Fatalf("backing storage length = %d; expected 6", len(m.Slots))
	}
	for i := 0; i < 5; i++ {
		if m.Slots[i] != nil {
			t.Errorf("gap slot %d not empty", i)
		}
	}
}

func TestSlotMapWithAllocatorLifecycle(t *testing.T) {
	var a Allocator
	var m SlotMap[string]

	h1, _ := a.Allocate()
	h2, _ := a.Allocate()
	m.Insert(h1, "one")
	m.Insert(h2, "two")

	m.Remove(h1)
	a.Deallocate(h1)

	h3, _ := a.Allocate()
	m.Insert(h3, "three")

	if _, ok := m.Get(h1); ok {
		t.Error("retired handle reads reused slot")
	}
	if v, _ := m.Get(h3); v != "three" {
		t.Errorf("reused slot = %q; expected \"three\"", v)
	}
	if v, _ := m.Get(h2); v != "two" {
		t.Errorf("untouched slot = %q; expected \"two\"", v)
	}
}

func TestBrokerRing(t *testing.T) {
	b := NewBroker[int](2)

	sub := b.Subscribe()
	for _, v := range []int{1, 2, 3} {
		b.Publish(v)
	}

	// Capacity 2: the oldest entry is overwritten.
	got := b.Poll(sub)
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("Poll = %v; expected [2 3]", got)
	}
	if got := b.Poll(sub); got != nil {
		t.Errorf("second Poll = %v; expected drained ring", got)
	}

	b.Unsubscribe(sub)
	b.Publish(4)
	if got := b.Poll(sub); got != nil {
		t.Errorf("Poll after Unsubscribe = %v; expected nil", got)
	}
	if n := b.Subscribers(); n != 0 {
		t.Errorf("Subscribers = %d; expected 0", n)
	}
}
