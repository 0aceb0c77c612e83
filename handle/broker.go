package handle

// Ring is a bounded FIFO that overwrites its oldest entry when full.
type Ring[T any] struct {
	entries []T
	head    int
	count   int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{entries: make([]T, capacity)}
}

func (r *Ring[T]) Push(value T) {
	tail := (r.head + r.count) % len(r.entries)
	r.entries[tail] = value
	if r.count == len(r.entries) {
		r.head = (r.head + 1) % len(r.entries)
	} else {
		r.count++
	}
}

// Drain returns buffered entries oldest-first and empties the ring.
func (r *Ring[T]) Drain() []T {
	if r.count == 0 {
		return nil
	}
	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.entries[(r.head+i)%len(r.entries)]
	}
	r.head = 0
	r.count = 0
	return out
}

func (r *Ring[T]) Len() int { return r.count }

// Broker is a publish/subscribe table addressed by generational handles.
// Each subscriber owns a bounded ring; slow subscribers lose their oldest
// entries instead of stalling the publisher. Unsubscribing is explicit and
// retires the subscriber's handle.
type Broker[T any] struct {
	allocator Allocator
	rings     SlotMap[*Ring[T]]
	capacity  int
}

func NewBroker[T any](ringCapacity int) *Broker[T] {
	return &Broker[T]{capacity: ringCapacity}
}

func (b *Broker[T]) Subscribe() Handle {
	// Subscriber slots are uncapped, so allocation cannot fail.
	h, _ := b.allocator.Allocate()
	b.rings.Insert(h, NewRing[T](b.capacity))
	return h
}

func (b *Broker[T]) Unsubscribe(h Handle) {
	if !b.allocator.IsAllocated(h) {
		return
	}
	b.rings.Remove(h)
	b.allocator.Deallocate(h)
}

func (b *Broker[T]) Publish(value T) {
	for _, h := range b.allocator.AllocatedHandles() {
		if ring, ok := b.rings.Get(h); ok {
			ring.Push(value)
		}
	}
}

// Poll drains the subscriber's ring. A stale or retired handle yields nil.
func (b *Broker[T]) Poll(h Handle) []T {
	if !b.allocator.IsAllocated(h) {
		return nil
	}
	ring, ok := b.rings.Get(h)
	if !ok {
		return nil
	}
	return ring.Drain()
}

func (b *Broker[T]) Subscribers() int {
	return len(b.allocator.AllocatedHandles())
}
