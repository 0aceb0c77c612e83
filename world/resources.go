package world

import "reflect"

// Registry holds at most one value per Go type. Generic accessors key by
// the compile-time type, so callers never downcast; insertion overwrites.
// Resource lifetime is independent of the handle space.
type Registry struct {
	entries map[reflect.Type]any
}

func (r *Registry) insert(key reflect.Type, value any) {
	if r.entries == nil {
		r.entries = make(map[reflect.Type]any)
	}
	r.entries[key] = value
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// PutResource stores the value for type T, replacing any previous one.
func PutResource[T any](r *Registry, value T) {
	r.insert(typeKey[T](), value)
}

// FindResource returns the stored value for type T, if present.
func FindResource[T any](r *Registry) (T, bool) {
	var zero T
	if r.entries == nil {
		return zero, false
	}
	value, ok := r.entries[typeKey[T]()]
	if !ok {
		return zero, false
	}
	return value.(T), true
}

func RemoveResource[T any](r *Registry) {
	delete(r.entries, typeKey[T]())
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
