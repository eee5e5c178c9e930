package attr

import (
	"reflect"
	"weak"

	"github.com/kamstrup/intmap"
)

// Store is the type-erased view of one named attribute. The registry and host
// collections manage attributes through it without knowing the value type.
type Store interface {
	// Name returns the attribute name, unique within its registry.
	Name() string
	// Type returns the value type fixed when the attribute was attached.
	Type() reflect.Type
	// IsValid reports whether a value is currently set at i.
	IsValid(i Index) bool
	// Len returns the number of indices holding a valid value.
	Len() int
	// HighWater returns one past the highest index ever written, or 0 once
	// the attribute has been detached.
	HighWater() int
	// LiveHandles returns the number of bound handles still reachable.
	LiveHandles() int
	// InvalidateIndex drops the value at i. Hosts call it when entity i is deleted.
	InvalidateIndex(i Index)

	// invalidateAll turns every handle bound to the store invalid and
	// releases the stored values. Only the registry tears stores down.
	invalidateAll()
}

// typedStore is the Store implementation for values of type T.
//
// Handles are tracked through weak pointers: the store can reach every handle
// to invalidate it, but never keeps one alive.
type typedStore[T any] struct {
	name       string
	typ        reflect.Type
	slots      *slotSet[T]
	handles    *intmap.Map[uint32, weak.Pointer[Handle[T]]]
	nextHandle uint32
	closed     bool
}

func newTypedStore[T any](name string, capacity int) *typedStore[T] {
	return &typedStore[T]{
		name:    name,
		typ:     reflect.TypeFor[T](),
		slots:   newSlotSet[T](capacity),
		handles: intmap.New[uint32, weak.Pointer[Handle[T]]](4),
	}
}

func (s *typedStore[T]) Name() string {
	return s.name
}

func (s *typedStore[T]) Type() reflect.Type {
	return s.typ
}

func (s *typedStore[T]) IsValid(i Index) bool {
	if s.closed {
		return false
	}
	return s.slots.isValid(i)
}

func (s *typedStore[T]) Len() int {
	if s.closed {
		return 0
	}
	return s.slots.count
}

func (s *typedStore[T]) HighWater() int {
	if s.closed {
		return 0
	}
	return s.slots.highWater()
}

func (s *typedStore[T]) LiveHandles() int {
	live := 0
	s.handles.ForEach(func(_ uint32, wp weak.Pointer[Handle[T]]) bool {
		if h := wp.Value(); h != nil && h.bound {
			live++
		}
		return true
	})
	return live
}

func (s *typedStore[T]) InvalidateIndex(i Index) {
	if s.closed {
		return
	}
	s.slots.invalidate(i)
}

// bind creates a new handle bound to this store.
func (s *typedStore[T]) bind() *Handle[T] {
	s.pruneHandles()

	s.nextHandle++
	h := &Handle[T]{
		id:    s.nextHandle,
		name:  s.name,
		store: s,
		bound: true,
	}
	s.handles.Put(h.id, weak.Make(h))
	return h
}

// pruneHandles removes entries whose handle has been garbage collected.
func (s *typedStore[T]) pruneHandles() {
	var dead []uint32
	s.handles.ForEach(func(id uint32, wp weak.Pointer[Handle[T]]) bool {
		if wp.Value() == nil {
			dead = append(dead, id)
		}
		return true
	})
	for _, id := range dead {
		s.handles.Del(id)
	}
}

func (s *typedStore[T]) invalidateAll() {
	if s.closed {
		return
	}
	s.closed = true

	s.handles.ForEach(func(_ uint32, wp weak.Pointer[Handle[T]]) bool {
		if h := wp.Value(); h != nil {
			h.invalidate()
		}
		return true
	})
	s.handles.Clear()
	s.slots.reset()
}

// asTyped recovers the typed store behind s. The assertion is gated on the
// declared type so a mismatch is reported, never forced.
func asTyped[T any](s Store) (*typedStore[T], error) {
	requested := reflect.TypeFor[T]()
	if s.Type() != requested {
		return nil, &TypeMismatchError{
			Name:      s.Name(),
			Declared:  s.Type(),
			Requested: requested,
		}
	}

	ts, ok := s.(*typedStore[T])
	if !ok {
		return nil, &TypeMismatchError{
			Name:      s.Name(),
			Declared:  s.Type(),
			Requested: requested,
		}
	}
	return ts, nil
}
