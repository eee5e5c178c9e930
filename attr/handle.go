package attr

import "iter"

// Handle is the typed accessor of one attribute. It does not own the
// attribute's storage; the registry does. Once the attribute is detached or
// the registry closed, the handle is invalid for good and every operation
// returns ErrAttributeInvalid.
//
// Handles are not safe for concurrent use.
type Handle[T any] struct {
	id    uint32
	name  string
	store *typedStore[T]
	bound bool
}

// Name returns the name the attribute was attached under.
func (h *Handle[T]) Name() string {
	return h.name
}

// Bound reports whether the handle still refers to a live attribute.
func (h *Handle[T]) Bound() bool {
	return h.bound && h.store != nil && !h.store.closed
}

// invalidate is called by the store on teardown.
func (h *Handle[T]) invalidate() {
	h.bound = false
	h.store = nil
}

// checkBound returns the live store or ErrAttributeInvalid. The store's own
// closed flag is authoritative, so copies of a handle die with the store too.
func (h *Handle[T]) checkBound() (*typedStore[T], error) {
	if !h.bound || h.store == nil || h.store.closed {
		return nil, attributeInvalid(h.name)
	}
	return h.store, nil
}

// Set stores v at index i.
func (h *Handle[T]) Set(i Index, v T) error {
	s, err := h.checkBound()
	if err != nil {
		return err
	}
	s.slots.set(i, v)
	return nil
}

// Get returns a copy of the value at i. The boolean is false if no value was
// ever set at i or it has been invalidated since.
func (h *Handle[T]) Get(i Index) (T, bool, error) {
	var zero T
	s, err := h.checkBound()
	if err != nil {
		return zero, false, err
	}
	v, ok := s.slots.get(i)
	return v, ok, nil
}

// IsValid reports whether a value is currently set at i.
func (h *Handle[T]) IsValid(i Index) (bool, error) {
	s, err := h.checkBound()
	if err != nil {
		return false, err
	}
	return s.slots.isValid(i), nil
}

// ReadAt returns a copy of the value at i, or ErrValueMissing if none is set.
func (h *Handle[T]) ReadAt(i Index) (T, error) {
	var zero T
	s, err := h.checkBound()
	if err != nil {
		return zero, err
	}
	v, ok := s.slots.get(i)
	if !ok {
		return zero, valueMissing(h.name, i)
	}
	return v, nil
}

// WriteAt stores v at i and returns the stored value.
func (h *Handle[T]) WriteAt(i Index, v T) (T, error) {
	var zero T
	s, err := h.checkBound()
	if err != nil {
		return zero, err
	}
	s.slots.set(i, v)
	stored, _ := s.slots.get(i)
	return stored, nil
}

// Assign writes v to every index in order and returns the stored value.
// All indices observe the same value afterwards.
func (h *Handle[T]) Assign(v T, indices ...Index) (T, error) {
	var zero T
	if _, err := h.checkBound(); err != nil {
		return zero, err
	}

	stored := v
	for _, i := range indices {
		var err error
		if stored, err = h.WriteAt(i, stored); err != nil {
			return zero, err
		}
	}
	return stored, nil
}

// At returns an accessor for index i. It neither reads nor writes.
func (h *Handle[T]) At(i Index) IndexAccessor[T] {
	return IndexAccessor[T]{h: h, i: i}
}

// Size returns the number of indices currently holding a value.
func (h *Handle[T]) Size() (int, error) {
	s, err := h.checkBound()
	if err != nil {
		return 0, err
	}
	return s.slots.count, nil
}

// All returns an iterator over (index, value) pairs in ascending index order,
// skipping indices without a value. Each call starts a fresh traversal.
//
// Writing to or invalidating the attribute while iterating is allowed but the
// values observed by the remaining steps are unspecified. Iteration ends early
// if the attribute is detached.
func (h *Handle[T]) All() (iter.Seq2[Index, T], error) {
	if _, err := h.checkBound(); err != nil {
		return nil, err
	}

	return func(yield func(Index, T) bool) {
		s, err := h.checkBound()
		if err != nil {
			return
		}
		for i, v := range s.slots.all() {
			if !h.Bound() {
				return
			}
			if !yield(i, v) {
				return
			}
		}
	}, nil
}

// Values returns an iterator over the set values in ascending index order.
func (h *Handle[T]) Values() (iter.Seq[T], error) {
	seq, err := h.All()
	if err != nil {
		return nil, err
	}

	return func(yield func(T) bool) {
		for _, v := range seq {
			if !yield(v) {
				return
			}
		}
	}, nil
}

// IndexAccessor stands for "index i of this attribute". Read and Write have
// the same semantics as Handle.ReadAt and Handle.WriteAt.
type IndexAccessor[T any] struct {
	h *Handle[T]
	i Index
}

// Index returns the index the accessor refers to.
func (a IndexAccessor[T]) Index() Index {
	return a.i
}

// Read returns a copy of the value, or ErrValueMissing if none is set.
func (a IndexAccessor[T]) Read() (T, error) {
	if a.h == nil {
		var zero T
		return zero, ErrAttributeInvalid
	}
	return a.h.ReadAt(a.i)
}

// Write stores v and returns the stored value.
func (a IndexAccessor[T]) Write(v T) (T, error) {
	if a.h == nil {
		var zero T
		return zero, ErrAttributeInvalid
	}
	return a.h.WriteAt(a.i, v)
}
