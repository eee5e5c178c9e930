package attr

import (
	"maps"
	"slices"

	"go.uber.org/zap"
)

// Registry owns the named attributes of one entity collection. Each
// attribute is stored once, under a unique name; the registry hands out
// handles to it and tears it down on Detach or Close.
//
// A Registry and its handles are meant to be used from one goroutine.
type Registry struct {
	stores map[string]Store
	opts   Options
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Registry{
		stores: make(map[string]Store),
		opts:   o,
		logger: o.Logger.Named("attr"),
	}
}

// Attach creates a new attribute with values of type T under name and returns
// a handle bound to it. It fails with ErrNameTaken if any attribute, of any
// type, is already registered under name.
func Attach[T any](r *Registry, name string) (*Handle[T], error) {
	if _, exists := r.stores[name]; exists {
		return nil, nameTaken(name)
	}

	store := newTypedStore[T](name, r.opts.InitialCapacity)
	r.stores[name] = store

	r.logger.Debug("attribute attached",
		zap.String("name", name),
		zap.Stringer("type", store.Type()),
	)
	return store.bind(), nil
}

// Get returns a new handle to the attribute registered under name. The
// handle shares its storage with every other handle of the attribute.
func Get[T any](r *Registry, name string) (*Handle[T], error) {
	s, ok := r.stores[name]
	if !ok {
		return nil, notFound(name)
	}

	store, err := asTyped[T](s)
	if err != nil {
		return nil, err
	}
	return store.bind(), nil
}

// Logger returns the logger the registry was configured with.
func (r *Registry) Logger() *zap.Logger {
	return r.opts.Logger
}

// Lookup returns the type-erased store of the attribute registered under name.
func (r *Registry) Lookup(name string) (Store, error) {
	s, ok := r.stores[name]
	if !ok {
		return nil, notFound(name)
	}
	return s, nil
}

// Has reports whether an attribute is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.stores[name]
	return ok
}

// Len returns the number of registered attributes.
func (r *Registry) Len() int {
	return len(r.stores)
}

// Detach removes the attribute registered under name. Every handle bound to
// it becomes invalid before the storage is released. The name can be reused
// immediately.
func (r *Registry) Detach(name string) error {
	s, ok := r.stores[name]
	if !ok {
		return notFound(name)
	}

	s.invalidateAll()
	delete(r.stores, name)

	r.logger.Debug("attribute detached", zap.String("name", name))
	return nil
}

// Enumerate returns the names of all registered attributes.
// The slice is a snapshot; callers must not rely on its order.
func (r *Registry) Enumerate() []string {
	return slices.Sorted(maps.Keys(r.stores))
}

// InvalidateIndex drops the value at i from every attribute. Host collections
// call it when entity i is removed.
func (r *Registry) InvalidateIndex(i Index) {
	for _, s := range r.stores {
		s.InvalidateIndex(i)
	}
}

// Close detaches every attribute. All outstanding handles become invalid.
// The registry stays usable and is empty afterwards.
func (r *Registry) Close() {
	for _, s := range r.stores {
		s.invalidateAll()
	}
	n := len(r.stores)
	clear(r.stores)

	r.logger.Debug("registry closed", zap.Int("attributes", n))
}
