package editable

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds one layer of a variant. It receives the already assembled
// parent layer (the zero value for a root variant) and returns the layer that
// wraps it. Layers normally embed the parent so unshadowed methods are
// promoted, and call the embedded parent explicitly to reach the parent's
// version of an overridden method:
//
//	func(parent Action) Action {
//	    return &toggleAction{Action: parent}
//	}
//
//	func (a *toggleAction) Execute(ctx context.Context, trigger, container *dom.Node) (any, error) {
//	    a.Action.Execute(ctx, trigger, container) // parent implementation
//	    ...
//	}
type Factory[T any] func(parent T) T

// Binder is implemented by root layers that dispatch through the fully
// assembled variant. The registry calls Bind on the root layer after every
// layer has been built, so calls made through self reach the most derived
// override.
type Binder[T any] interface {
	Bind(self T, name string)
}

type entry[T any] struct {
	name    string
	parent  string
	factory Factory[T]
}

// Registry stores named variants of T with single-parent inheritance.
//
// Registries are populated once at startup and read-only afterwards.
type Registry[T any] struct {
	kind    string
	mu      sync.RWMutex
	entries map[string]*entry[T]
}

// NewRegistry creates an empty registry. kind names the variant family in
// error messages.
func NewRegistry[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:    kind,
		entries: make(map[string]*entry[T]),
	}
}

// Register adds a variant. parent, when given, must already be registered.
func (r *Registry[T]) Register(name string, f Factory[T], parent ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %s %q", ErrDuplicateName, r.kind, name)
	}
	e := &entry[T]{name: name, factory: f}
	if len(parent) > 0 && parent[0] != "" {
		if _, ok := r.entries[parent[0]]; !ok {
			return fmt.Errorf("%w: %s %q (parent of %q)", ErrUnknownVariant, r.kind, parent[0], name)
		}
		e.parent = parent[0]
	}
	r.entries[name] = e
	return nil
}

// MustRegister is Register that panics on failure.
func (r *Registry[T]) MustRegister(name string, f Factory[T], parent ...string) {
	if err := r.Register(name, f, parent...); err != nil {
		panic(err)
	}
}

// Has reports whether name is registered.
func (r *Registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the constructible variant registered under name.
func (r *Registry[T]) Resolve(name string) (*Variant[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrUnknownVariant, r.kind, name)
	}
	var chain []*entry[T]
	for ; e != nil; e = r.entries[e.parent] {
		chain = append([]*entry[T]{e}, chain...)
		if e.parent == "" {
			break
		}
	}
	return &Variant[T]{name: name, chain: chain}, nil
}

// New resolves name and constructs a fresh instance.
func (r *Registry[T]) New(name string) (T, error) {
	v, err := r.Resolve(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.New(), nil
}

// Variant is a resolved inheritance chain, root first.
type Variant[T any] struct {
	name  string
	chain []*entry[T]
}

// Name returns the name the variant was resolved under.
func (v *Variant[T]) Name() string {
	return v.name
}

// Lineage returns the names in the chain from the root to this variant.
func (v *Variant[T]) Lineage() []string {
	out := make([]string, len(v.chain))
	for i, e := range v.chain {
		out[i] = e.name
	}
	return out
}

// New builds every layer from the root down and binds the result.
func (v *Variant[T]) New() T {
	var inst, root T
	for i, e := range v.chain {
		inst = e.factory(inst)
		if i == 0 {
			root = inst
		}
	}
	if b, ok := any(root).(Binder[T]); ok {
		b.Bind(inst, v.name)
	}
	return inst
}
