package types

import "sync"

// Throwability is the per-type marker deciding whether instances may be
// thrown into the trash.
type Throwability int

const (
	// ThrowableUnspecified carries no marker; instances are throwable.
	ThrowableUnspecified Throwability = iota
	// ThrowableYes explicitly allows throwing.
	ThrowableYes
	// ThrowableNo explicitly forbids throwing.
	ThrowableNo
)

// TypeDefinition declares the capabilities of a content type.
type TypeDefinition struct {
	Name      string
	Throwable Throwability
}

// TypeRegistry maps content type names to their definitions. Types that were
// never registered behave as if registered with ThrowableUnspecified.
// A TypeRegistry is safe for concurrent use.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]TypeDefinition
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]TypeDefinition)}
}

// DefaultRegistry returns a registry in which the root and the trash
// container types are not throwable.
func DefaultRegistry() *TypeRegistry {
	r := NewTypeRegistry()
	r.Register(TypeDefinition{Name: RootType, Throwable: ThrowableNo})
	r.Register(TypeDefinition{Name: TrashContainerType, Throwable: ThrowableNo})
	return r
}

// Register adds or replaces a type definition.
func (r *TypeRegistry) Register(def TypeDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[def.Name] = def
}

// Definition returns the definition of typeName.
func (r *TypeRegistry) Definition(typeName string) (TypeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.types[typeName]
	return def, ok
}

// IsThrowable reports whether instances of typeName may be thrown. Only an
// explicit ThrowableNo marker forbids it.
func (r *TypeRegistry) IsThrowable(typeName string) bool {
	def, ok := r.Definition(typeName)
	if !ok {
		return true
	}
	return def.Throwable != ThrowableNo
}
