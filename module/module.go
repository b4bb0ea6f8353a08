// Package module implements the name-to-initializer registry that backs
// Satori's `import` statement: a module name maps to an initializer that
// binds its natives into the VM's globals table the first time it is
// imported. Later imports of an already-loaded module are a no-op, the
// idempotent load state the spec calls for.
package module

import (
	"fmt"

	"github.com/satori-lang/satori/value"
)

// Binder is given to an Initializer so it can register its qualified
// native names without the module package needing to know about the VM's
// internal globals representation.
type Binder interface {
	Bind(qualifiedName string, fn value.NativeFunc)
}

// Initializer installs one module's natives into b.
type Initializer func(b Binder)

// UnknownModuleError is returned by Load for a name with no registered
// Initializer.
type UnknownModuleError struct{ Name string }

func (e UnknownModuleError) Error() string {
	return fmt.Sprintf("module: unknown module %q", e.Name)
}

// Registry maps module names to Initializers and tracks which have
// already run, so `import io` twice only binds io's natives once. The
// loaded set is per Registry, not per Binder: once a module has loaded,
// Load skips it for every Binder.
type Registry struct {
	initializers map[string]Initializer
	loaded       map[string]bool
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		initializers: make(map[string]Initializer),
		loaded:       make(map[string]bool),
	}
}

// Register adds name's Initializer. Re-registering an existing name
// replaces it; this is used at VM construction time to install the
// built-in modules and is not exposed to Satori source.
func (r *Registry) Register(name string, init Initializer) {
	r.initializers[name] = init
}

// Load runs name's Initializer against b exactly once across the
// Registry's lifetime. Subsequent calls with the same name are a no-op
// that still reports success, matching `import`'s idempotent semantics.
func (r *Registry) Load(name string, b Binder) error {
	if r.loaded[name] {
		return nil
	}
	init, ok := r.initializers[name]
	if !ok {
		return UnknownModuleError{Name: name}
	}
	init(b)
	r.loaded[name] = true
	return nil
}

// IsLoaded reports whether name has already been loaded.
func (r *Registry) IsLoaded(name string) bool { return r.loaded[name] }

// Names returns the registered module names in unspecified order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.initializers))
	for name := range r.initializers {
		names = append(names, name)
	}
	return names
}
