package generator

import (
	"fmt"
	"sort"
	"sync"
)

// Registry resolves the generator for a value kind through three tiers,
// first match wins:
//
//  1. the record implements Overrides and supplies a Spec for the kind;
//  2. a binding applied from Settings (named factory plus config block);
//  3. the built-in kind bindings (token, uuid, slug).
//
// Every Resolve evaluates the tiers fresh and constructs a new generator, so
// per-record reconfiguration is always observed and no configuration state is
// shared between concurrent saves. An unrecognized kind is an error, never a
// silent default.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	bindings  map[string]binding
	builtins  map[string]Factory
}

// binding is one applied settings entry.
type binding struct {
	factory Factory
	config  Config
}

// NewRegistry returns a registry with the built-in factories registered
// under their kind names and bound as the defaults for those kinds.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		bindings:  make(map[string]binding),
		builtins: map[string]Factory{
			"token": NewToken,
			"uuid":  NewUUID,
			"slug":  NewSlug,
		},
	}
	for name, f := range r.builtins {
		r.factories[name] = f
	}
	return r
}

// Register makes a factory available to settings bindings under name.
// Registering an existing name replaces it.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Apply installs s as the settings tier: each listed kind is bound to its
// named factory and config block. Previous settings bindings are discarded;
// a nil s clears the tier. Naming a factory that was never registered is an
// error and leaves the registry unchanged.
func (r *Registry) Apply(s *Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s == nil {
		r.bindings = make(map[string]binding)
		return nil
	}
	next := make(map[string]binding, len(s.Generators))
	for kind, entry := range s.Generators {
		f, ok := r.factories[entry.Use]
		if !ok {
			return fmt.Errorf("generator factory not registered: %s", entry.Use)
		}
		next[kind] = binding{factory: f, config: entry.Config.Clone()}
	}
	r.bindings = next
	return nil
}

// Resolve returns a fresh generator for kind. record and field feed the
// per-record override tier; either may be zero.
func (r *Registry) Resolve(kind string, record any, field string) (ValueGenerator, error) {
	if o, ok := record.(Overrides); ok {
		if spec, found := o.GeneratorFor(kind, field); found {
			g, err := spec.build()
			if err != nil {
				return nil, fmt.Errorf("override for %s: %w", kind, err)
			}
			return g, nil
		}
	}
	r.mu.RLock()
	b, bound := r.bindings[kind]
	builtin, known := r.builtins[kind]
	r.mu.RUnlock()
	if bound {
		return b.factory(b.config)
	}
	if known {
		return builtin(nil)
	}
	return nil, fmt.Errorf("unknown generator kind: %s", kind)
}

// Kinds lists every kind Resolve can serve without a per-record override,
// sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.builtins)+len(r.bindings))
	for kind := range r.builtins {
		seen[kind] = struct{}{}
	}
	for kind := range r.bindings {
		seen[kind] = struct{}{}
	}
	kinds := make([]string, 0, len(seen))
	for kind := range seen {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Factories lists the registered factory names, sorted.
func (r *Registry) Factories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s Spec) build() (ValueGenerator, error) {
	if s.Instance != nil {
		return s.Instance, nil
	}
	if s.New == nil {
		return nil, fmt.Errorf("generator override declares neither instance nor factory")
	}
	return s.New(s.Config)
}
