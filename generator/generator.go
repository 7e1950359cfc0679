// Package generator provides pluggable value generators for model fields:
// random tokens, UUIDs, and URL slugs, each configurable through an
// option map merged over per-kind defaults, and a registry that resolves
// the generator for a field through three precedence tiers (per-record
// override, applied settings, built-in default).
package generator

// Context carries the per-call inputs for Generate and Validate. All fields
// are optional; a generator uses what it needs and ignores the rest.
type Context struct {
	// Record is a back-reference to the record being populated.
	Record any

	// Field is the name of the field/column being populated.
	Field string

	// Source is the raw text a slug is derived from.
	Source string

	// Exists reports whether another stored record already holds value in
	// field. Slug uniqueness probing uses it; callers that want uniqueness
	// must supply it, typically bound to their datastore with the record
	// itself excluded.
	Exists ExistsFunc
}

// ExistsFunc is the injected uniqueness predicate for slug generation.
type ExistsFunc func(field, value string) (bool, error)

// ValueGenerator produces and validates values of one kind.
//
// Implementations are stateless apart from their configuration: Generate may
// be non-deterministic (tokens, UUIDs) but must not retain state between
// calls, and Validate must return false — never panic or error — for input
// of any type or shape.
type ValueGenerator interface {
	// Generate produces a fresh value. It fails only on broken
	// configuration or a failing injected capability; it never fails for
	// missing context (an absent slug source yields "").
	Generate(ctx Context) (string, error)

	// Validate reports whether value conforms to the generator's configured
	// shape.
	Validate(value any, ctx Context) bool

	// Config returns a snapshot of the current configuration.
	Config() Config

	// SetConfig merges the given keys over the current configuration and
	// returns the generator for chaining.
	SetConfig(cfg Config) ValueGenerator
}

// Factory constructs a configured generator. The config argument is merged
// over the implementation's defaults; nil means pure defaults.
type Factory func(cfg Config) (ValueGenerator, error)

// Spec is a per-record generator override: either a factory plus the
// configuration to construct it with, or a ready-made instance used as-is.
// Exactly one of New and Instance should be set; Instance wins when both are.
type Spec struct {
	New      Factory
	Config   Config
	Instance ValueGenerator
}

// UseFactory declares an override that builds a fresh generator per
// resolution.
func UseFactory(f Factory, cfg Config) Spec {
	return Spec{New: f, Config: cfg}
}

// UseInstance declares an override that always resolves to g.
func UseInstance(g ValueGenerator) Spec {
	return Spec{Instance: g}
}

// Overrides is implemented by records that supply their own generator for
// some kinds. GeneratorFor reports (spec, true) to take over resolution for
// the given kind and field, or false to fall through to settings and
// built-in defaults.
type Overrides interface {
	GeneratorFor(kind, field string) (Spec, bool)
}
