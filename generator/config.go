package generator

import (
	"github.com/mmrzaf/modelkit/internal/dotpath"
)

// Config is a generator option map. Keys are generator-specific; values are
// whatever the generator's option struct decodes from, so YAML- and
// literal-built configs are interchangeable.
type Config map[string]any

// Get reads a possibly nested key by dot path ("dictionary.@", "length").
// It returns fallback when the path is absent or a non-map intervenes.
func (c Config) Get(path string, fallback any) any {
	v, ok := dotpath.Lookup(c, path)
	if !ok {
		return fallback
	}
	return v
}

// Clone returns a copy of c that shares no mutable state with it. Nested
// maps and slices are copied; other values are assumed immutable.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

// merged returns defaults overlaid with overrides, key by key. The merge is
// shallow: an override value replaces the default wholesale, even when both
// are maps. Neither input is modified.
func merged(defaults, overrides Config) Config {
	out := defaults.Clone()
	if out == nil {
		out = make(Config, len(overrides))
	}
	for k, v := range overrides {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Config:
		return t.Clone()
	case map[string]any:
		return Config(t).Clone()
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}
