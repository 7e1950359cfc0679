package fields

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/mmrzaf/modelkit/internal/dotpath"
)

// Meta is a free-form metadata column stored as a JSON object. Reads use
// the same dot-path-with-fallback contract as generator configuration.
type Meta map[string]any

// Value implements driver.Valuer. A nil map writes SQL NULL.
func (m Meta) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	raw, err := json.Marshal(map[string]any(m))
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Scan implements sql.Scanner.
func (m *Meta) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan Meta: unsupported column type %T", value)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("invalid metadata column: %w", err)
	}
	*m = out
	return nil
}

// Get reads a possibly nested key by dot path ("shipping.free_shipping"),
// returning fallback when any segment is absent.
func (m Meta) Get(path string, fallback any) any {
	v, ok := dotpath.Lookup(m, path)
	if !ok {
		return fallback
	}
	return v
}

// Set writes value at a dot path, creating intermediate objects as needed.
func (m Meta) Set(path string, value any) {
	dotpath.Set(m, path, value)
}
