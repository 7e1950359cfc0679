package fields

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Tags is a string-set column stored as a JSON array. Membership checks go
// through Normalize, so "Go " and "go" count as the same tag; stored values
// keep whatever casing they were written with.
type Tags []string

// Normalize trims surrounding whitespace and lowercases a tag.
func Normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Value implements driver.Valuer. A nil set writes SQL NULL; an empty
// non-nil set writes [].
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	raw, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(value any) error {
	if value == nil {
		*t = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan Tags: unsupported column type %T", value)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("invalid tags column: %w", err)
	}
	*t = out
	return nil
}

// Has reports whether tag is present, compared after normalization.
func (t Tags) Has(tag string) bool {
	want := Normalize(tag)
	for _, existing := range t {
		if Normalize(existing) == want {
			return true
		}
	}
	return false
}

// Add returns the set with the normalized tag appended. Blank and duplicate
// tags leave the set unchanged.
func (t Tags) Add(tag string) Tags {
	norm := Normalize(tag)
	if norm == "" || t.Has(norm) {
		return t
	}
	return append(t, norm)
}

// Remove returns the set without tag, compared after normalization.
func (t Tags) Remove(tag string) Tags {
	norm := Normalize(tag)
	out := make(Tags, 0, len(t))
	for _, existing := range t {
		if Normalize(existing) == norm {
			continue
		}
		out = append(out, existing)
	}
	return out
}
