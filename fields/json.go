// Package fields provides JSON-backed column types for gorm models: raw
// JSON documents, normalized string tags, and nested metadata objects. All
// of them implement driver.Valuer and sql.Scanner and work with postgres
// jsonb as well as sqlite text columns.
package fields

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSON stores a raw JSON document. The zero value reads and writes as SQL
// NULL. Both directions validate, so a malformed document never crosses the
// database boundary unnoticed.
type JSON json.RawMessage

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	var probe any
	if err := json.Unmarshal(j, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON document: %w", err)
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner.
func (j *JSON) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan JSON: unsupported column type %T", value)
	}

	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("invalid JSON from database: %w", err)
	}
	*j = append((*j)[0:0], raw...)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return errors.New("fields: UnmarshalJSON on nil JSON pointer")
	}
	*j = append((*j)[0:0], data...)
	return nil
}

// Valid reports whether the document parses as JSON.
func (j JSON) Valid() bool { return json.Valid(j) }

func (j JSON) String() string { return string(j) }
