// Package scopes provides reusable gorm query scopes for the column types
// this module generates and stores: substring search across plain columns,
// containment checks on JSON tag arrays, and equality on nested metadata
// paths. JSON scopes emit dialect-appropriate SQL for postgres (jsonb) and
// sqlite (json1); other dialects get the json1 form.
package scopes

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mmrzaf/modelkit/fields"
	"github.com/mmrzaf/modelkit/internal/sqlident"
)

// Search matches term as a case-insensitive substring in any of the given
// columns. A blank term or an empty column list is a no-op.
func Search(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + escapeLike(term) + "%"
		conds := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, col := range columns {
			if !sqlident.Valid(col) {
				_ = db.AddError(fmt.Errorf("invalid search column: %s", col))
				return db
			}
			conds = append(conds, fmt.Sprintf(`lower(%s) LIKE lower(?) ESCAPE '\'`, col))
			args = append(args, pattern)
		}
		return db.Where(strings.Join(conds, " OR "), args...)
	}
}

// TaggedAny keeps rows whose tag array contains at least one of the given
// tags. Tags normalize the same way fields.Tags membership does.
func TaggedAny(column string, tags ...string) func(*gorm.DB) *gorm.DB {
	return tagScope(column, tags, " OR ")
}

// TaggedAll keeps rows whose tag array contains every one of the given tags.
func TaggedAll(column string, tags ...string) func(*gorm.DB) *gorm.DB {
	return tagScope(column, tags, " AND ")
}

func tagScope(column string, tags []string, joiner string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		norm := normalizeTags(tags)
		if len(norm) == 0 {
			return db
		}
		if !sqlident.Valid(column) {
			_ = db.AddError(fmt.Errorf("invalid tag column: %s", column))
			return db
		}
		elem := elementExists(db.Dialector.Name(), column)
		conds := make([]string, 0, len(norm))
		args := make([]any, 0, len(norm))
		for _, tag := range norm {
			conds = append(conds, elem)
			args = append(args, tag)
		}
		return db.Where(strings.Join(conds, joiner), args...)
	}
}

// MetaEquals keeps rows whose metadata object holds value at the dot path
// ("shipping.free_shipping"). Path segments bind as parameters, never as
// SQL text. An empty path is a no-op.
func MetaEquals(column, path string, value any) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if path == "" {
			return db
		}
		if !sqlident.Valid(column) {
			_ = db.AddError(fmt.Errorf("invalid metadata column: %s", column))
			return db
		}
		segments := strings.Split(path, ".")
		switch db.Dialector.Name() {
		case "postgres":
			holes := strings.TrimSuffix(strings.Repeat("?, ", len(segments)), ", ")
			args := make([]any, 0, len(segments)+1)
			for _, seg := range segments {
				args = append(args, seg)
			}
			// jsonb_extract_path_text yields text, so the comparison value
			// goes through its text rendering too.
			args = append(args, fmt.Sprint(value))
			return db.Where(fmt.Sprintf("jsonb_extract_path_text(%s, %s) = ?", column, holes), args...)
		default:
			return db.Where(fmt.Sprintf("json_extract(%s, ?) = ?", column), "$."+path, value)
		}
	}
}

func elementExists(dialect, column string) string {
	switch dialect {
	case "postgres":
		return fmt.Sprintf("EXISTS (SELECT 1 FROM jsonb_array_elements_text(%s) elem WHERE lower(elem.value) = ?)", column)
	default:
		return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) elem WHERE lower(elem.value) = ?)", column)
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		norm := fields.Normalize(tag)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
