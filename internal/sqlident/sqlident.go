// Package sqlident validates table and column names before they are
// interpolated into SQL text. Values always travel as bind parameters; only
// identifiers need this guard.
package sqlident

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// Keywords that are never acceptable as bare identifiers, even where a
	// database would tolerate them. Kept deliberately broad.
	reservedWords = map[string]struct{}{
		"add": {}, "all": {}, "alter": {}, "and": {}, "any": {}, "as": {},
		"asc": {}, "between": {}, "by": {}, "case": {}, "check": {},
		"column": {}, "constraint": {}, "create": {}, "cross": {},
		"current_date": {}, "current_time": {}, "current_timestamp": {},
		"database": {}, "default": {}, "delete": {}, "desc": {},
		"distinct": {}, "do": {}, "drop": {}, "else": {}, "end": {},
		"except": {}, "exists": {}, "false": {}, "for": {}, "foreign": {},
		"from": {}, "full": {}, "grant": {}, "group": {}, "having": {},
		"in": {}, "index": {}, "inner": {}, "insert": {}, "intersect": {},
		"into": {}, "is": {}, "join": {}, "key": {}, "left": {}, "like": {},
		"limit": {}, "natural": {}, "not": {}, "null": {}, "offset": {},
		"on": {}, "or": {}, "order": {}, "outer": {}, "primary": {},
		"references": {}, "returning": {}, "revoke": {}, "right": {},
		"schema": {}, "select": {}, "set": {}, "table": {}, "then": {},
		"to": {}, "true": {}, "truncate": {}, "union": {}, "unique": {},
		"update": {}, "user": {}, "using": {}, "values": {}, "view": {},
		"when": {}, "where": {}, "with": {},
	}
)

// Valid reports whether s is a plain SQL identifier: leading letter or
// underscore, word characters only, and not a reserved keyword.
func Valid(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if !identRe.MatchString(s) {
		return false
	}
	if _, ok := reservedWords[strings.ToLower(s)]; ok {
		return false
	}
	return true
}

// Check returns a descriptive error for invalid identifiers; kind names the
// role of the identifier in the message ("table", "column").
func Check(kind, s string) error {
	if !Valid(s) {
		return fmt.Errorf("invalid %s identifier: %q", kind, s)
	}
	return nil
}
