// Package postgres provides a database/sql uniqueness checker over lib/pq.
// A Checker answers "does any row already carry this value" for a single
// table, which is exactly the predicate slug generation needs.
package postgres

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq"

	"github.com/mmrzaf/modelkit/generator"
	"github.com/mmrzaf/modelkit/internal/sqlident"
)

// Open connects to postgres and verifies the connection with a ping.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Checker answers existence queries against one table.
type Checker struct {
	db    *sql.DB
	table string
}

// New builds a checker for table. The table name is validated before it is
// ever interpolated into SQL text.
func New(db *sql.DB, table string) (*Checker, error) {
	if err := sqlident.Check("table", table); err != nil {
		return nil, err
	}
	return &Checker{db: db, table: table}, nil
}

// Exists reports whether any row holds value in the named column. Column
// names are validated; values always bind as parameters.
func (c *Checker) Exists(field, value string) (bool, error) {
	if err := sqlident.Check("column", field); err != nil {
		return false, err
	}
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)", c.table, field)
	var exists bool
	if err := c.db.QueryRow(query, value).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ExistsFunc adapts the checker to the generator uniqueness contract.
func (c *Checker) ExistsFunc() generator.ExistsFunc {
	return c.Exists
}

var secretKeys = []string{"password", "pass", "pwd"}

// RedactDSN masks credentials in a connection string so it can be logged.
// URL and keyword DSNs keep their shape; anything unrecognized is masked
// entirely rather than risk leaking a secret.
func RedactDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return ""
	}
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.Host != "" {
		return redactURL(u)
	}
	if out, ok := redactKeywords(dsn); ok {
		return out
	}
	return "****"
}

func redactURL(u *url.URL) string {
	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	q := u.Query()
	for _, k := range secretKeys {
		if q.Has(k) {
			q.Set(k, "****")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// redactKeywords handles the host=... user=... password=... form; ok is
// false when no secret key was present.
func redactKeywords(dsn string) (string, bool) {
	parts := strings.Fields(dsn)
	found := false
	for i, p := range parts {
		key, _, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		for _, secret := range secretKeys {
			if strings.EqualFold(key, secret) {
				parts[i] = key + "=****"
				found = true
				break
			}
		}
	}
	if !found {
		return "", false
	}
	return strings.Join(parts, " "), true
}
