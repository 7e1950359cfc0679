// Package sqlite provides a database/sql uniqueness checker over
// mattn/go-sqlite3, the file-backed counterpart of store/postgres.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mmrzaf/modelkit/generator"
	"github.com/mmrzaf/modelkit/internal/sqlident"
)

// Open opens the database file at path, creating it if needed, and pings it.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
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
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = ?)", c.table, field)
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
