// Package store is postdeck's row-store boundary: the managed relational
// backend seen as tables of rows that can be queried, partially updated by
// primary key, inserted and deleted.
//
// Three implementations exist: SQLStore over Postgres (lib/pq) or SQLite
// (modernc.org/sqlite), and RESTStore over a PostgREST-style HTTP API.
// Updates are last-write-wins; no version column is compared.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned when an update or delete by key matches no row.
var ErrNotFound = errors.New("row not found")

// Row is one record keyed by column name.
type Row map[string]any

// Filter is an equality predicate.
type Filter struct {
	Column string
	Value  any
}

// Order sorts query results by a single column.
type Order struct {
	Column string
	Desc   bool
}

// Query selects rows from one table. Limit <= 0 means no cap.
type Query struct {
	Table   string
	Filters []Filter
	Order   *Order
	Limit   int
}

// Key addresses one row by its primary key column.
type Key struct {
	Column string
	Value  any
}

// RowStore is the persistence collaborator every other package talks to.
type RowStore interface {
	Query(ctx context.Context, q Query) ([]Row, error)
	Update(ctx context.Context, table string, key Key, fields Row) error
	Insert(ctx context.Context, table string, fields Row) error
	Delete(ctx context.Context, table string, key Key) error
	Close() error
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// validIdent guards table and column names, which are spliced into SQL and
// URLs rather than bound as parameters.
func validIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

func validQuery(q Query) error {
	if err := validIdent(q.Table); err != nil {
		return err
	}
	for _, f := range q.Filters {
		if err := validIdent(f.Column); err != nil {
			return err
		}
	}
	if q.Order != nil {
		if err := validIdent(q.Order.Column); err != nil {
			return err
		}
	}
	return nil
}

func validWrite(table string, key *Key, fields Row) error {
	if err := validIdent(table); err != nil {
		return err
	}
	if key != nil {
		if err := validIdent(key.Column); err != nil {
			return err
		}
	}
	for col := range fields {
		if err := validIdent(col); err != nil {
			return err
		}
	}
	return nil
}
