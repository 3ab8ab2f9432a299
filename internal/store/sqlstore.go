package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Dialect captures the SQL differences between the supported databases.
type Dialect struct {
	Name        string
	placeholder func(n int) string
}

var (
	// Postgres uses $n placeholders.
	Postgres = Dialect{Name: "postgres", placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
	// SQLite uses ? placeholders.
	SQLite = Dialect{Name: "sqlite", placeholder: func(int) string { return "?" }}
)

// PostgresConfig holds connection pool settings for the Postgres backend.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPostgresConfig returns pool defaults for a single-operator dashboard.
func DefaultPostgresConfig(url string) PostgresConfig {
	return PostgresConfig{
		URL:             url,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// SQLStore implements RowStore over database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// OpenPostgres connects to Postgres and applies pool settings. The schema is
// owned by the managed backend and is not migrated here.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *logrus.Logger) (*SQLStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"max_open_conns":    cfg.MaxOpenConns,
			"max_idle_conns":    cfg.MaxIdleConns,
			"conn_max_lifetime": cfg.ConnMaxLifetime,
		}).Info("Database connected")
	}

	return NewSQLStore(db, Postgres), nil
}

// OpenSQLite opens or creates a SQLite database at path and migrates it.
// The parent directory is created if needed.
func OpenSQLite(path string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := NewSQLStore(db, SQLite)
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	if _, err := s.db.Exec(schemaV1); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var v int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case v != schemaVersion:
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Query runs a SELECT built from q.
func (s *SQLStore) Query(ctx context.Context, q Query) ([]Row, error) {
	if err := validQuery(q); err != nil {
		return nil, err
	}

	var b strings.Builder
	args := make([]any, 0, len(q.Filters))
	fmt.Fprintf(&b, "SELECT * FROM %s", q.Table)
	for i, f := range q.Filters {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, f.Value)
		fmt.Fprintf(&b, "%s = %s", f.Column, s.dialect.placeholder(len(args)))
	}
	if q.Order != nil {
		dir := "ASC"
		if q.Order.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s", q.Order.Column, dir)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Table, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Table, err)
	}

	out := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", q.Table, err)
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Table, err)
	}
	return out, nil
}

// Update sets fields on the row identified by key.
func (s *SQLStore) Update(ctx context.Context, table string, key Key, fields Row) error {
	if err := validWrite(table, &key, fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("update %s: no fields", table)
	}

	cols := sortedColumns(fields)
	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for _, col := range cols {
		args = append(args, fields[col])
		sets = append(sets, fmt.Sprintf("%s = %s", col, s.dialect.placeholder(len(args))))
	}
	args = append(args, key.Value)
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		table, strings.Join(sets, ", "), key.Column, s.dialect.placeholder(len(args)))

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return expectAffected(res, table, key)
}

// Insert adds one row.
func (s *SQLStore) Insert(ctx context.Context, table string, fields Row) error {
	if err := validWrite(table, nil, fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("insert %s: no fields", table)
	}

	cols := sortedColumns(fields)
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		args[i] = fields[col]
		marks[i] = s.dialect.placeholder(i + 1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))

	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Delete removes the row identified by key.
func (s *SQLStore) Delete(ctx context.Context, table string, key Key) error {
	if err := validWrite(table, &key, nil); err != nil {
		return err
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", table, key.Column, s.dialect.placeholder(1))
	res, err := s.db.ExecContext(ctx, stmt, key.Value)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return expectAffected(res, table, key)
}

func expectAffected(res sql.Result, table string, key Key) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s=%v: %w", table, key.Column, key.Value, ErrNotFound)
	}
	return nil
}

func sortedColumns(fields Row) []string {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// normalizeValue turns driver byte slices (Postgres numeric, some text
// types) into strings so callers see one representation.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
