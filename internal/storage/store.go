// Package storage persists the ledger in SQLite. Decimal amounts and
// calendar dates are stored as TEXT so no precision is lost crossing the
// database boundary.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tally/internal/core"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed repository for every entity.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath, runs migrations
// and enables foreign key enforcement.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal journal: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB { return s.db }

// mapErr translates driver errors into the domain's sentinel errors. The
// SQLite driver reports constraint violations only through the error text,
// so matching on it is the available option.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return fmt.Errorf("%w: %s", core.ErrIntegrity, msg)
	}
	return err
}

// uniqueField turns a UNIQUE violation on a known column into a field
// error, so duplicate codes surface as validation failures rather than
// opaque conflicts.
func uniqueField(err error, column, field, message string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed: "+column) {
		errs := core.FieldErrors{}
		errs.Add(field, message)
		return errs
	}
	return mapErr(err)
}

const timestampLayout = "2006-01-02 15:04:05"

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{timestampLayout, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func moneyToDB(m core.Money) string { return m.Decimal().String() }

func moneyPtrToDB(m *core.Money) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: moneyToDB(*m), Valid: true}
}

func moneyFromDB(s string) (core.Money, error) {
	if s == "" {
		return core.Money{}, nil
	}
	return core.MoneyFromString(s)
}

func moneyPtrFromDB(ns sql.NullString) (*core.Money, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	m, err := core.MoneyFromString(ns.String)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func dateToDB(d core.Date) string { return d.String() }

func datePtrToDB(d *core.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func dateFromDB(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func datePtrFromDB(ns sql.NullString) (*core.Date, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := core.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func idPtrToDB(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtrFromDB(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

// optionalToDB stores an empty string as NULL so unique columns ignore
// absent values.
func optionalToDB(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
