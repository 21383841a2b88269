// Package sqlstore keeps records in SQLite (modernc.org/sqlite, no cgo) or
// Postgres (pgx through database/sql). Each row holds the encoded record and the
// columns needed to look it up and order it.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/chandan-cmd-dev/quant-go/store"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"

	defaultPath = "quant.db"
	defaultDSN  = "postgres://localhost/quant?sslmode=disable"
)

var _ store.Store = (*Store)(nil)

// Store is a store.Store over database/sql.
type Store struct {
	db     *sql.DB
	driver string
}

// OpenSQLite opens or creates a SQLite database file.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; SQLite serialises them anyway.
	db.SetMaxOpenConns(1)
	return newStore(ctx, db, DriverSQLite)
}

// OpenPostgres connects to Postgres. An empty dsn uses a local default.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newStore(ctx, db, DriverPostgres)
}

// Open picks the backend by driver name: "sqlite" or "pgx" (also "postgres").
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(ctx, dsn)
	case DriverPostgres, "postgres":
		return OpenPostgres(ctx, dsn)
	}
	return nil, fmt.Errorf("sqlstore: unknown driver %q", driver)
}

func newStore(ctx context.Context, db *sql.DB, driver string) (*Store, error) {
	blob := "BLOB"
	if driver == DriverPostgres {
		blob = "BYTEA"
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		kind TEXT NOT NULL,
		created BIGINT NOT NULL,
		payload `+blob+` NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}
	return &Store{db: db, driver: driver}, nil
}

// q rewrites ? placeholders as $1, $2, … for Postgres.
func (s *Store) q(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (s *Store) Put(ctx context.Context, rec store.Record) error {
	payload, err := store.Encode(rec)
	if err != nil {
		return err
	}
	env := rec.Envelope()
	res, err := s.db.ExecContext(ctx, s.q(`INSERT INTO records (id, label, kind, created, payload)
		VALUES (?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`),
		rec.ID.String(), rec.Label, env.Meta.Schema, rec.Created.UnixNano(), payload)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", store.ErrExists, rec.ID)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (store.Record, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, s.q(`SELECT payload FROM records WHERE id = ?`), id.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("select record: %w", err)
	}
	return store.Decode(payload)
}

func (s *Store) List(ctx context.Context) ([]store.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM records ORDER BY created, id`)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []store.Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec, err := store.Decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM records WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return nil
}

// Driver reports which database the store talks to.
func (s *Store) Driver() string { return s.driver }

func (s *Store) Close() error { return s.db.Close() }
