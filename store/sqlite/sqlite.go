/*
Package sqlite provides a SQLite-backed charge definition catalog.

PURPOSE:
  Implements catalog.Store on SQLite. The same statements run on
  PostgreSQL with minor dialect changes.

KEY TABLES:
  charge_definitions: one row per charge definition identifier, holding
                      the validated JSON config and an edit version

MIGRATIONS:
  Schema changes are versioned SQL files under migrations/, embedded into
  the binary and applied with golang-migrate on New().

CONCURRENCY:
  Uses sync.RWMutex around the upsert-then-read in Save. In production
  with PostgreSQL, database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/charges.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - catalog/catalog.go: Interface definition
  - catalog/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/charge-engine/catalog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements catalog.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens the database at dbPath and applies pending migrations.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies the embedded migrations. The migrate instance is not
// closed: its database driver would close the shared *sql.DB.
func (s *Store) migrate() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// =============================================================================
// CHARGE DEFINITION CATALOG
// =============================================================================

// Save upserts a charge definition, bumping the version of an existing row.
func (s *Store) Save(ctx context.Context, r catalog.Record) (catalog.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO charge_definitions (id, name, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			version = charge_definitions.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, query, r.ID, r.Name, r.ConfigJSON, now, now); err != nil {
		return catalog.Record{}, fmt.Errorf("save charge definition %q: %w", r.ID, err)
	}
	return s.get(ctx, r.ID)
}

// Get retrieves a charge definition by id.
func (s *Store) Get(ctx context.Context, id string) (catalog.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(ctx, id)
}

func (s *Store) get(ctx context.Context, id string) (catalog.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, config_json, version, created_at, updated_at FROM charge_definitions WHERE id = ?",
		id,
	)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Record{}, catalog.ErrNotFound
	}
	return r, err
}

// List returns all charge definitions ordered by name.
func (s *Store) List(ctx context.Context) ([]catalog.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, config_json, version, created_at, updated_at FROM charge_definitions ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []catalog.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Delete removes a charge definition.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM charge_definitions WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Helper functions

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (catalog.Record, error) {
	var r catalog.Record
	var createdAt, updatedAt string
	if err := row.Scan(&r.ID, &r.Name, &r.ConfigJSON, &r.Version, &createdAt, &updatedAt); err != nil {
		return catalog.Record{}, err
	}
	var err error
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return catalog.Record{}, fmt.Errorf("charge definition %q created_at: %w", r.ID, err)
	}
	if r.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return catalog.Record{}, fmt.Errorf("charge definition %q updated_at: %w", r.ID, err)
	}
	return r, nil
}

var _ catalog.Store = (*Store)(nil)
