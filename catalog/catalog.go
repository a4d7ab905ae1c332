/*
Package catalog defines how charge definitions are stored.

PURPOSE:
  The calculator never touches storage. The catalog is the configuration
  collaborator behind it: charge definitions are kept as validated JSON
  and resolved by identifier when a schedule references them.

VERSIONING:
  Save is an upsert. Saving an existing identifier replaces the JSON and
  bumps Version, so callers can tell a redefined charge from the original.

IMPLEMENTATIONS:
  - catalog/memory: in-memory, for tests and ephemeral servers
  - store/sqlite:   SQLite with versioned migrations

SEE ALSO:
  - factory/charge.go: turns Record.ConfigJSON into a charge.ChargeDefinition
*/
package catalog

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get and Delete for unknown identifiers.
var ErrNotFound = errors.New("charge definition not found")

// Record is a stored charge definition with its JSON config.
type Record struct {
	ID         string
	Name       string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store persists charge definitions.
type Store interface {
	// Save inserts or replaces a record, returning the stored version.
	Save(ctx context.Context, r Record) (Record, error)

	// Get returns ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (Record, error)

	// List returns all records ordered by name, then id.
	List(ctx context.Context) ([]Record, error)

	// Delete returns ErrNotFound for an unknown id.
	Delete(ctx context.Context, id string) error
}
