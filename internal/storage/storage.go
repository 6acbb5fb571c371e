// Package storage defines the contracts any persistence backend must
// satisfy to work with this application.
//
// Two backends exist:
//
//   - storage/file: the whole collection in one pretty-printed JSON file,
//     every call a full load (and save for mutations)
//   - storage/sqlite: one row per person, primary key on id and a unique
//     index on national_code
//
// The service only ever talks to the Storage interface.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/persons-api/internal/types"
	"github.com/google/uuid"
)

// ErrConflict is returned by backends that enforce national-code
// uniqueness themselves (an index) when a write would break it.
// Backends never return domain errors; the service translates this one.
var ErrConflict = errors.New("storage: national code already stored")

// Reader holds the lookups. A missing record is (nil, nil), not an error.
type Reader interface {
	// GetByID returns the person with the given id, or nil.
	GetByID(ctx context.Context, id uuid.UUID) (*types.Person, error)

	// GetByNationalCode returns the first person holding code, or nil.
	GetByNationalCode(ctx context.Context, code string) (*types.Person, error)

	// GetAll returns every stored person. Never nil.
	GetAll(ctx context.Context) ([]types.Person, error)
}

// Tx is the full set of record operations.
type Tx interface {
	Reader

	// Create appends p and returns it unchanged.
	Create(ctx context.Context, p types.Person) (types.Person, error)

	// Update replaces every mutable field of the record with p.ID.
	// Returns (nil, nil) without writing when no such record exists.
	Update(ctx context.Context, p types.Person) (*types.Person, error)

	// Delete removes the record with the given id.
	// Returns false without writing when no such record exists.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Storage is the repository contract used by the service.
//
// Each method on its own is safe for concurrent use. Exclusive runs fn
// with the backend's single writer lock held, so a read followed by a
// write inside fn cannot interleave with another writer. The Tx handed to
// fn must not be used after fn returns.
type Storage interface {
	Tx
	Exclusive(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// Store is the whole-collection persistence used by the file backend.
type Store interface {
	// Load returns every persisted record (empty when nothing is stored).
	Load(ctx context.Context) ([]types.Person, error)

	// Save replaces the persisted collection with persons.
	Save(ctx context.Context, persons []types.Person) error
}
