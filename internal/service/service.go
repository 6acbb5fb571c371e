// Package service holds the business rules for Person records.
//
// It is the only layer that combines field validation with stored state:
// it runs the validator, enforces national-code uniqueness and existence
// checks, and turns storage conditions into errs.NotFound / errs.Conflict.
// Storage failures come back as errs.Internal.
//
// Every check-then-write sequence runs inside storage.Exclusive, so two
// concurrent creates with the same national code cannot both be admitted.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aanand-mishra/persons-api/internal/errs"
	"github.com/aanand-mishra/persons-api/internal/storage"
	"github.com/aanand-mishra/persons-api/internal/types"
	"github.com/google/uuid"
)

const (
	msgNotFound     = "person not found"
	msgCodeConflict = "another person with this national code already exists"
	msgIDConflict   = "a person with this id already exists"
)

// Validator checks a single candidate record.
type Validator interface {
	Validate(p types.Person) error
}

// Service orchestrates validation, uniqueness and persistence.
type Service struct {
	repo      storage.Storage
	validator Validator
	log       *slog.Logger
}

// New wires a Service. A nil logger discards output.
func New(repo storage.Storage, validator Validator, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, validator: validator, log: log}
}

// CreatePerson validates p, rejects it when its national code (or id) is
// already taken, and stores it. p.ID must already be set.
func (s *Service) CreatePerson(ctx context.Context, p types.Person) (types.Person, error) {
	if err := s.validator.Validate(p); err != nil {
		return types.Person{}, err
	}

	var created types.Person
	err := s.repo.Exclusive(ctx, func(tx storage.Tx) error {
		existing, err := tx.GetByID(ctx, p.ID)
		if err != nil {
			return errs.Internal("create person: lookup id", err)
		}
		if existing != nil {
			return errs.Conflict(msgIDConflict)
		}

		if err := findConflict(ctx, tx, p.NationalCode, uuid.Nil); err != nil {
			return err
		}

		created, err = tx.Create(ctx, p)
		if err != nil {
			return storageErr("create person", err)
		}
		return nil
	})
	if err != nil {
		return types.Person{}, err
	}

	s.log.Info("person created", slog.String("id", created.ID.String()))
	return created, nil
}

// GetPerson returns the record with the given id, or nil when absent.
func (s *Service) GetPerson(ctx context.Context, id uuid.UUID) (*types.Person, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Internal("get person", err)
	}
	return p, nil
}

// GetAll returns every record; an empty store gives an empty slice.
func (s *Service) GetAll(ctx context.Context) ([]types.Person, error) {
	persons, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, errs.Internal("list persons", err)
	}
	if persons == nil {
		persons = []types.Person{}
	}
	return persons, nil
}

// UpdatePerson replaces every mutable field of the record p.ID. The
// national code is re-checked for uniqueness only when it changes.
func (s *Service) UpdatePerson(ctx context.Context, p types.Person) (types.Person, error) {
	if err := s.validator.Validate(p); err != nil {
		return types.Person{}, err
	}

	var updated types.Person
	err := s.repo.Exclusive(ctx, func(tx storage.Tx) error {
		existing, err := tx.GetByID(ctx, p.ID)
		if err != nil {
			return errs.Internal("update person: lookup id", err)
		}
		if existing == nil {
			return errs.NotFound(msgNotFound)
		}

		if existing.NationalCode != p.NationalCode {
			if err := findConflict(ctx, tx, p.NationalCode, p.ID); err != nil {
				return err
			}
		}

		result, err := tx.Update(ctx, p)
		if err != nil {
			return storageErr("update person", err)
		}
		if result == nil {
			return errs.NotFound(msgNotFound)
		}
		updated = *result
		return nil
	})
	if err != nil {
		return types.Person{}, err
	}

	s.log.Info("person updated", slog.String("id", updated.ID.String()))
	return updated, nil
}

// DeletePerson removes the record with the given id. An absent id is
// errs.NotFound, also on a repeated delete.
func (s *Service) DeletePerson(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := s.repo.Exclusive(ctx, func(tx storage.Tx) error {
		existing, err := tx.GetByID(ctx, id)
		if err != nil {
			return errs.Internal("delete person: lookup id", err)
		}
		if existing == nil {
			return errs.NotFound(msgNotFound)
		}

		deleted, err = tx.Delete(ctx, id)
		if err != nil {
			return errs.Internal("delete person", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.log.Info("person deleted", slog.String("id", id.String()), slog.Bool("deleted", deleted))
	return deleted, nil
}

// findConflict scans every record for an owner of code other than self.
// Pass uuid.Nil as self when there is nothing to exclude.
func findConflict(ctx context.Context, tx storage.Tx, code string, self uuid.UUID) error {
	all, err := tx.GetAll(ctx)
	if err != nil {
		return errs.Internal("check national code", err)
	}
	for _, other := range all {
		if other.NationalCode == code && other.ID != self {
			return errs.Conflict(msgCodeConflict)
		}
	}
	return nil
}

func storageErr(op string, err error) error {
	if errors.Is(err, storage.ErrConflict) {
		return errs.Conflict(msgCodeConflict)
	}
	return errs.Internal(op, err)
}
