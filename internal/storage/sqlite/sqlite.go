// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// Unlike the file backend, records live in one row each: id is the
// primary key and national_code carries a UNIQUE index, so lookups do not
// scan the whole collection and a duplicate national code is rejected by
// the database itself (reported as storage.ErrConflict).
//
// Importing go-sqlite3 registers the "sqlite3" driver with database/sql;
// its error type is also used to recognise unique-index violations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aanand-mishra/persons-api/internal/storage"
	"github.com/aanand-mishra/persons-api/internal/types"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
type SQLite struct {
	Db *sql.DB

	// writeMu serialises Exclusive blocks and single writes.
	writeMu sync.Mutex
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at path, creates the persons table and
// its indexes if they do not exist, and returns a ready-to-use *SQLite.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// One connection: Exclusive holds it for its transaction and an
	// in-memory database stays the same database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS persons (
			id            TEXT PRIMARY KEY,
			first_name    TEXT NOT NULL,
			last_name     TEXT NOT NULL,
			national_code TEXT NOT NULL,
			birth_date    TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS persons_national_code_idx
			ON persons (national_code);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

func (s *SQLite) GetByID(ctx context.Context, id uuid.UUID) (*types.Person, error) {
	return queries{s.Db}.GetByID(ctx, id)
}

func (s *SQLite) GetByNationalCode(ctx context.Context, code string) (*types.Person, error) {
	return queries{s.Db}.GetByNationalCode(ctx, code)
}

func (s *SQLite) GetAll(ctx context.Context) ([]types.Person, error) {
	return queries{s.Db}.GetAll(ctx)
}

func (s *SQLite) Create(ctx context.Context, p types.Person) (types.Person, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return queries{s.Db}.Create(ctx, p)
}

func (s *SQLite) Update(ctx context.Context, p types.Person) (*types.Person, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return queries{s.Db}.Update(ctx, p)
}

func (s *SQLite) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return queries{s.Db}.Delete(ctx, id)
}

// Exclusive runs fn inside one database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (s *SQLite) Exclusive(ctx context.Context, fn func(storage.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Exclusive: begin: %w", err)
	}

	if err := fn(queries{tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("Exclusive: rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Exclusive: commit: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements storage.Tx on top of a querier.
type queries struct {
	q querier
}

const selectColumns = "SELECT id, first_name, last_name, national_code, birth_date FROM persons"

func (q queries) GetByID(ctx context.Context, id uuid.UUID) (*types.Person, error) {
	p, err := scanPerson(q.q.QueryRowContext(ctx, selectColumns+" WHERE id = ? LIMIT 1", id.String()))
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return p, nil
}

func (q queries) GetByNationalCode(ctx context.Context, code string) (*types.Person, error) {
	p, err := scanPerson(q.q.QueryRowContext(ctx, selectColumns+" WHERE national_code = ? LIMIT 1", code))
	if err != nil {
		return nil, fmt.Errorf("GetByNationalCode: %w", err)
	}
	return p, nil
}

func (q queries) GetAll(ctx context.Context) ([]types.Person, error) {
	rows, err := q.q.QueryContext(ctx, selectColumns+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("GetAll: query: %w", err)
	}
	defer rows.Close()

	persons := make([]types.Person, 0)
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("GetAll: %w", err)
		}
		persons = append(persons, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetAll: rows iteration: %w", err)
	}

	return persons, nil
}

func (q queries) Create(ctx context.Context, p types.Person) (types.Person, error) {
	_, err := q.q.ExecContext(ctx,
		"INSERT INTO persons (id, first_name, last_name, national_code, birth_date) VALUES (?, ?, ?, ?, ?)",
		p.ID.String(), p.FirstName, p.LastName, p.NationalCode, formatTime(p.BirthDate),
	)
	if err != nil {
		return types.Person{}, fmt.Errorf("Create: exec: %w", translate(err))
	}
	return p, nil
}

func (q queries) Update(ctx context.Context, p types.Person) (*types.Person, error) {
	result, err := q.q.ExecContext(ctx,
		"UPDATE persons SET first_name = ?, last_name = ?, national_code = ?, birth_date = ? WHERE id = ?",
		p.FirstName, p.LastName, p.NationalCode, formatTime(p.BirthDate), p.ID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("Update: exec: %w", translate(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("Update: rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	// Re-fetch the record so we return exactly what is stored.
	return q.GetByID(ctx, p.ID)
}

func (q queries) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := q.q.ExecContext(ctx, "DELETE FROM persons WHERE id = ?", id.String())
	if err != nil {
		return false, fmt.Errorf("Delete: exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Delete: rows affected: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanPerson reads one row. sql.ErrNoRows becomes (nil, nil).
func scanPerson(row scanner) (*types.Person, error) {
	var (
		p         types.Person
		id, birth string
	)
	err := row.Scan(&id, &p.FirstName, &p.LastName, &p.NationalCode, &birth)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("scan: id %q: %w", id, err)
	}
	if p.BirthDate, err = time.Parse(time.RFC3339Nano, birth); err != nil {
		return nil, fmt.Errorf("scan: birth_date %q: %w", birth, err)
	}

	return &p, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// translate maps a unique-index violation to storage.ErrConflict.
func translate(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %v", storage.ErrConflict, err)
	}
	return err
}
