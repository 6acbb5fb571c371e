// Package file provides the flat-file implementation of storage.Storage.
//
// The backing file is a pretty-printed JSON array of persons with
// camelCase field names:
//
//	[
//	  {
//	    "id": "4f1c…",
//	    "firstName": "Ali",
//	    "lastName": "Md",
//	    "nationalCode": "1234567890",
//	    "birthDate": "1995-01-01T00:00:00Z"
//	  }
//	]
//
// There is no partial write: every mutation loads the full collection,
// changes it in memory and saves the full collection back.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aanand-mishra/persons-api/internal/types"
)

var errEmptyFile = errors.New("file is empty")

// Store reads and writes the whole collection at path.
type Store struct {
	path string
}

// NewStore prepares the backing file at path. The parent directory is
// created if needed and a missing file is initialised to an empty
// array. Existing content is left alone.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file.NewStore: create dir: %w", err)
	}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("file.NewStore: init file: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("file.NewStore: stat: %w", err)
	}

	return &Store{path: path}, nil
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load decodes the backing file. A missing file is an empty collection.
// An empty, truncated or malformed file is an error until it is repaired
// or removed.
func (s *Store) Load(_ context.Context) ([]types.Person, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []types.Person{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file.Load: read: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("file.Load: decode %s: %w", s.path, errEmptyFile)
	}

	var persons []types.Person
	if err := json.Unmarshal(data, &persons); err != nil {
		return nil, fmt.Errorf("file.Load: decode %s: %w", s.path, err)
	}
	if persons == nil {
		persons = []types.Person{}
	}

	return persons, nil
}

// Save encodes persons and replaces the backing file. The content goes
// to a temporary file in the same directory first and is renamed over
// the old one.
func (s *Store) Save(_ context.Context, persons []types.Person) error {
	if persons == nil {
		persons = []types.Person{}
	}

	data, err := json.MarshalIndent(persons, "", "  ")
	if err != nil {
		return fmt.Errorf("file.Save: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file.Save: create temp: %w", err)
	}
	// no-op once the rename succeeded
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(s.fileMode()); err != nil {
		tmp.Close()
		return fmt.Errorf("file.Save: chmod: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file.Save: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("file.Save: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file.Save: close: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("file.Save: replace: %w", err)
	}

	return nil
}

// fileMode keeps the permissions of the current backing file, or 0644
// when there is none.
func (s *Store) fileMode() os.FileMode {
	if info, err := os.Stat(s.path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}
