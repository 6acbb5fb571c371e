package file

import (
	"context"
	"fmt"
	"sync"

	"github.com/aanand-mishra/persons-api/internal/storage"
	"github.com/aanand-mishra/persons-api/internal/types"
	"github.com/google/uuid"
)

// Repository is the concrete storage.Storage for the file backend.
//
// Lookups are linear scans of a freshly loaded collection. Mutations hold
// the path's write lock for the whole load → mutate → save cycle, so two
// writers can no longer lose each other's changes.
type Repository struct {
	store storage.Store
	mu    *sync.RWMutex
}

// compile-time check
var _ storage.Storage = (*Repository)(nil)

// New opens (creating if needed) the JSON file at path and returns a
// ready-to-use *Repository.
func New(path string) (*Repository, error) {
	st, err := NewStore(path)
	if err != nil {
		return nil, err
	}
	return NewRepository(st, path), nil
}

// NewRepository wraps an existing Store. lockKey identifies the backing
// resource; repositories created with the same key share one lock.
func NewRepository(st storage.Store, lockKey string) *Repository {
	return &Repository{store: st, mu: lockFor(lockKey)}
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*types.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return tx{r.store}.GetByID(ctx, id)
}

func (r *Repository) GetByNationalCode(ctx context.Context, code string) (*types.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return tx{r.store}.GetByNationalCode(ctx, code)
}

func (r *Repository) GetAll(ctx context.Context) ([]types.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return tx{r.store}.GetAll(ctx)
}

func (r *Repository) Create(ctx context.Context, p types.Person) (types.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return tx{r.store}.Create(ctx, p)
}

func (r *Repository) Update(ctx context.Context, p types.Person) (*types.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return tx{r.store}.Update(ctx, p)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return tx{r.store}.Delete(ctx, id)
}

// Exclusive holds the write lock while fn runs.
func (r *Repository) Exclusive(_ context.Context, fn func(storage.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(tx{r.store})
}

// Close is a no-op; the file is opened per call.
func (r *Repository) Close() error {
	return nil
}

// tx performs the operations without locking. Callers hold r.mu.
type tx struct {
	store storage.Store
}

func (t tx) GetByID(ctx context.Context, id uuid.UUID) (*types.Person, error) {
	persons, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	if i := indexOf(persons, id); i >= 0 {
		p := persons[i]
		return &p, nil
	}
	return nil, nil
}

func (t tx) GetByNationalCode(ctx context.Context, code string) (*types.Person, error) {
	persons, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetByNationalCode: %w", err)
	}
	for _, p := range persons {
		if p.NationalCode == code {
			return &p, nil
		}
	}
	return nil, nil
}

func (t tx) GetAll(ctx context.Context) ([]types.Person, error) {
	persons, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetAll: %w", err)
	}
	return persons, nil
}

func (t tx) Create(ctx context.Context, p types.Person) (types.Person, error) {
	persons, err := t.store.Load(ctx)
	if err != nil {
		return types.Person{}, fmt.Errorf("Create: %w", err)
	}

	persons = append(persons, p)
	if err := t.store.Save(ctx, persons); err != nil {
		return types.Person{}, fmt.Errorf("Create: %w", err)
	}

	return p, nil
}

func (t tx) Update(ctx context.Context, p types.Person) (*types.Person, error) {
	persons, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	i := indexOf(persons, p.ID)
	if i < 0 {
		return nil, nil
	}
	persons[i].Apply(p)

	if err := t.store.Save(ctx, persons); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	updated := persons[i]
	return &updated, nil
}

func (t tx) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	persons, err := t.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("Delete: %w", err)
	}

	i := indexOf(persons, id)
	if i < 0 {
		return false, nil
	}
	persons = append(persons[:i], persons[i+1:]...)

	if err := t.store.Save(ctx, persons); err != nil {
		return false, fmt.Errorf("Delete: %w", err)
	}

	return true, nil
}

func indexOf(persons []types.Person, id uuid.UUID) int {
	for i := range persons {
		if persons[i].ID == id {
			return i
		}
	}
	return -1
}
