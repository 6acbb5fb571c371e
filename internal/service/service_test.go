package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aanand-mishra/persons-api/internal/errs"
	"github.com/aanand-mishra/persons-api/internal/storage"
	"github.com/aanand-mishra/persons-api/internal/storage/file"
	"github.com/aanand-mishra/persons-api/internal/types"
	"github.com/aanand-mishra/persons-api/internal/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ServiceSuite struct {
	suite.Suite
	ctx  context.Context
	path string
	svc  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.path = filepath.Join(s.T().TempDir(), "persons.json")
	repo, err := file.New(s.path)
	s.Require().NoError(err)
	s.svc = New(repo, validation.New(nil), nil)
}

func ali() types.Person {
	return types.Person{
		ID:           uuid.New(),
		FirstName:    "Ali",
		LastName:     "Md",
		NationalCode: "1234567890",
		BirthDate:    time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *ServiceSuite) count() int {
	all, err := s.svc.GetAll(s.ctx)
	s.Require().NoError(err)
	return len(all)
}

func (s *ServiceSuite) TestCreateAndGetRoundTrip() {
	p := ali()

	created, err := s.svc.CreatePerson(s.ctx, p)
	s.Require().NoError(err)
	s.Equal(p, created)

	got, err := s.svc.GetPerson(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(p.ID, got.ID)
	s.Equal(p.FirstName, got.FirstName)
	s.Equal(p.LastName, got.LastName)
	s.Equal(p.NationalCode, got.NationalCode)
	s.True(p.BirthDate.Equal(got.BirthDate))
}

func (s *ServiceSuite) TestGetAbsentIsNilNotError() {
	got, err := s.svc.GetPerson(s.ctx, uuid.New())
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *ServiceSuite) TestCreateRejectsInvalid() {
	p := ali()
	p.NationalCode = "12345"
	p.FirstName = ""

	_, err := s.svc.CreatePerson(s.ctx, p)
	s.Require().Error(err)
	s.True(errs.Is(err, errs.CodeValidationFailed))

	var e *errs.Error
	s.Require().ErrorAs(err, &e)
	s.Len(e.Violations, 3)
	s.Equal(0, s.count())
}

func (s *ServiceSuite) TestCreateDuplicateNationalCodeConflicts() {
	_, err := s.svc.CreatePerson(s.ctx, ali())
	s.Require().NoError(err)

	_, err = s.svc.CreatePerson(s.ctx, ali())
	s.True(errs.Is(err, errs.CodeConflict))
	s.Equal(1, s.count())
}

func (s *ServiceSuite) TestCreateDuplicateIDConflicts() {
	p := ali()
	_, err := s.svc.CreatePerson(s.ctx, p)
	s.Require().NoError(err)

	again := p
	again.NationalCode = "0987654321"
	_, err = s.svc.CreatePerson(s.ctx, again)
	s.True(errs.Is(err, errs.CodeConflict))
	s.Equal(1, s.count())
}

func (s *ServiceSuite) TestUpdate() {
	p := ali()
	_, err := s.svc.CreatePerson(s.ctx, p)
	s.Require().NoError(err)

	s.Run("only first name changed keeps id and code", func() {
		changed := p
		changed.FirstName = "Reza"

		updated, err := s.svc.UpdatePerson(s.ctx, changed)
		s.Require().NoError(err)
		s.Equal(p.ID, updated.ID)
		s.Equal(p.NationalCode, updated.NationalCode)
		s.Equal("Reza", updated.FirstName)
	})

	s.Run("taking another record's code conflicts", func() {
		other := ali()
		other.NationalCode = "1111111111"
		_, err := s.svc.CreatePerson(s.ctx, other)
		s.Require().NoError(err)

		changed := other
		changed.NationalCode = p.NationalCode
		_, err = s.svc.UpdatePerson(s.ctx, changed)
		s.True(errs.Is(err, errs.CodeConflict))

		stored, err := s.svc.GetPerson(s.ctx, other.ID)
		s.Require().NoError(err)
		s.Equal("1111111111", stored.NationalCode)
	})

	s.Run("changing to a free code succeeds", func() {
		changed := p
		changed.NationalCode = "2222222222"

		updated, err := s.svc.UpdatePerson(s.ctx, changed)
		s.Require().NoError(err)
		s.Equal("2222222222", updated.NationalCode)
	})

	s.Run("absent id is not found", func() {
		_, err := s.svc.UpdatePerson(s.ctx, ali())
		s.True(errs.Is(err, errs.CodeNotFound))
	})

	s.Run("invalid candidate fails validation before lookup", func() {
		bad := ali()
		bad.BirthDate = time.Now().Add(24 * time.Hour)
		_, err := s.svc.UpdatePerson(s.ctx, bad)
		s.True(errs.Is(err, errs.CodeValidationFailed))
	})
}

func (s *ServiceSuite) TestDelete() {
	p := ali()
	_, err := s.svc.CreatePerson(s.ctx, p)
	s.Require().NoError(err)

	ok, err := s.svc.DeletePerson(s.ctx, p.ID)
	s.Require().NoError(err)
	s.True(ok)

	_, err = s.svc.DeletePerson(s.ctx, p.ID)
	s.True(errs.Is(err, errs.CodeNotFound))

	_, err = s.svc.DeletePerson(s.ctx, uuid.New())
	s.True(errs.Is(err, errs.CodeNotFound))
	s.Equal(0, s.count())
}

func (s *ServiceSuite) TestScenario() {
	p := ali()
	p.ID = uuid.New()

	created, err := s.svc.CreatePerson(s.ctx, p)
	s.Require().NoError(err)
	s.Equal(1, s.count())

	dup := ali()
	_, err = s.svc.CreatePerson(s.ctx, dup)
	s.True(errs.Is(err, errs.CodeConflict))

	ok, err := s.svc.DeletePerson(s.ctx, created.ID)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(0, s.count())
}

func (s *ServiceSuite) TestConcurrentCreatesWithSameCodeAdmitOne() {
	const callers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// fresh repository per call on the same file
			repo, err := file.New(s.path)
			if !s.NoError(err) {
				return
			}
			_, err = New(repo, validation.New(nil), nil).CreatePerson(s.ctx, ali())

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errs.Is(err, errs.CodeConflict):
				conflicts++
			default:
				s.Failf("unexpected error", "%v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(1, succeeded)
	s.Equal(callers-1, conflicts)
	s.Equal(1, s.count())
}

type brokenStorage struct {
	storage.Storage
	err error
}

func (b brokenStorage) GetByID(context.Context, uuid.UUID) (*types.Person, error) {
	return nil, b.err
}

func (b brokenStorage) GetAll(context.Context) ([]types.Person, error) {
	return nil, b.err
}

func (b brokenStorage) Exclusive(_ context.Context, fn func(storage.Tx) error) error {
	return fn(b)
}

func (s *ServiceSuite) TestStorageFailuresAreInternal() {
	cause := errors.New("permission denied")
	svc := New(brokenStorage{err: cause}, validation.New(nil), nil)

	_, err := svc.GetPerson(s.ctx, uuid.New())
	s.True(errs.Is(err, errs.CodeInternal))
	s.ErrorIs(err, cause)

	_, err = svc.GetAll(s.ctx)
	s.True(errs.Is(err, errs.CodeInternal))

	_, err = svc.CreatePerson(s.ctx, ali())
	s.True(errs.Is(err, errs.CodeInternal))

	_, err = svc.DeletePerson(s.ctx, uuid.New())
	s.True(errs.Is(err, errs.CodeInternal))
}

type indexConflictStorage struct {
	storage.Storage
}

func (indexConflictStorage) GetByID(context.Context, uuid.UUID) (*types.Person, error) {
	return nil, nil
}

func (indexConflictStorage) GetAll(context.Context) ([]types.Person, error) {
	return []types.Person{}, nil
}

func (indexConflictStorage) Create(context.Context, types.Person) (types.Person, error) {
	return types.Person{}, fmt.Errorf("Create: exec: %w", storage.ErrConflict)
}

func (c indexConflictStorage) Exclusive(_ context.Context, fn func(storage.Tx) error) error {
	return fn(c)
}

func (s *ServiceSuite) TestBackendConflictBecomesConflict() {
	svc := New(indexConflictStorage{}, validation.New(nil), nil)
	_, err := svc.CreatePerson(s.ctx, ali())
	s.True(errs.Is(err, errs.CodeConflict))
}
