package grpc

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aanand-mishra/persons-api/internal/service"
	"github.com/aanand-mishra/persons-api/internal/storage/file"
	"github.com/aanand-mishra/persons-api/internal/types"
	"github.com/aanand-mishra/persons-api/internal/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ServerSuite runs the adapter end to end over an in-memory listener.
type ServerSuite struct {
	suite.Suite
	ctx    context.Context
	srv    *grpc.Server
	conn   *grpc.ClientConn
	client *Client
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.ctx = context.Background()

	repo, err := file.New(filepath.Join(s.T().TempDir(), "persons.json"))
	s.Require().NoError(err)
	svc := service.New(repo, validation.New(nil), nil)

	s.start(NewServer(svc, nil))
}

func (s *ServerSuite) start(adapter PersonServiceServer) {
	lis := bufconn.Listen(1 << 20)
	s.srv = grpc.NewServer(grpc.ChainUnaryInterceptor(RecoveryInterceptor(discardLogger())))
	RegisterPersonServiceServer(s.srv, adapter)
	go func() { _ = s.srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	s.conn = conn
	s.client = NewClient(conn)
}

func (s *ServerSuite) TearDownTest() {
	s.Require().NoError(s.conn.Close())
	s.srv.Stop()
}

func (s *ServerSuite) restart(adapter PersonServiceServer) {
	s.TearDownTest()
	s.start(adapter)
}

func birth() *time.Time {
	t := time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

func validMessage() *PersonMessage {
	return &PersonMessage{
		FirstName:    "Ali",
		LastName:     "Md",
		NationalCode: "1234567890",
		BirthDate:    birth(),
	}
}

func (s *ServerSuite) requireCode(err error, code codes.Code) *status.Status {
	s.Require().Error(err)
	st, ok := status.FromError(err)
	s.Require().True(ok, "not a status error: %v", err)
	s.Require().Equal(code, st.Code(), st.Message())
	return st
}

func (s *ServerSuite) TestScenario() {
	created, err := s.client.CreatePerson(s.ctx, &CreatePersonRequest{Person: validMessage()})
	s.Require().NoError(err)
	id, err := uuid.Parse(created.Person.ID)
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, id)

	all, err := s.client.GetAllPersons(s.ctx, &GetAllPersonsRequest{})
	s.Require().NoError(err)
	s.Len(all.Persons, 1)

	_, err = s.client.CreatePerson(s.ctx, &CreatePersonRequest{Person: validMessage()})
	st := s.requireCode(err, codes.FailedPrecondition)
	s.Equal("another person with this national code already exists", st.Message())

	deleted, err := s.client.DeletePerson(s.ctx, &DeletePersonRequest{ID: created.Person.ID})
	s.Require().NoError(err)
	s.True(deleted.Success)

	all, err = s.client.GetAllPersons(s.ctx, &GetAllPersonsRequest{})
	s.Require().NoError(err)
	s.NotNil(all.Persons)
	s.Empty(all.Persons)
}

func (s *ServerSuite) TestCreateHonoursGivenID() {
	msg := validMessage()
	msg.ID = uuid.NewString()

	created, err := s.client.CreatePerson(s.ctx, &CreatePersonRequest{Person: msg})
	s.Require().NoError(err)
	s.Equal(msg.ID, created.Person.ID)

	got, err := s.client.GetPerson(s.ctx, &GetPersonRequest{ID: msg.ID})
	s.Require().NoError(err)
	s.Equal("Ali", got.Person.FirstName)
	s.True(birth().Equal(*got.Person.BirthDate))
}

func (s *ServerSuite) TestCreateWithoutPerson() {
	_, err := s.client.CreatePerson(s.ctx, &CreatePersonRequest{})
	s.requireCode(err, codes.InvalidArgument)
}

func (s *ServerSuite) TestCreateWithUnparseableID() {
	msg := validMessage()
	msg.ID = "not-a-uuid"
	_, err := s.client.CreatePerson(s.ctx, &CreatePersonRequest{Person: msg})
	st := s.requireCode(err, codes.InvalidArgument)
	s.Equal(msgInvalidID, st.Message())
}

func (s *ServerSuite) TestValidationJoinsAllViolations() {
	msg := validMessage()
	msg.FirstName = ""
	msg.NationalCode = "12ab"

	_, err := s.client.CreatePerson(s.ctx, &CreatePersonRequest{Person: msg})
	st := s.requireCode(err, codes.InvalidArgument)
	s.Equal(strings.Join([]string{
		"firstName: First name is required.",
		"nationalCode: National code must be exactly 10 digits.",
		"nationalCode: National code must contain only digits.",
	}, "; "), st.Message())
}

func (s *ServerSuite) TestGetPerson() {
	s.Run("malformed id", func() {
		_, err := s.client.GetPerson(s.ctx, &GetPersonRequest{ID: "123"})
		s.requireCode(err, codes.InvalidArgument)
	})

	s.Run("absent id", func() {
		_, err := s.client.GetPerson(s.ctx, &GetPersonRequest{ID: uuid.NewString()})
		st := s.requireCode(err, codes.NotFound)
		s.Equal("person not found", st.Message())
	})
}

func (s *ServerSuite) TestUpdatePerson() {
	created, err := s.client.CreatePerson(s.ctx, &CreatePersonRequest{Person: validMessage()})
	s.Require().NoError(err)

	s.Run("first name only", func() {
		msg := *created.Person
		msg.FirstName = "Reza"

		updated, err := s.client.UpdatePerson(s.ctx, &UpdatePersonRequest{Person: &msg})
		s.Require().NoError(err)
		s.Equal(created.Person.ID, updated.Person.ID)
		s.Equal("1234567890", updated.Person.NationalCode)
		s.Equal("Reza", updated.Person.FirstName)
	})

	s.Run("missing id is malformed", func() {
		msg := validMessage()
		_, err := s.client.UpdatePerson(s.ctx, &UpdatePersonRequest{Person: msg})
		s.requireCode(err, codes.InvalidArgument)
	})

	s.Run("unknown id is not found", func() {
		msg := validMessage()
		msg.ID = uuid.NewString()
		_, err := s.client.UpdatePerson(s.ctx, &UpdatePersonRequest{Person: msg})
		s.requireCode(err, codes.NotFound)
	})

	s.Run("without person", func() {
		_, err := s.client.UpdatePerson(s.ctx, &UpdatePersonRequest{})
		s.requireCode(err, codes.InvalidArgument)
	})
}

func (s *ServerSuite) TestDeleteAbsentIsNotFound() {
	id := uuid.NewString()

	_, err := s.client.DeletePerson(s.ctx, &DeletePersonRequest{ID: id})
	s.requireCode(err, codes.NotFound)

	_, err = s.client.DeletePerson(s.ctx, &DeletePersonRequest{ID: id})
	s.requireCode(err, codes.NotFound)

	_, err = s.client.DeletePerson(s.ctx, &DeletePersonRequest{ID: "bogus"})
	s.requireCode(err, codes.InvalidArgument)
}

func (s *ServerSuite) TestCancelledCallDoesNoWork() {
	fake := &countingService{}
	adapter := NewServer(fake, nil)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := adapter.CreatePerson(ctx, &CreatePersonRequest{Person: validMessage()})
	s.Equal(codes.Canceled, status.Code(err))
	_, err = adapter.GetAllPersons(ctx, &GetAllPersonsRequest{})
	s.Equal(codes.Canceled, status.Code(err))
	_, err = adapter.DeletePerson(ctx, &DeletePersonRequest{ID: uuid.NewString()})
	s.Equal(codes.Canceled, status.Code(err))
	s.Zero(fake.calls)
}

func (s *ServerSuite) TestInternalErrorsAreGeneric() {
	s.restart(NewServer(&countingService{err: errors.New("open /srv/data/persons.json: permission denied")}, nil))

	_, err := s.client.GetAllPersons(s.ctx, &GetAllPersonsRequest{})
	st := s.requireCode(err, codes.Internal)
	s.Equal("internal server error", st.Message())
}

func (s *ServerSuite) TestPanicBecomesInternal() {
	s.restart(NewServer(&countingService{panics: true}, nil))

	_, err := s.client.GetAllPersons(s.ctx, &GetAllPersonsRequest{})
	s.requireCode(err, codes.Internal)
}

func (s *ServerSuite) TestDeleteNotPerformedIsPayload() {
	s.restart(NewServer(&countingService{}, nil))

	resp, err := s.client.DeletePerson(s.ctx, &DeletePersonRequest{ID: uuid.NewString()})
	s.Require().NoError(err)
	s.False(resp.Success)
	s.NotEmpty(resp.Message)
}

// countingService is a PersonService stub.
type countingService struct {
	calls  int
	err    error
	panics bool
}

func (c *countingService) hit() error {
	c.calls++
	if c.panics {
		panic("boom")
	}
	return c.err
}

func (c *countingService) CreatePerson(_ context.Context, p types.Person) (types.Person, error) {
	return p, c.hit()
}

func (c *countingService) GetPerson(context.Context, uuid.UUID) (*types.Person, error) {
	return nil, c.hit()
}

func (c *countingService) GetAll(context.Context) ([]types.Person, error) {
	return []types.Person{}, c.hit()
}

func (c *countingService) UpdatePerson(_ context.Context, p types.Person) (types.Person, error) {
	return p, c.hit()
}

func (c *countingService) DeletePerson(context.Context, uuid.UUID) (bool, error) {
	return false, c.hit()
}
