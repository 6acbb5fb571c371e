// Package grpc exposes the person service over gRPC.
//
// It is the transport adapter: it maps wire messages to types.Person and
// back, and it is the only place where errs codes become gRPC status
// codes:
//
//	malformed request    → InvalidArgument
//	record absent        → NotFound
//	validation failed    → InvalidArgument (all violations joined by "; ")
//	national code taken  → FailedPrecondition
//	anything else        → Internal ("internal server error")
//
// Messages travel with a JSON codec (content-subtype "json"); the service
// descriptor in service_desc.go has the same shape as generated code.
package grpc

import (
	"context"
	"log/slog"

	"github.com/aanand-mishra/persons-api/internal/errs"
	"github.com/aanand-mishra/persons-api/internal/types"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// PersonService is the domain API the adapter drives.
type PersonService interface {
	CreatePerson(ctx context.Context, p types.Person) (types.Person, error)
	GetPerson(ctx context.Context, id uuid.UUID) (*types.Person, error)
	GetAll(ctx context.Context) ([]types.Person, error)
	UpdatePerson(ctx context.Context, p types.Person) (types.Person, error)
	DeletePerson(ctx context.Context, id uuid.UUID) (bool, error)
}

// Server implements PersonServiceServer on top of a PersonService.
type Server struct {
	service PersonService
	log     *slog.Logger
}

var _ PersonServiceServer = (*Server)(nil)

// NewServer creates the adapter. A nil logger discards output.
func NewServer(service PersonService, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{service: service, log: log}
}

func (s *Server) CreatePerson(ctx context.Context, req *CreatePersonRequest) (*CreatePersonResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	if req.Person == nil {
		return nil, status.Error(codes.InvalidArgument, "person data is required")
	}

	p, err := fromMessage(req.Person, true)
	if err != nil {
		return nil, s.fail(ctx, CreatePersonMethod, err)
	}

	created, err := s.service.CreatePerson(ctx, p)
	if err != nil {
		return nil, s.fail(ctx, CreatePersonMethod, err)
	}

	return &CreatePersonResponse{Person: toMessage(created)}, nil
}

func (s *Server) GetPerson(ctx context.Context, req *GetPersonRequest) (*GetPersonResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	id, err := parseID(req.ID)
	if err != nil {
		return nil, s.fail(ctx, GetPersonMethod, err)
	}

	p, err := s.service.GetPerson(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, GetPersonMethod, err)
	}
	if p == nil {
		return nil, s.fail(ctx, GetPersonMethod, errs.NotFound("person not found"))
	}

	return &GetPersonResponse{Person: toMessage(*p)}, nil
}

func (s *Server) UpdatePerson(ctx context.Context, req *UpdatePersonRequest) (*UpdatePersonResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	if req.Person == nil {
		return nil, status.Error(codes.InvalidArgument, "person data is required")
	}

	p, err := fromMessage(req.Person, false)
	if err != nil {
		return nil, s.fail(ctx, UpdatePersonMethod, err)
	}

	updated, err := s.service.UpdatePerson(ctx, p)
	if err != nil {
		return nil, s.fail(ctx, UpdatePersonMethod, err)
	}

	return &UpdatePersonResponse{Person: toMessage(updated)}, nil
}

func (s *Server) DeletePerson(ctx context.Context, req *DeletePersonRequest) (*DeletePersonResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	id, err := parseID(req.ID)
	if err != nil {
		return nil, s.fail(ctx, DeletePersonMethod, err)
	}

	ok, err := s.service.DeletePerson(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, DeletePersonMethod, err)
	}
	if !ok {
		return &DeletePersonResponse{Success: false, Message: "person was not deleted"}, nil
	}

	return &DeletePersonResponse{Success: true, Message: "person deleted"}, nil
}

func (s *Server) GetAllPersons(ctx context.Context, _ *GetAllPersonsRequest) (*GetAllPersonsResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	persons, err := s.service.GetAll(ctx)
	if err != nil {
		return nil, s.fail(ctx, GetAllPersonsMethod, err)
	}

	resp := &GetAllPersonsResponse{Persons: make([]*PersonMessage, 0, len(persons))}
	for _, p := range persons {
		resp.Persons = append(resp.Persons, toMessage(p))
	}
	return resp, nil
}

// fail logs err and converts it to a status. Client faults are logged at
// warn; internal failures at error with their cause.
func (s *Server) fail(ctx context.Context, method string, err error) error {
	st := toStatus(err)
	code := status.Code(st)

	if code == codes.Internal {
		s.log.ErrorContext(ctx, "request failed",
			slog.String("method", method),
			slog.String("error", err.Error()))
	} else {
		s.log.WarnContext(ctx, "request rejected",
			slog.String("method", method),
			slog.String("code", code.String()),
			slog.String("error", err.Error()))
	}

	return st
}
