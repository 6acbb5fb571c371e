package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aanand-mishra/persons-api/internal/errs"
	"github.com/aanand-mishra/persons-api/internal/types"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const msgInvalidID = "invalid person id"

func toMessage(p types.Person) *PersonMessage {
	birth := p.BirthDate.UTC()
	return &PersonMessage{
		ID:           p.ID.String(),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		NationalCode: p.NationalCode,
		BirthDate:    &birth,
	}
}

// fromMessage maps a wire person to the domain. When generateID is set a
// blank id is replaced by a new UUID; otherwise the id must parse.
func fromMessage(msg *PersonMessage, generateID bool) (types.Person, error) {
	var (
		id  uuid.UUID
		err error
	)
	if generateID && strings.TrimSpace(msg.ID) == "" {
		id = uuid.New()
	} else if id, err = parseID(msg.ID); err != nil {
		return types.Person{}, err
	}

	var birth time.Time
	if msg.BirthDate != nil {
		birth = msg.BirthDate.UTC()
	}

	return types.Person{
		ID:           id,
		FirstName:    msg.FirstName,
		LastName:     msg.LastName,
		NationalCode: msg.NationalCode,
		BirthDate:    birth,
	}, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, errs.Malformed(msgInvalidID, err)
	}
	return id, nil
}

// toStatus maps a failure to the gRPC status returned to the caller.
// Internal failures get a generic message; the cause stays in the logs.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}

	msg := errs.PublicMessage(err)
	switch errs.CodeOf(err) {
	case errs.CodeMalformedRequest:
		return status.Error(codes.InvalidArgument, msg)
	case errs.CodeNotFound:
		return status.Error(codes.NotFound, msg)
	case errs.CodeValidationFailed:
		return status.Error(codes.InvalidArgument, msg)
	case errs.CodeConflict:
		return status.Error(codes.FailedPrecondition, msg)
	default:
		return status.Error(codes.Internal, msg)
	}
}
