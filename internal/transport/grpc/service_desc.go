package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "persons.v1.PersonService"

// Full method names.
const (
	CreatePersonMethod  = "/" + ServiceName + "/CreatePerson"
	GetPersonMethod     = "/" + ServiceName + "/GetPerson"
	UpdatePersonMethod  = "/" + ServiceName + "/UpdatePerson"
	DeletePersonMethod  = "/" + ServiceName + "/DeletePerson"
	GetAllPersonsMethod = "/" + ServiceName + "/GetAllPersons"
)

// PersonServiceServer is the server API of persons.v1.PersonService.
type PersonServiceServer interface {
	CreatePerson(context.Context, *CreatePersonRequest) (*CreatePersonResponse, error)
	GetPerson(context.Context, *GetPersonRequest) (*GetPersonResponse, error)
	UpdatePerson(context.Context, *UpdatePersonRequest) (*UpdatePersonResponse, error)
	DeletePerson(context.Context, *DeletePersonRequest) (*DeletePersonResponse, error)
	GetAllPersons(context.Context, *GetAllPersonsRequest) (*GetAllPersonsResponse, error)
}

// RegisterPersonServiceServer registers srv on s.
func RegisterPersonServiceServer(s grpc.ServiceRegistrar, srv PersonServiceServer) {
	s.RegisterService(&PersonServiceDesc, srv)
}

// PersonServiceDesc describes persons.v1.PersonService for grpc.Server.
var PersonServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PersonServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreatePerson",
			Handler: unary(CreatePersonMethod, func(s PersonServiceServer, ctx context.Context, in *CreatePersonRequest) (*CreatePersonResponse, error) {
				return s.CreatePerson(ctx, in)
			}),
		},
		{
			MethodName: "GetPerson",
			Handler: unary(GetPersonMethod, func(s PersonServiceServer, ctx context.Context, in *GetPersonRequest) (*GetPersonResponse, error) {
				return s.GetPerson(ctx, in)
			}),
		},
		{
			MethodName: "UpdatePerson",
			Handler: unary(UpdatePersonMethod, func(s PersonServiceServer, ctx context.Context, in *UpdatePersonRequest) (*UpdatePersonResponse, error) {
				return s.UpdatePerson(ctx, in)
			}),
		},
		{
			MethodName: "DeletePerson",
			Handler: unary(DeletePersonMethod, func(s PersonServiceServer, ctx context.Context, in *DeletePersonRequest) (*DeletePersonResponse, error) {
				return s.DeletePerson(ctx, in)
			}),
		},
		{
			MethodName: "GetAllPersons",
			Handler: unary(GetAllPersonsMethod, func(s PersonServiceServer, ctx context.Context, in *GetAllPersonsRequest) (*GetAllPersonsResponse, error) {
				return s.GetAllPersons(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "persons/v1/person.proto",
}

// unary builds the method handler grpc.Server calls: decode the request,
// then run call directly or through the configured interceptor chain.
func unary[Req, Resp any](fullMethod string, call func(PersonServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PersonServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PersonServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client is the typed client of persons.v1.PersonService.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePerson(ctx context.Context, in *CreatePersonRequest, opts ...grpc.CallOption) (*CreatePersonResponse, error) {
	return invoke[CreatePersonResponse](ctx, c.cc, CreatePersonMethod, in, opts)
}

func (c *Client) GetPerson(ctx context.Context, in *GetPersonRequest, opts ...grpc.CallOption) (*GetPersonResponse, error) {
	return invoke[GetPersonResponse](ctx, c.cc, GetPersonMethod, in, opts)
}

func (c *Client) UpdatePerson(ctx context.Context, in *UpdatePersonRequest, opts ...grpc.CallOption) (*UpdatePersonResponse, error) {
	return invoke[UpdatePersonResponse](ctx, c.cc, UpdatePersonMethod, in, opts)
}

func (c *Client) DeletePerson(ctx context.Context, in *DeletePersonRequest, opts ...grpc.CallOption) (*DeletePersonResponse, error) {
	return invoke[DeletePersonResponse](ctx, c.cc, DeletePersonMethod, in, opts)
}

func (c *Client) GetAllPersons(ctx context.Context, in *GetAllPersonsRequest, opts ...grpc.CallOption) (*GetAllPersonsResponse, error) {
	return invoke[GetAllPersonsResponse](ctx, c.cc, GetAllPersonsMethod, in, opts)
}
