package grpc

import (
	"context"
	"errors"

	"github.com/dwikikusuma/storefront/internal/identity/app"
	"github.com/dwikikusuma/storefront/internal/identity/domain"
	"github.com/dwikikusuma/storefront/pkg/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type IdentityServiceServer interface {
	SignIn(context.Context, *SignInRequest) (*SessionReply, error)
	Resolve(context.Context, *TokenRequest) (*User, error)
	SignOut(context.Context, *TokenRequest) (*Empty, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "SignIn", IdentityServiceServer.SignIn),
		rpc.Unary(ServiceName, "Resolve", IdentityServiceServer.Resolve),
		rpc.Unary(ServiceName, "SignOut", IdentityServiceServer.SignOut),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "identity/v1/identity.json",
}

func Register(s grpc.ServiceRegistrar, srv IdentityServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) SignIn(ctx context.Context, req *SignInRequest) (*SessionReply, error) {
	sess, user, err := s.svc.SignIn(ctx, req.IDToken)
	if err != nil {
		return nil, mapErr(err)
	}
	return &SessionReply{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: toUser(user)}, nil
}

func (s *Server) Resolve(ctx context.Context, req *TokenRequest) (*User, error) {
	user, err := s.svc.Resolve(ctx, req.Token)
	if err != nil {
		return nil, mapErr(err)
	}
	out := toUser(user)
	return &out, nil
}

func (s *Server) SignOut(ctx context.Context, req *TokenRequest) (*Empty, error) {
	if err := s.svc.SignOut(ctx, req.Token); err != nil {
		return nil, mapErr(err)
	}
	return &Empty{}, nil
}

func toUser(u domain.User) User {
	return User{
		ID:        u.ID,
		Name:      u.DisplayName(),
		Email:     u.Email,
		PhotoURL:  u.PhotoURL,
		CreatedAt: u.CreatedAt,
	}
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrInvalidCredential):
		return status.Error(codes.Unauthenticated, "invalid credential")
	case errors.Is(err, app.ErrNotSignedIn):
		return status.Error(codes.Unauthenticated, "must sign in")
	case errors.Is(err, app.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, "identity store unavailable")
	}
	return status.Error(codes.Internal, "internal error")
}
