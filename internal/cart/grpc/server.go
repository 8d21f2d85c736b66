package grpc

import (
	"context"
	"errors"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type CartServiceServer interface {
	GetCart(context.Context, *UserRequest) (*Cart, error)
	AddItem(context.Context, *ItemRequest) (*Cart, error)
	RemoveItem(context.Context, *ItemRequest) (*Cart, error)
	SetItemQuantity(context.Context, *ItemRequest) (*Cart, error)
	ClearCart(context.Context, *UserRequest) (*Empty, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "GetCart", CartServiceServer.GetCart),
		rpc.Unary(ServiceName, "AddItem", CartServiceServer.AddItem),
		rpc.Unary(ServiceName, "RemoveItem", CartServiceServer.RemoveItem),
		rpc.Unary(ServiceName, "SetItemQuantity", CartServiceServer.SetItemQuantity),
		rpc.Unary(ServiceName, "ClearCart", CartServiceServer.ClearCart),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cart/v1/cart.json",
}

func Register(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) GetCart(ctx context.Context, req *UserRequest) (*Cart, error) {
	c, err := s.svc.GetCart(ctx, req.UserID)
	if err != nil {
		return nil, mapErr(err)
	}
	return toProto(c), nil
}

func (s *Server) AddItem(ctx context.Context, req *ItemRequest) (*Cart, error) {
	c, err := s.svc.AddItem(ctx, req.UserID, req.ItemID)
	if err != nil {
		return nil, mapErr(err)
	}
	return toProto(c), nil
}

func (s *Server) RemoveItem(ctx context.Context, req *ItemRequest) (*Cart, error) {
	c, err := s.svc.RemoveItem(ctx, req.UserID, req.ItemID)
	if err != nil {
		return nil, mapErr(err)
	}
	return toProto(c), nil
}

func (s *Server) SetItemQuantity(ctx context.Context, req *ItemRequest) (*Cart, error) {
	c, err := s.svc.SetItemQuantity(ctx, req.UserID, req.ItemID, req.Quantity)
	if err != nil {
		return nil, mapErr(err)
	}
	return toProto(c), nil
}

func (s *Server) ClearCart(ctx context.Context, req *UserRequest) (*Empty, error) {
	if err := s.svc.ClearCart(ctx, req.UserID); err != nil {
		return nil, mapErr(err)
	}
	return &Empty{}, nil
}

func toProto(c *domain.Cart) *Cart {
	lines := make([]Line, 0, len(c.Lines()))
	for _, l := range c.Lines() {
		lines = append(lines, Line{
			ItemID:    l.ItemID,
			Name:      l.Name,
			Category:  l.Category,
			Price:     l.Price,
			Quantity:  l.Quantity,
			LineTotal: l.Total(),
		})
	}
	return &Cart{
		UserID:   c.UserID,
		Lines:    lines,
		Count:    c.Count(),
		RawTotal: c.RawTotal(),
	}
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrItemNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, app.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, "cart store unavailable")
	}
	return status.Error(codes.Internal, "internal error")
}
