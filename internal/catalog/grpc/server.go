package grpc

import (
	"context"
	"errors"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type CatalogServiceServer interface {
	CreateItem(context.Context, *CreateItemRequest) (*MenuItem, error)
	UpdateItem(context.Context, *UpdateItemRequest) (*MenuItem, error)
	DeleteItem(context.Context, *ItemID) (*Empty, error)
	GetItem(context.Context, *ItemID) (*MenuItem, error)
	ListItems(context.Context, *ListItemsRequest) (*ListItemsResponse, error)
	ListCategories(context.Context, *Empty) (*CategoriesResponse, error)
	AttachPhoto(context.Context, *AttachPhotoRequest) (*MenuItem, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "CreateItem", CatalogServiceServer.CreateItem),
		rpc.Unary(ServiceName, "UpdateItem", CatalogServiceServer.UpdateItem),
		rpc.Unary(ServiceName, "DeleteItem", CatalogServiceServer.DeleteItem),
		rpc.Unary(ServiceName, "GetItem", CatalogServiceServer.GetItem),
		rpc.Unary(ServiceName, "ListItems", CatalogServiceServer.ListItems),
		rpc.Unary(ServiceName, "ListCategories", CatalogServiceServer.ListCategories),
		rpc.Unary(ServiceName, "AttachPhoto", CatalogServiceServer.AttachPhoto),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/catalog.json",
}

func Register(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) CreateItem(ctx context.Context, req *CreateItemRequest) (*MenuItem, error) {
	item, err := s.svc.CreateItem(ctx, toInput(req.Item))
	if err != nil {
		return nil, mapErr(err)
	}
	return toProto(item), nil
}

func (s *Server) UpdateItem(ctx context.Context, req *UpdateItemRequest) (*MenuItem, error) {
	item, err := s.svc.UpdateItem(ctx, req.ID, toInput(req.Item))
	if err != nil {
		return nil, mapErr(err)
	}
	return toProto(item), nil
}

func (s *Server) DeleteItem(ctx context.Context, req *ItemID) (*Empty, error) {
	if err := s.svc.DeleteItem(ctx, req.ID); err != nil {
		return nil, mapErr(err)
	}
	return &Empty{}, nil
}

func (s *Server) GetItem(ctx context.Context, req *ItemID) (*MenuItem, error) {
	item, err := s.svc.GetItem(ctx, req.ID)
	if err != nil {
		return nil, mapErr(err)
	}
	return toProto(item), nil
}

func (s *Server) ListItems(ctx context.Context, req *ListItemsRequest) (*ListItemsResponse, error) {
	items, err := s.svc.ListItems(ctx, req.Category)
	if err != nil {
		return nil, mapErr(err)
	}

	out := make([]MenuItem, 0, len(items))
	for _, it := range items {
		out = append(out, *toProto(it))
	}
	return &ListItemsResponse{Items: out}, nil
}

func (s *Server) ListCategories(ctx context.Context, _ *Empty) (*CategoriesResponse, error) {
	cats, err := s.svc.Categories(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return &CategoriesResponse{Categories: cats}, nil
}

func (s *Server) AttachPhoto(ctx context.Context, req *AttachPhotoRequest) (*MenuItem, error) {
	item, err := s.svc.AttachPhoto(ctx, req.ID, req.Filename, req.Data)
	if err != nil {
		return nil, mapErr(err)
	}
	return toProto(item), nil
}

func toInput(f ItemFields) domain.ItemInput {
	return domain.ItemInput{
		Name:        f.Name,
		Price:       f.Price,
		Category:    f.Category,
		PhotoURL:    f.PhotoURL,
		Description: f.Description,
	}
}

func toProto(p domain.MenuItem) *MenuItem {
	return &MenuItem{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		Category:      p.Category,
		PhotoURL:      p.PhotoURL,
		Description:   p.Description,
		CreatedAtUnix: p.CreatedAt.Unix(),
		UpdatedAtUnix: p.UpdatedAt.Unix(),
	}
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, app.ErrUploadNotConfigured):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, app.ErrUploadFailed), errors.Is(err, app.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}
