package grpc

import (
	"context"
	"errors"

	"github.com/dwikikusuma/storefront/internal/geo"
	"github.com/dwikikusuma/storefront/internal/geocoding"
	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/dwikikusuma/storefront/internal/shop/app"
	"github.com/dwikikusuma/storefront/internal/shop/domain"
	"github.com/dwikikusuma/storefront/pkg/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ShopServiceServer interface {
	GetSettings(context.Context, *Empty) (*Settings, error)
	SetOpen(context.Context, *SetOpenRequest) (*Settings, error)
	SetLocation(context.Context, *SetLocationRequest) (*Settings, error)
	SetLocationByCity(context.Context, *SetLocationByCityRequest) (*Settings, error)
	SearchCity(context.Context, *SearchCityRequest) (*Places, error)
	DetectCity(context.Context, *DetectCityRequest) (*Place, error)
	SetDiscount(context.Context, *SetDiscountRequest) (*Settings, error)
	SetCategoryDiscount(context.Context, *CategoryDiscountRequest) (*Settings, error)
	RemoveCategoryDiscount(context.Context, *CategoryDiscountRequest) (*Settings, error)
	SetMinOrderValue(context.Context, *MinOrderValueRequest) (*Settings, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShopServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "GetSettings", ShopServiceServer.GetSettings),
		rpc.Unary(ServiceName, "SetOpen", ShopServiceServer.SetOpen),
		rpc.Unary(ServiceName, "SetLocation", ShopServiceServer.SetLocation),
		rpc.Unary(ServiceName, "SetLocationByCity", ShopServiceServer.SetLocationByCity),
		rpc.Unary(ServiceName, "SearchCity", ShopServiceServer.SearchCity),
		rpc.Unary(ServiceName, "DetectCity", ShopServiceServer.DetectCity),
		rpc.Unary(ServiceName, "SetDiscount", ShopServiceServer.SetDiscount),
		rpc.Unary(ServiceName, "SetCategoryDiscount", ShopServiceServer.SetCategoryDiscount),
		rpc.Unary(ServiceName, "RemoveCategoryDiscount", ShopServiceServer.RemoveCategoryDiscount),
		rpc.Unary(ServiceName, "SetMinOrderValue", ShopServiceServer.SetMinOrderValue),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shop/v1/shop.json",
}

func Register(s grpc.ServiceRegistrar, srv ShopServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) GetSettings(ctx context.Context, _ *Empty) (*Settings, error) {
	return settingsReply(s.svc.Current(ctx))
}

func (s *Server) SetOpen(ctx context.Context, req *SetOpenRequest) (*Settings, error) {
	return settingsReply(s.svc.SetOpen(ctx, req.Open))
}

func (s *Server) SetLocation(ctx context.Context, req *SetLocationRequest) (*Settings, error) {
	return settingsReply(s.svc.SetLocation(ctx, req.City, geo.Point{Lat: req.Lat, Lng: req.Lng}, req.RadiusKm))
}

func (s *Server) SetLocationByCity(ctx context.Context, req *SetLocationByCityRequest) (*Settings, error) {
	return settingsReply(s.svc.SetLocationByCity(ctx, req.Query, req.RadiusKm))
}

func (s *Server) SearchCity(ctx context.Context, req *SearchCityRequest) (*Places, error) {
	places, err := s.svc.SearchCity(ctx, req.Query)
	if err != nil {
		return nil, mapErr(err)
	}
	out := &Places{Places: make([]Place, 0, len(places))}
	for _, p := range places {
		out.Places = append(out.Places, toPlace(p))
	}
	return out, nil
}

func (s *Server) DetectCity(ctx context.Context, req *DetectCityRequest) (*Place, error) {
	p, err := s.svc.DetectCity(ctx, geo.Point{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		return nil, mapErr(err)
	}
	out := toPlace(p)
	return &out, nil
}

func (s *Server) SetDiscount(ctx context.Context, req *SetDiscountRequest) (*Settings, error) {
	return settingsReply(s.svc.SetDiscount(ctx, req.Percent, req.Flat))
}

func (s *Server) SetCategoryDiscount(ctx context.Context, req *CategoryDiscountRequest) (*Settings, error) {
	kind := pricing.Kind(req.Type)
	if kind == "" {
		kind = pricing.Percent
	}
	return settingsReply(s.svc.SetCategoryDiscount(ctx, req.Category, pricing.Discount{Type: kind, Value: req.Value}))
}

func (s *Server) RemoveCategoryDiscount(ctx context.Context, req *CategoryDiscountRequest) (*Settings, error) {
	return settingsReply(s.svc.RemoveCategoryDiscount(ctx, req.Category))
}

func (s *Server) SetMinOrderValue(ctx context.Context, req *MinOrderValueRequest) (*Settings, error) {
	return settingsReply(s.svc.SetMinOrderValue(ctx, req.Value))
}

func settingsReply(st domain.Settings, err error) (*Settings, error) {
	if err != nil {
		return nil, mapErr(err)
	}
	return ToProto(st), nil
}

// ToProto is shared with in-process readers of the settings.
func ToProto(st domain.Settings) *Settings {
	cats := make(map[string]Discount, len(st.CategoryDiscounts))
	for k, d := range st.CategoryDiscounts {
		cats[k] = Discount{Type: string(d.Type), Value: d.Value}
	}
	return &Settings{
		IsOpen:            st.IsOpen,
		City:              st.City,
		Lat:               st.Center.Lat,
		Lng:               st.Center.Lng,
		RadiusKm:          st.RadiusKm,
		DiscountPercent:   st.DiscountPercent,
		DiscountFlat:      st.DiscountFlat,
		CategoryDiscounts: cats,
		MinOrderValue:     st.MinOrderValue,
		UpdatedAt:         st.UpdatedAt,
	}
}

func toPlace(p geocoding.Place) Place {
	return Place{
		City:        p.City,
		State:       p.State,
		Country:     p.Country,
		DisplayName: p.DisplayName,
		Lat:         p.Point.Lat,
		Lng:         p.Point.Lng,
	}
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrLocationNotFound):
		return status.Error(codes.NotFound, "location not found")
	case errors.Is(err, app.ErrGeocodingNotConfigured):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, app.ErrGeocodingUnavailable):
		return status.Error(codes.Unavailable, "geocoding unavailable")
	case errors.Is(err, app.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, "shop store unavailable")
	}
	return status.Error(codes.Internal, "internal error")
}
