package grpc

import (
	"context"
	"errors"
	"strconv"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/geo"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/rpc"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type CheckoutServiceServer interface {
	Quote(context.Context, *QuoteRequest) (*QuoteResponse, error)
	PlaceOrder(context.Context, *PlaceOrderRequest) (*PlaceOrderResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CheckoutServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "Quote", CheckoutServiceServer.Quote),
		rpc.Unary(ServiceName, "PlaceOrder", CheckoutServiceServer.PlaceOrder),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "checkout/v1/checkout.json",
}

func Register(s grpc.ServiceRegistrar, srv CheckoutServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	q, err := s.svc.Quote(ctx, req.UserID)
	if err != nil {
		return nil, mapErr(err)
	}
	return toProto(q), nil
}

func (s *Server) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	var loc app.RequestLocator
	if req.Lat != nil && req.Lng != nil {
		loc.Point = &geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	}

	res, err := s.svc.PlaceOrder(ctx, app.PlaceOrderRequest{
		UserID:        req.UserID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Billing: orderdomain.Billing{
			Name:    req.BillingName,
			Mobile:  req.BillingMobile,
			Address: req.Address,
		},
		Locator: loc,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	if res.Skipped {
		return &PlaceOrderResponse{Skipped: true}, nil
	}
	return &PlaceOrderResponse{
		OrderID:         res.Order.ID,
		Number:          res.Order.Number,
		Status:          string(res.Order.Status),
		DiscountedTotal: res.Order.DiscountedTotal,
		DistanceKm:      res.Order.DistanceKm,
	}, nil
}

func toProto(q domain.Quote) *QuoteResponse {
	lines := make([]QuoteLine, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, QuoteLine{
			ItemID:         l.ItemID,
			Name:           l.Name,
			Category:       l.Category,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			UnitDiscounted: l.UnitDiscounted,
			LineTotal:      l.LineTotal,
			LineDiscounted: l.LineDiscounted,
			Discount:       l.Discount.String(),
		})
	}
	return &QuoteResponse{
		Lines:           lines,
		Count:           q.Count(),
		Subtotal:        q.Subtotal,
		DiscountedTotal: q.DiscountedTotal,
		Savings:         q.Savings(),
		MinOrderValue:   q.MinOrderValue,
		MeetsMinimum:    q.MeetsMinimum(),
		ShopOpen:        q.ShopOpen,
	}
}

func mapErr(err error) error {
	var rej *domain.Rejection
	if errors.As(err, &rej) {
		return rejectionStatus(rej)
	}
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, "checkout temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}

func rejectionStatus(rej *domain.Rejection) error {
	code := codes.FailedPrecondition
	switch rej.Code {
	case domain.CodeSignInRequired:
		code = codes.Unauthenticated
	case domain.CodeMissingBilling:
		code = codes.InvalidArgument
	}

	meta := map[string]string{"retryable": strconv.FormatBool(rej.Retryable())}
	if rej.Code == domain.CodeOutOfRange {
		meta["distance_km"] = strconv.FormatFloat(rej.DistanceKm, 'f', 2, 64)
		meta["radius_km"] = strconv.FormatFloat(rej.RadiusKm, 'f', 2, 64)
	}
	if rej.Code == domain.CodeBelowMinimum {
		meta["min_order_value"] = rej.Minimum.StringFixed(2)
		meta["total"] = rej.Total.StringFixed(2)
	}

	st := status.New(code, rej.Message)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   string(rej.Code),
		Domain:   ErrorDomain,
		Metadata: meta,
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// RejectionInfo extracts the ErrorInfo detail of a checkout rejection.
func RejectionInfo(err error) (*errdetails.ErrorInfo, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return nil, false
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == ErrorDomain {
			return info, true
		}
	}
	return nil, false
}
