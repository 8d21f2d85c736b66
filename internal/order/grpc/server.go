package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type OrderServiceServer interface {
	GetOrder(context.Context, *OrderRequest) (*Order, error)
	ListUserOrders(context.Context, *UserOrdersRequest) (*UserOrders, error)
	ListOrdersByDay(context.Context, *DayRequest) (*Orders, error)
	AcceptOrder(context.Context, *OrderRequest) (*Order, error)
	RejectOrder(context.Context, *OrderRequest) (*Order, error)
	GetReceipt(context.Context, *OrderRequest) (*Receipt, error)
	ExportOrders(context.Context, *DayRequest) (*Export, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "GetOrder", OrderServiceServer.GetOrder),
		rpc.Unary(ServiceName, "ListUserOrders", OrderServiceServer.ListUserOrders),
		rpc.Unary(ServiceName, "ListOrdersByDay", OrderServiceServer.ListOrdersByDay),
		rpc.Unary(ServiceName, "AcceptOrder", OrderServiceServer.AcceptOrder),
		rpc.Unary(ServiceName, "RejectOrder", OrderServiceServer.RejectOrder),
		rpc.Unary(ServiceName, "GetReceipt", OrderServiceServer.GetReceipt),
		rpc.Unary(ServiceName, "ExportOrders", OrderServiceServer.ExportOrders),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "order/v1/order.json",
}

func Register(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) GetOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	return orderReply(s.svc.Get(ctx, req.OrderID))
}

func (s *Server) ListUserOrders(ctx context.Context, req *UserOrdersRequest) (*UserOrders, error) {
	day, err := s.parseDay(req.Date)
	if err != nil {
		return nil, err
	}
	p, err := s.svc.ListForUser(ctx, req.UserID, day)
	if err != nil {
		return nil, mapErr(err)
	}
	return &UserOrders{Today: toBuckets(p.Today), OnDate: toBuckets(p.OnDate)}, nil
}

func (s *Server) ListOrdersByDay(ctx context.Context, req *DayRequest) (*Orders, error) {
	day, err := s.parseDay(req.Date)
	if err != nil {
		return nil, err
	}
	orders, err := s.svc.ListByDay(ctx, day)
	if err != nil {
		return nil, mapErr(err)
	}
	return &Orders{Orders: toProtoList(orders)}, nil
}

func (s *Server) AcceptOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	return orderReply(s.svc.Accept(ctx, req.OrderID))
}

func (s *Server) RejectOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	return orderReply(s.svc.Reject(ctx, req.OrderID))
}

func (s *Server) GetReceipt(ctx context.Context, req *OrderRequest) (*Receipt, error) {
	text, err := s.svc.Receipt(ctx, req.OrderID)
	if err != nil {
		return nil, mapErr(err)
	}
	return &Receipt{Text: text}, nil
}

func (s *Server) ExportOrders(ctx context.Context, req *DayRequest) (*Export, error) {
	day, err := s.parseDay(req.Date)
	if err != nil {
		return nil, err
	}
	if day.IsZero() {
		day = time.Now()
	}
	var b strings.Builder
	if err := s.svc.ExportCSV(ctx, day, &b); err != nil {
		return nil, mapErr(err)
	}
	return &Export{
		Filename: "orders-" + day.In(s.svc.Location()).Format(DateLayout) + ".csv",
		CSV:      b.String(),
	}, nil
}

// parseDay returns the zero time for an empty date.
func (s *Server) parseDay(date string) (time.Time, error) {
	if strings.TrimSpace(date) == "" {
		return time.Time{}, nil
	}
	day, err := time.ParseInLocation(DateLayout, date, s.svc.Location())
	if err != nil {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "date must be %s", DateLayout)
	}
	return day, nil
}

func orderReply(o domain.Order, err error) (*Order, error) {
	if err != nil {
		return nil, mapErr(err)
	}
	return toProto(o), nil
}

func toBuckets(b domain.Buckets) Buckets {
	return Buckets{
		Pending:  toProtoList(b.Pending),
		Accepted: toProtoList(b.Accepted),
		Rejected: toProtoList(b.Rejected),
	}
}

func toProtoList(orders []domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, *toProto(o))
	}
	return out
}

func toProto(o domain.Order) *Order {
	lines := make([]Line, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, Line{
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
	return &Order{
		ID:              o.ID,
		Number:          o.Number,
		UserID:          o.UserID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		BillingName:     o.Billing.Name,
		BillingMobile:   o.Billing.Mobile,
		Address:         o.Billing.Address,
		Lines:           lines,
		Subtotal:        o.Subtotal,
		DiscountedTotal: o.DiscountedTotal,
		Lat:             o.Location.Lat,
		Lng:             o.Location.Lng,
		DistanceKm:      o.DistanceKm,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
	}
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrNotFound):
		return status.Error(codes.NotFound, "order not found")
	case errors.Is(err, app.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, app.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, "order store unavailable")
	}
	return status.Error(codes.Internal, "internal error")
}
