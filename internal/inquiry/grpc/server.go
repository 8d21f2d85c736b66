package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dwikikusuma/storefront/internal/inquiry/app"
	"github.com/dwikikusuma/storefront/internal/inquiry/domain"
	"github.com/dwikikusuma/storefront/pkg/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type InquiryServiceServer interface {
	Submit(context.Context, *SubmitRequest) (*Inquiry, error)
	List(context.Context, *ListRequest) (*Inquiries, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InquiryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "Submit", InquiryServiceServer.Submit),
		rpc.Unary(ServiceName, "List", InquiryServiceServer.List),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inquiry/v1/inquiry.json",
}

func Register(s grpc.ServiceRegistrar, srv InquiryServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	svc *app.Service
	loc *time.Location
}

// NewServer parses event dates as calendar days in loc.
func NewServer(svc *app.Service, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	return &Server{svc: svc, loc: loc}
}

func (s *Server) Submit(ctx context.Context, req *SubmitRequest) (*Inquiry, error) {
	kind, err := domain.ParseKind(req.Kind)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	day, err := time.ParseInLocation(DateLayout, req.EventDate, s.loc)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "event_date must be YYYY-MM-DD")
	}

	q, err := s.svc.Submit(ctx, domain.Inquiry{
		Kind:        kind,
		ContactName: req.ContactName,
		PartnerName: req.PartnerName,
		Phone:       req.Phone,
		EventDate:   day,
		Guests:      req.Guests,
		Venue:       req.Venue,
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	out := s.toProto(q)
	return &out, nil
}

func (s *Server) List(ctx context.Context, req *ListRequest) (*Inquiries, error) {
	qs, err := s.svc.List(ctx, req.Kind)
	if err != nil {
		return nil, mapErr(err)
	}
	out := &Inquiries{Inquiries: make([]Inquiry, 0, len(qs))}
	for _, q := range qs {
		out.Inquiries = append(out.Inquiries, s.toProto(q))
	}
	return out, nil
}

func (s *Server) toProto(q domain.Inquiry) Inquiry {
	return Inquiry{
		ID:          q.ID,
		Kind:        string(q.Kind),
		ContactName: q.ContactName,
		PartnerName: q.PartnerName,
		Phone:       q.Phone,
		EventDate:   q.EventDate.In(s.loc).Format(DateLayout),
		Guests:      q.Guests,
		Venue:       q.Venue,
		Notes:       q.Notes,
		CreatedAt:   q.CreatedAt,
	}
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, "inquiry store unavailable")
	}
	return status.Error(codes.Internal, "internal error")
}
