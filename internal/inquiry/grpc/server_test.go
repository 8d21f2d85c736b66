package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dwikikusuma/storefront/internal/inquiry/app"
	inquirystore "github.com/dwikikusuma/storefront/internal/inquiry/infra/docstore"
	"github.com/dwikikusuma/storefront/pkg/docstore"
	"github.com/dwikikusuma/storefront/pkg/rpc/rpctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestInquiryOverGRPC(t *testing.T) {
	ctx := context.Background()
	svc := app.NewService(inquirystore.NewInquiryRepo(docstore.NewMemory(), time.UTC, nil), time.UTC, nil)
	c := NewClient(rpctest.Serve(t, func(s *grpc.Server) { Register(s, NewServer(svc, time.UTC)) }))

	event := time.Now().UTC().AddDate(0, 1, 0).Format(DateLayout)
	got, err := c.Submit(ctx, &SubmitRequest{Kind: "party", ContactName: "Asha", Phone: "98000", EventDate: event, Guests: 30, Venue: "Terrace"})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, event, got.EventDate)

	list, err := c.List(ctx, "party")
	require.NoError(t, err)
	require.Len(t, list.Inquiries, 1)
	assert.Equal(t, 30, list.Inquiries[0].Guests)

	_, err = c.Submit(ctx, &SubmitRequest{Kind: "party", ContactName: "Asha", Phone: "98000", EventDate: "14/12/2024", Guests: 30})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.Submit(ctx, &SubmitRequest{Kind: "party", ContactName: "Asha", Phone: "98000", EventDate: event, Guests: 0})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
