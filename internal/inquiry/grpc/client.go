package grpc

import (
	"context"

	"github.com/dwikikusuma/storefront/pkg/rpc"
)

type Client struct {
	conn rpc.Invoker
}

func NewClient(conn rpc.Invoker) *Client {
	return &Client{conn: conn}
}

func (c *Client) Submit(ctx context.Context, req *SubmitRequest) (*Inquiry, error) {
	return rpc.Call[Inquiry](ctx, c.conn, ServiceName, "Submit", req)
}

func (c *Client) List(ctx context.Context, kind string) (*Inquiries, error) {
	return rpc.Call[Inquiries](ctx, c.conn, ServiceName, "List", &ListRequest{Kind: kind})
}
