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

func (c *Client) Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	return rpc.Call[QuoteResponse](ctx, c.conn, ServiceName, "Quote", req)
}

func (c *Client) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	return rpc.Call[PlaceOrderResponse](ctx, c.conn, ServiceName, "PlaceOrder", req)
}
