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

func (c *Client) GetCart(ctx context.Context, req *UserRequest) (*Cart, error) {
	return rpc.Call[Cart](ctx, c.conn, ServiceName, "GetCart", req)
}

func (c *Client) AddItem(ctx context.Context, req *ItemRequest) (*Cart, error) {
	return rpc.Call[Cart](ctx, c.conn, ServiceName, "AddItem", req)
}

func (c *Client) RemoveItem(ctx context.Context, req *ItemRequest) (*Cart, error) {
	return rpc.Call[Cart](ctx, c.conn, ServiceName, "RemoveItem", req)
}

func (c *Client) SetItemQuantity(ctx context.Context, req *ItemRequest) (*Cart, error) {
	return rpc.Call[Cart](ctx, c.conn, ServiceName, "SetItemQuantity", req)
}

func (c *Client) ClearCart(ctx context.Context, req *UserRequest) (*Empty, error) {
	return rpc.Call[Empty](ctx, c.conn, ServiceName, "ClearCart", req)
}
