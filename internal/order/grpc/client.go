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

func (c *Client) GetOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	return rpc.Call[Order](ctx, c.conn, ServiceName, "GetOrder", req)
}

func (c *Client) ListUserOrders(ctx context.Context, req *UserOrdersRequest) (*UserOrders, error) {
	return rpc.Call[UserOrders](ctx, c.conn, ServiceName, "ListUserOrders", req)
}

func (c *Client) ListOrdersByDay(ctx context.Context, req *DayRequest) (*Orders, error) {
	return rpc.Call[Orders](ctx, c.conn, ServiceName, "ListOrdersByDay", req)
}

func (c *Client) AcceptOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	return rpc.Call[Order](ctx, c.conn, ServiceName, "AcceptOrder", req)
}

func (c *Client) RejectOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	return rpc.Call[Order](ctx, c.conn, ServiceName, "RejectOrder", req)
}

func (c *Client) GetReceipt(ctx context.Context, req *OrderRequest) (*Receipt, error) {
	return rpc.Call[Receipt](ctx, c.conn, ServiceName, "GetReceipt", req)
}

func (c *Client) ExportOrders(ctx context.Context, req *DayRequest) (*Export, error) {
	return rpc.Call[Export](ctx, c.conn, ServiceName, "ExportOrders", req)
}
