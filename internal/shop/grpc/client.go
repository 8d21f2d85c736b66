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

func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	return rpc.Call[Settings](ctx, c.conn, ServiceName, "GetSettings", &Empty{})
}

func (c *Client) SetOpen(ctx context.Context, req *SetOpenRequest) (*Settings, error) {
	return rpc.Call[Settings](ctx, c.conn, ServiceName, "SetOpen", req)
}

func (c *Client) SetLocation(ctx context.Context, req *SetLocationRequest) (*Settings, error) {
	return rpc.Call[Settings](ctx, c.conn, ServiceName, "SetLocation", req)
}

func (c *Client) SetLocationByCity(ctx context.Context, req *SetLocationByCityRequest) (*Settings, error) {
	return rpc.Call[Settings](ctx, c.conn, ServiceName, "SetLocationByCity", req)
}

func (c *Client) SearchCity(ctx context.Context, req *SearchCityRequest) (*Places, error) {
	return rpc.Call[Places](ctx, c.conn, ServiceName, "SearchCity", req)
}

func (c *Client) DetectCity(ctx context.Context, req *DetectCityRequest) (*Place, error) {
	return rpc.Call[Place](ctx, c.conn, ServiceName, "DetectCity", req)
}

func (c *Client) SetDiscount(ctx context.Context, req *SetDiscountRequest) (*Settings, error) {
	return rpc.Call[Settings](ctx, c.conn, ServiceName, "SetDiscount", req)
}

func (c *Client) SetCategoryDiscount(ctx context.Context, req *CategoryDiscountRequest) (*Settings, error) {
	return rpc.Call[Settings](ctx, c.conn, ServiceName, "SetCategoryDiscount", req)
}

func (c *Client) RemoveCategoryDiscount(ctx context.Context, req *CategoryDiscountRequest) (*Settings, error) {
	return rpc.Call[Settings](ctx, c.conn, ServiceName, "RemoveCategoryDiscount", req)
}

func (c *Client) SetMinOrderValue(ctx context.Context, req *MinOrderValueRequest) (*Settings, error) {
	return rpc.Call[Settings](ctx, c.conn, ServiceName, "SetMinOrderValue", req)
}
