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

func (c *Client) CreateItem(ctx context.Context, req *CreateItemRequest) (*MenuItem, error) {
	return rpc.Call[MenuItem](ctx, c.conn, ServiceName, "CreateItem", req)
}

func (c *Client) UpdateItem(ctx context.Context, req *UpdateItemRequest) (*MenuItem, error) {
	return rpc.Call[MenuItem](ctx, c.conn, ServiceName, "UpdateItem", req)
}

func (c *Client) DeleteItem(ctx context.Context, req *ItemID) (*Empty, error) {
	return rpc.Call[Empty](ctx, c.conn, ServiceName, "DeleteItem", req)
}

func (c *Client) GetItem(ctx context.Context, req *ItemID) (*MenuItem, error) {
	return rpc.Call[MenuItem](ctx, c.conn, ServiceName, "GetItem", req)
}

func (c *Client) ListItems(ctx context.Context, req *ListItemsRequest) (*ListItemsResponse, error) {
	return rpc.Call[ListItemsResponse](ctx, c.conn, ServiceName, "ListItems", req)
}

func (c *Client) ListCategories(ctx context.Context) (*CategoriesResponse, error) {
	return rpc.Call[CategoriesResponse](ctx, c.conn, ServiceName, "ListCategories", &Empty{})
}

func (c *Client) AttachPhoto(ctx context.Context, req *AttachPhotoRequest) (*MenuItem, error) {
	return rpc.Call[MenuItem](ctx, c.conn, ServiceName, "AttachPhoto", req)
}
