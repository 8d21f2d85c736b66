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

func (c *Client) SignIn(ctx context.Context, req *SignInRequest) (*SessionReply, error) {
	return rpc.Call[SessionReply](ctx, c.conn, ServiceName, "SignIn", req)
}

func (c *Client) Resolve(ctx context.Context, token string) (*User, error) {
	return rpc.Call[User](ctx, c.conn, ServiceName, "Resolve", &TokenRequest{Token: token})
}

func (c *Client) SignOut(ctx context.Context, token string) error {
	_, err := rpc.Call[Empty](ctx, c.conn, ServiceName, "SignOut", &TokenRequest{Token: token})
	return err
}
