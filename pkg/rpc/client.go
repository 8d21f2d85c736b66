package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Dial opens a client connection that speaks the JSON codec by default.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(Codec)),
	}
	conn, err := grpc.NewClient(addr, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return conn, nil
}

// Invoker is satisfied by *grpc.ClientConn.
type Invoker interface {
	Invoke(ctx context.Context, method string, args any, reply any, opts ...grpc.CallOption) error
}

// Call invokes service/method and decodes the reply into a fresh Resp.
func Call[Resp any](ctx context.Context, conn Invoker, service, method string, in any) (*Resp, error) {
	out := new(Resp)
	if err := conn.Invoke(ctx, FullMethod(service, method), in, out, grpc.CallContentSubtype(Codec)); err != nil {
		return nil, err
	}
	return out, nil
}
