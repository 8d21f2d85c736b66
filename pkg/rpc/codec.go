// Package rpc carries the gRPC plumbing shared by the storefront services:
// a JSON wire codec, hand-built method descriptors and a client helper.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Codec is the content-subtype clients select with grpc.CallContentSubtype.
const Codec = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return Codec }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
