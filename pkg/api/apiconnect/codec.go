// Package apiconnect wires the api messages to Connect handlers and clients.
package apiconnect

import (
	"context"
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"
)

// jsonCodec encodes plain Go structs. It replaces Connect's protobuf JSON
// codec under the same name, so standard Connect JSON clients interoperate.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// Codec is the JSON codec every handler and client in this package uses.
func Codec() connect.Codec {
	return jsonCodec{}
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
}

func handleUnary[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}
