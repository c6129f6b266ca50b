// Package apiconnect holds the Connect handlers and clients of the Hisab
// services. Every procedure is unary and exchanges the JSON messages of
// package api.
package apiconnect

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/pkg/api"
)

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
}

// routes dispatches a service's requests by procedure path.
type routes map[string]http.Handler

func (r routes) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := r[req.URL.Path]; ok {
		h.ServeHTTP(w, req)
		return
	}
	http.NotFound(w, req)
}
