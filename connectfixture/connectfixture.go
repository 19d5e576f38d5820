// Package connectfixture wraps built messages in Connect RPC envelopes so
// handlers and interceptors can be exercised without a server.
//
//	b, _ := factory.NewBuilder[*pb.CreateWidgetRequest](m)
//	req, err := connectfixture.Request(b.State("valid"), connectfixture.WithHeader("Authorization", "Bearer t"))
//	resp, err := svc.CreateWidget(ctx, req)
package connectfixture

import (
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/proto"

	"github.com/tailored-agentic-units/fixtures/collection"
	"github.com/tailored-agentic-units/fixtures/factory"
)

// Option sets envelope metadata.
type Option func(*metadata)

type metadata struct {
	header  http.Header
	trailer http.Header
	details []proto.Message
}

func collect(opts []Option) *metadata {
	md := &metadata{header: make(http.Header), trailer: make(http.Header)}
	for _, opt := range opts {
		opt(md)
	}
	return md
}

// WithHeader adds a header value. On errors it is added to the metadata.
func WithHeader(key, value string) Option {
	return func(md *metadata) { md.header.Add(key, value) }
}

// WithTrailer adds a trailer value. Requests ignore trailers.
func WithTrailer(key, value string) Option {
	return func(md *metadata) { md.trailer.Add(key, value) }
}

// WithDetail attaches msg as an error detail. Only Error uses details.
func WithDetail(msg proto.Message) Option {
	return func(md *metadata) { md.details = append(md.details, msg) }
}

// NewRequest wraps msg in a request carrying the given headers.
func NewRequest[M any](msg *M, opts ...Option) *connect.Request[M] {
	md := collect(opts)
	req := connect.NewRequest(msg)
	copyHeader(req.Header(), md.header)
	return req
}

// NewResponse wraps msg in a response carrying the given headers and trailers.
func NewResponse[M any](msg *M, opts ...Option) *connect.Response[M] {
	md := collect(opts)
	resp := connect.NewResponse(msg)
	copyHeader(resp.Header(), md.header)
	copyHeader(resp.Trailer(), md.trailer)
	return resp
}

// Request builds one message with b and wraps it in a request.
func Request[M any](b *factory.Builder[*M], opts ...Option) (*connect.Request[M], error) {
	msg, err := b.One()
	if err != nil {
		return nil, err
	}
	return NewRequest(msg, opts...), nil
}

// Response builds one message with b and wraps it in a response.
func Response[M any](b *factory.Builder[*M], opts ...Option) (*connect.Response[M], error) {
	msg, err := b.One()
	if err != nil {
		return nil, err
	}
	return NewResponse(msg, opts...), nil
}

// Requests builds count messages with b and wraps each in its own request.
// Every request gets its own copy of the headers.
func Requests[M any](b *factory.Builder[*M], count int, opts ...Option) (*collection.Collection[*connect.Request[M]], error) {
	msgs, err := b.Many(count)
	if err != nil {
		return nil, err
	}

	reqs := collection.New[*connect.Request[M]]()
	for msg := range msgs.Values() {
		if err := reqs.Add(NewRequest(msg, opts...)); err != nil {
			return nil, err
		}
	}
	return reqs, nil
}

// Error returns a Connect error with the given code and message, carrying
// any headers as metadata and any details added with WithDetail.
func Error(code connect.Code, message string, opts ...Option) (*connect.Error, error) {
	md := collect(opts)
	cerr := connect.NewError(code, errors.New(message))
	copyHeader(cerr.Meta(), md.header)

	for _, msg := range md.details {
		detail, err := connect.NewErrorDetail(msg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode error detail: %w", err)
		}
		cerr.AddDetail(detail)
	}
	return cerr, nil
}

func copyHeader(dst, src http.Header) {
	for key, values := range src {
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}
