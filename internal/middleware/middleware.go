// Package middleware mutates outbound resource requests before dispatch and
// observes responses after dispatch. Authorization schemes, request ids and
// request logging are all expressed as middleware.
package middleware

import (
	"net/http"
	"time"
)

// Credentials is an identity/secret pair sent as HTTP Basic auth
type Credentials struct {
	Identity string
	Secret   string
}

// Request is an outbound request before it is handed to the transport
type Request struct {
	Method string
	URL    string
	Header http.Header
	Auth   *Credentials
	Body   []byte
}

// NewRequest creates a request with an empty header set
func NewRequest(method, url string, body []byte) *Request {
	return &Request{
		Method: method,
		URL:    url,
		Header: make(http.Header),
		Body:   body,
	}
}

// Response is what the transport returned for a Request
type Response struct {
	Request    *Request
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// Middleware can rewrite a request before dispatch and inspect the response after
type Middleware interface {
	HandleRequest(req *Request) (*Request, error)
	HandleResponse(resp *Response) (*Response, error)
}

// Base provides pass-through implementations for embedding
type Base struct{}

// HandleRequest returns req unchanged
func (Base) HandleRequest(req *Request) (*Request, error) {
	return req, nil
}

// HandleResponse returns resp unchanged
func (Base) HandleResponse(resp *Response) (*Response, error) {
	return resp, nil
}
