package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader is the header the request id is sent in
const RequestIDHeader = "X-Request-ID"

// RequestID stamps every outbound request with a unique id unless one is already set
type RequestID struct {
	Base
	HeaderName string
	Generator  func() string
}

// NewRequestID creates a request id middleware using random UUIDs
func NewRequestID() *RequestID {
	return &RequestID{
		HeaderName: RequestIDHeader,
		Generator:  func() string { return uuid.New().String() },
	}
}

// HandleRequest sets the request id header
func (m *RequestID) HandleRequest(req *Request) (*Request, error) {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if req.Header.Get(m.HeaderName) == "" {
		req.Header.Set(m.HeaderName, m.Generator())
	}
	return req, nil
}
