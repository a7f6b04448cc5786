package middleware

import "fmt"

// Chain represents an ordered chain of middleware.
// Requests pass through in declaration order; responses in reverse order.
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a new middleware chain
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{
		middlewares: append([]Middleware(nil), middlewares...),
	}
}

// Use adds a middleware to the end of the chain
func (c *Chain) Use(m Middleware) *Chain {
	c.middlewares = append(c.middlewares, m)
	return c
}

// Append creates a new chain with middlewares appended, leaving c untouched
func (c *Chain) Append(middlewares ...Middleware) *Chain {
	combined := make([]Middleware, len(c.middlewares)+len(middlewares))
	copy(combined, c.middlewares)
	copy(combined[len(c.middlewares):], middlewares)
	return &Chain{middlewares: combined}
}

// Len returns the number of middleware in the chain
func (c *Chain) Len() int {
	return len(c.middlewares)
}

// ProcessRequest runs req through every middleware in order
func (c *Chain) ProcessRequest(req *Request) (*Request, error) {
	for i, m := range c.middlewares {
		next, err := m.HandleRequest(req)
		if err != nil {
			return nil, fmt.Errorf("middleware %d (%T): %w", i, m, err)
		}
		if next != nil {
			req = next
		}
	}
	return req, nil
}

// ProcessResponse runs resp through every middleware in reverse order
func (c *Chain) ProcessResponse(resp *Response) (*Response, error) {
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		m := c.middlewares[i]
		next, err := m.HandleResponse(resp)
		if err != nil {
			return nil, fmt.Errorf("middleware %d (%T): %w", i, m, err)
		}
		if next != nil {
			resp = next
		}
	}
	return resp, nil
}
