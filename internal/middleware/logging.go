package middleware

import (
	"go.uber.org/zap"
)

// Logging logs every outbound request and its response
type Logging struct {
	logger *zap.Logger
}

// NewLogging creates a logging middleware. A nil logger logs nothing.
func NewLogging(logger *zap.Logger) *Logging {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logging{logger: logger}
}

// HandleRequest logs the outbound request
func (l *Logging) HandleRequest(req *Request) (*Request, error) {
	l.logger.Debug("dispatching request",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.String("request_id", req.Header.Get(RequestIDHeader)),
	)
	return req, nil
}

// HandleResponse logs the response status and duration
func (l *Logging) HandleResponse(resp *Response) (*Response, error) {
	fields := []zap.Field{
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", resp.Duration),
		zap.Int("bytes", len(resp.Body)),
	}
	if resp.Request != nil {
		fields = append(fields,
			zap.String("method", resp.Request.Method),
			zap.String("url", resp.Request.URL),
		)
	}

	if resp.StatusCode >= 400 {
		l.logger.Warn("request failed", fields...)
	} else {
		l.logger.Info("request completed", fields...)
	}
	return resp, nil
}
