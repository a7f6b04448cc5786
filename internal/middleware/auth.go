package middleware

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HTTPAuthorization attaches HTTP Basic credentials without touching the URL
type HTTPAuthorization struct {
	Base
	Username string
	Password string
}

// NewHTTPAuthorization creates a Basic auth middleware
func NewHTTPAuthorization(username, password string) *HTTPAuthorization {
	return &HTTPAuthorization{Username: username, Password: password}
}

// HandleRequest sets the request credentials
func (a *HTTPAuthorization) HandleRequest(req *Request) (*Request, error) {
	req.Auth = &Credentials{Identity: a.Username, Secret: a.Password}
	return req, nil
}

// DefaultProxyEndpoint is the endpoint ProxyAuthorization routes through when none is set
const DefaultProxyEndpoint = "https://foauth.org/"

// MethodOverrideHeader carries the original method when PATCH is tunnelled over POST
const MethodOverrideHeader = "X-HTTP-Method-Override"

var schemePrefix = regexp.MustCompile(`https?://`)

// ProxyAuthorization routes requests through a third-party auth proxy.
// The target URL's scheme is stripped and the remainder appended to Endpoint,
// PATCH is sent as POST with an override header, and the proxy credentials
// are attached.
type ProxyAuthorization struct {
	Base
	Email    string
	Password string
	Endpoint string
}

// NewProxyAuthorization creates a proxying auth middleware for DefaultProxyEndpoint
func NewProxyAuthorization(email, password string) *ProxyAuthorization {
	return &ProxyAuthorization{Email: email, Password: password, Endpoint: DefaultProxyEndpoint}
}

// HandleRequest rewrites the request to go through the proxy
func (a *ProxyAuthorization) HandleRequest(req *Request) (*Request, error) {
	endpoint := a.Endpoint
	if endpoint == "" {
		endpoint = DefaultProxyEndpoint
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	req.URL = endpoint + schemePrefix.ReplaceAllString(req.URL, "")
	req.Auth = &Credentials{Identity: a.Email, Secret: a.Password}

	if req.Method == http.MethodPatch {
		if req.Header == nil {
			req.Header = make(http.Header)
		}
		req.Header.Set(MethodOverrideHeader, http.MethodPatch)
		req.Method = http.MethodPost
	}

	return req, nil
}

// BearerAuthorization signs a short-lived HS256 token per request and sends
// it in the Authorization header
type BearerAuthorization struct {
	Base
	secretKey string
	subject   string
	tokenTTL  time.Duration
	claims    map[string]interface{}
	now       func() time.Time
}

// NewBearerAuthorization creates a JWT bearer middleware
func NewBearerAuthorization(secretKey, subject string, tokenTTL time.Duration, claims map[string]interface{}) *BearerAuthorization {
	return &BearerAuthorization{
		secretKey: secretKey,
		subject:   subject,
		tokenTTL:  tokenTTL,
		claims:    claims,
		now:       time.Now,
	}
}

// Token signs a new token
func (a *BearerAuthorization) Token() (string, error) {
	now := a.now()
	claims := jwt.MapClaims{}
	for k, v := range a.claims {
		claims[k] = v
	}
	claims["sub"] = a.subject
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(a.tokenTTL).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign bearer token: %w", err)
	}
	return signed, nil
}

// HandleRequest sets the Authorization header
func (a *BearerAuthorization) HandleRequest(req *Request) (*Request, error) {
	token, err := a.Token()
	if err != nil {
		return nil, err
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}
