// Package engine dispatches resource lifecycle operations over HTTP.
//
// An HTTPEngine is bound to exactly one resource type. It resolves URLs
// through the type's templates, runs every request through the configured
// middleware chain, reads single-resource lookups through the type's cache
// backend, and decodes JSON responses into resource instances.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/conduit-lang/restmap/internal/cache"
	"github.com/conduit-lang/restmap/internal/lookup"
	"github.com/conduit-lang/restmap/internal/middleware"
	"github.com/conduit-lang/restmap/internal/resource"
	"go.uber.org/zap"
)

// Request arg keys understood by ModifyRequest
const (
	// ArgHeaders is a map[string]string of extra request headers
	ArgHeaders = "headers"
	// ArgTimeout is a time.Duration bounding each request
	ArgTimeout = "timeout"
)

// Pass-through option keys read from resource metadata
const (
	OptionUpdateMethod    = "update_method"
	OptionCollectionField = "collection_field"
	OptionAddSlash        = "add_slash"
)

// Config holds engine configuration shared by every type it is bound to
type Config struct {
	// Client is the HTTP client; nil uses a client with a 30s timeout
	Client *http.Client
	// Middleware runs on every request in order, and on responses in reverse
	Middleware []middleware.Middleware
	// UpdateMethod is the HTTP method for updates (default PUT)
	UpdateMethod string
	// CollectionField is the key holding the list in collection responses,
	// empty when the response body is the list itself
	CollectionField string
	// AddSlash appends a trailing slash to resolved URLs
	AddSlash bool
	// CacheTTL is passed to the cache backend on store; zero uses the backend default
	CacheTTL time.Duration
}

// HTTPEngine is the dispatch engine for one resource type
type HTTPEngine struct {
	meta            *resource.Metadata
	client          *http.Client
	chain           *middleware.Chain
	logger          *zap.Logger
	updateMethod    string
	collectionField string
	addSlash        bool
	cacheTTL        time.Duration
	requestArgs     resource.RequestArgs
}

// NewFactory returns an EngineFactory binding one HTTPEngine per resource type
func NewFactory(cfg Config) resource.EngineFactory {
	return func(meta *resource.Metadata) resource.Engine {
		return New(meta, cfg)
	}
}

// New creates an engine for meta. Pass-through options on meta override cfg.
func New(meta *resource.Metadata, cfg Config) *HTTPEngine {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	updateMethod := cfg.UpdateMethod
	if updateMethod == "" {
		updateMethod = http.MethodPut
	}

	chain := middleware.NewChain(cfg.Middleware...).Append(middleware.NewLogging(meta.Logger()))

	return &HTTPEngine{
		meta:            meta,
		client:          client,
		chain:           chain,
		logger:          meta.Logger(),
		updateMethod:    strings.ToUpper(meta.ExtraString(OptionUpdateMethod, updateMethod)),
		collectionField: meta.ExtraString(OptionCollectionField, cfg.CollectionField),
		addSlash:        meta.ExtraBool(OptionAddSlash, cfg.AddSlash),
		cacheTTL:        cfg.CacheTTL,
		requestArgs:     resource.RequestArgs{},
	}
}

// Get fetches a single resource. vars are matched against lookup templates;
// resource_name is supplied automatically. Responses are read through the cache.
func (e *HTTPEngine) Get(ctx context.Context, vars lookup.Vars) (*resource.Instance, error) {
	result, ok := e.meta.Resolver().ResolveRole(lookup.RoleLookup, e.withResourceName(vars))
	if !ok {
		return nil, fmt.Errorf("%w: lookup %s with %s", ErrNoURL, e.meta.Name(), describeVars(vars))
	}

	fullURL := withQuery(e.FullURL(result.URL), result.Extra)
	key := e.Cache().CacheKey(e.meta.ResourceName(), fullURL)

	body, err := e.Cache().Get(ctx, key)
	if err != nil {
		if !cache.IsCacheMiss(err) {
			e.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}

		resp, err := e.dispatch(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, err
		}
		body = resp.Body

		if err := e.Cache().Set(ctx, key, body, e.cacheTTL); err != nil {
			e.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	obj, err := decodeObject(body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", http.MethodGet, fullURL, err)
	}
	return e.instance(obj)
}

// Filter fetches a collection. vars are matched against collection templates;
// variables not used by the template become query parameters.
func (e *HTTPEngine) Filter(ctx context.Context, vars lookup.Vars) ([]*resource.Instance, error) {
	result, ok := e.meta.Resolver().ResolveRole(lookup.RoleCollection, e.withResourceName(vars))
	if !ok {
		return nil, fmt.Errorf("%w: collection %s with %s", ErrNoURL, e.meta.Name(), describeVars(vars))
	}

	fullURL := withQuery(e.FullURL(result.URL), result.Extra)
	resp, err := e.dispatch(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}

	items, err := e.decodeCollection(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", http.MethodGet, fullURL, err)
	}

	instances := make([]*resource.Instance, 0, len(items))
	for _, obj := range items {
		inst, err := e.instance(obj)
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, nil
}

// Create posts inst to its create URL
func (e *HTTPEngine) Create(ctx context.Context, inst *resource.Instance, params lookup.Vars) (*resource.Instance, error) {
	result, ok := inst.ResolveURL(lookup.RoleCreate)
	if !ok {
		return nil, fmt.Errorf("%w: create %s", ErrNoURL, inst)
	}

	fullURL := withQuery(e.fullURLFor(inst.RootURL(), result.URL), params)
	return e.write(ctx, http.MethodPost, fullURL, inst)
}

// Update sends inst to its pinned URL or its resolved update URL
func (e *HTTPEngine) Update(ctx context.Context, inst *resource.Instance, params lookup.Vars) (*resource.Instance, error) {
	target := inst.FullURL()
	if target == "" {
		updateURL, ok := e.UpdateURL(inst)
		if !ok {
			return nil, fmt.Errorf("%w: update %s", ErrNoURL, inst)
		}
		target = e.fullURLFor(inst.RootURL(), updateURL)
	}

	obj, err := e.write(ctx, e.updateMethod, withQuery(target, params), inst)
	if err != nil {
		return nil, err
	}
	e.invalidate(ctx, inst)
	return obj, nil
}

// Delete removes inst and evicts its cache entry
func (e *HTTPEngine) Delete(ctx context.Context, inst *resource.Instance, params lookup.Vars) error {
	target := inst.FullURL()
	if target == "" {
		lookupURL, ok := e.LookupURL(inst)
		if !ok {
			return fmt.Errorf("%w: delete %s", ErrNoURL, inst)
		}
		target = e.fullURLFor(inst.RootURL(), lookupURL)
	}

	e.invalidate(ctx, inst)
	_, err := e.dispatch(ctx, http.MethodDelete, withQuery(target, params), nil)
	return err
}

// UpdateURL resolves the update URL of inst
func (e *HTTPEngine) UpdateURL(inst *resource.Instance) (string, bool) {
	result, ok := inst.ResolveURL(lookup.RoleUpdate)
	return result.URL, ok
}

// LookupURL resolves the lookup URL of inst
func (e *HTTPEngine) LookupURL(inst *resource.Instance) (string, bool) {
	result, ok := inst.ResolveURL(lookup.RoleLookup)
	return result.URL, ok
}

// FullURL joins lookupURL to the type's root URL
func (e *HTTPEngine) FullURL(lookupURL string) string {
	return e.fullURLFor(e.meta.RootURL(), lookupURL)
}

// ModifyRequest returns a copy of the engine with args merged over its own
func (e *HTTPEngine) ModifyRequest(args resource.RequestArgs) resource.Engine {
	clone := *e
	clone.requestArgs = resource.RequestArgs{}
	for k, v := range e.requestArgs {
		clone.requestArgs[k] = v
	}
	for k, v := range args {
		clone.requestArgs[k] = v
	}
	return &clone
}

// Cache returns the type's cache backend
func (e *HTTPEngine) Cache() cache.Cache {
	return e.meta.Cache()
}

func (e *HTTPEngine) fullURLFor(root, lookupURL string) string {
	full := lookupURL
	if !isAbsolute(lookupURL) && root != "" {
		full = strings.TrimSuffix(root, "/") + "/" + strings.TrimPrefix(lookupURL, "/")
	}
	if e.addSlash && !strings.HasSuffix(full, "/") {
		full += "/"
	}
	return full
}

func (e *HTTPEngine) withResourceName(vars lookup.Vars) lookup.Vars {
	out := lookup.Vars{"resource_name": e.meta.ResourceName()}
	for k, v := range vars {
		out[k] = v
	}
	return out
}

func (e *HTTPEngine) write(ctx context.Context, method, target string, inst *resource.Instance) (*resource.Instance, error) {
	payload, err := json.Marshal(inst.ToMap(false))
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", inst, err)
	}

	resp, err := e.dispatch(ctx, method, target, payload)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil, nil
	}

	obj, err := decodeObject(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	// a JSON null body carries no resource data, same as an empty body
	if obj == nil {
		return nil, nil
	}
	return e.instance(obj)
}

func (e *HTTPEngine) invalidate(ctx context.Context, inst *resource.Instance) {
	key, ok := inst.CacheKey()
	if !ok {
		return
	}
	if err := e.Cache().Delete(ctx, key); err != nil {
		e.logger.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

// instance builds a persisted instance, discovering new fields first on dynamic types
func (e *HTTPEngine) instance(obj map[string]interface{}) (*resource.Instance, error) {
	if e.meta.DynamicSchema() {
		if err := e.meta.UpdateResourceFields(obj); err != nil {
			return nil, err
		}
	}
	return resource.New(e.meta, obj, resource.AsPersisted(), resource.WithRequestArgs(e.requestArgs))
}

func (e *HTTPEngine) dispatch(ctx context.Context, method, target string, body []byte) (*middleware.Response, error) {
	req := middleware.NewRequest(method, target, body)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if headers, ok := e.requestArgs[ArgHeaders].(map[string]string); ok {
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}

	req, err := e.chain.ProcessRequest(req)
	if err != nil {
		return nil, err
	}

	if timeout, ok := e.requestArgs[ArgTimeout].(time.Duration); ok && timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var reader io.Reader
	if req.Body != nil {
		reader = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header = req.Header.Clone()
	if req.Auth != nil {
		httpReq.SetBasicAuth(req.Auth.Identity, req.Auth.Secret)
	}

	start := time.Now()
	httpResp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	resp, err := e.chain.ProcessResponse(&middleware.Response{
		Request:    req,
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
		Duration:   time.Since(start),
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Method:     req.Method,
			URL:        req.URL,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		}
	}
	return resp, nil
}

func (e *HTTPEngine) decodeCollection(body []byte) ([]map[string]interface{}, error) {
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}

	if e.collectionField != "" {
		obj, ok := decoded.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected an object with %q, got %T", e.collectionField, decoded)
		}
		decoded = obj[e.collectionField]
	}

	list, ok := decoded.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", decoded)
	}

	items := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected list of objects, got %T", item)
		}
		items = append(items, obj)
	}
	return items, nil
}

func decodeObject(body []byte) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode resource: %w", err)
	}
	return obj, nil
}

func withQuery(target string, params lookup.Vars) string {
	if len(params) == 0 {
		return target
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, fmt.Sprint(v))
	}

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + values.Encode()
}

func isAbsolute(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs()
}

func describeVars(vars lookup.Vars) string {
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return "[" + strings.Join(names, ", ") + "]"
}
