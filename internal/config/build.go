package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/conduit-lang/restmap/internal/cache"
	"github.com/conduit-lang/restmap/internal/engine"
	"github.com/conduit-lang/restmap/internal/lookup"
	"github.com/conduit-lang/restmap/internal/middleware"
	"github.com/conduit-lang/restmap/internal/resource"
	"go.uber.org/zap"
)

// BuildOptions supplies the runtime collaborators shared by every built type
type BuildOptions struct {
	Cache  cache.Cache
	Logger *zap.Logger
	Client *http.Client
}

// Build defines every configured resource and registers it. Resources may
// only reference (through extends or nested fields) resources declared
// before them.
func Build(cfg *Config, opts BuildOptions) (*resource.Registry, error) {
	chain, err := BuildMiddleware(cfg)
	if err != nil {
		return nil, err
	}

	factory := engine.NewFactory(engine.Config{
		Client:          opts.Client,
		Middleware:      chain,
		UpdateMethod:    cfg.UpdateMethod,
		CollectionField: cfg.CollectionField,
		AddSlash:        cfg.AddSlash,
		CacheTTL:        cfg.Cache.TTL,
	})

	registry := resource.NewRegistry()
	for _, res := range cfg.Resources {
		meta, err := buildResource(cfg, res, registry, factory, opts)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", res.Name, err)
		}
		if err := registry.Register(meta); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// BuildMiddleware returns the configured middleware with auth first
func BuildMiddleware(cfg *Config) ([]middleware.Middleware, error) {
	var chain []middleware.Middleware

	if cfg.Auth != nil {
		auth, err := buildAuth(cfg.Auth)
		if err != nil {
			return nil, err
		}
		chain = append(chain, auth)
	}

	for _, name := range cfg.Middleware {
		switch name {
		case "request_id":
			chain = append(chain, middleware.NewRequestID())
		default:
			return nil, fmt.Errorf("unknown middleware %q", name)
		}
	}
	return chain, nil
}

func buildAuth(auth *AuthConfig) (middleware.Middleware, error) {
	switch auth.Type {
	case "basic":
		return middleware.NewHTTPAuthorization(auth.Username, auth.Password), nil
	case "proxy":
		proxy := middleware.NewProxyAuthorization(auth.Username, auth.Password)
		if auth.Endpoint != "" {
			proxy.Endpoint = auth.Endpoint
		}
		return proxy, nil
	case "bearer":
		if auth.SecretKey == "" {
			return nil, fmt.Errorf("auth.secret_key is required for bearer auth")
		}
		ttl := auth.TokenTTL
		if ttl == 0 {
			ttl = time.Hour
		}
		return middleware.NewBearerAuthorization(auth.SecretKey, auth.Subject, ttl, auth.Claims), nil
	default:
		return nil, fmt.Errorf("unknown auth type %q", auth.Type)
	}
}

func buildResource(cfg *Config, res ResourceConfig, registry *resource.Registry, factory resource.EngineFactory, opts BuildOptions) (*resource.Metadata, error) {
	parents := make([]*resource.Metadata, 0, len(res.Extends))
	for _, name := range res.Extends {
		parent, ok := registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("extends unknown resource %q", name)
		}
		parents = append(parents, parent)
	}

	fields := make([]*resource.Field, 0, len(res.Fields))
	for _, fc := range res.Fields {
		f, err := buildField(fc, registry)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	urls, err := buildTemplates(res.URLs)
	if err != nil {
		return nil, err
	}
	prepend, err := buildTemplates(res.PrependURLs)
	if err != nil {
		return nil, err
	}
	appendix, err := buildTemplates(res.AppendURLs)
	if err != nil {
		return nil, err
	}

	rootURL := res.RootURL
	if rootURL == "" {
		rootURL = cfg.RootURL
	}
	updateFromWrite := res.UpdateFromWrite
	if updateFromWrite == nil {
		updateFromWrite = resource.Bool(cfg.UpdateFromWrite)
	}

	return resource.Define(res.Name, fields, resource.Options{
		ResourceName:    res.ResourceName,
		URLs:            urls,
		PrependURLs:     prepend,
		AppendURLs:      appendix,
		RootURL:         rootURL,
		UpdateFromWrite: updateFromWrite,
		DynamicSchema:   res.DynamicSchema,
		Cache:           opts.Cache,
		Engine:          factory,
		Logger:          opts.Logger,
		Extra:           res.Options,
	}, parents...)
}

func buildField(fc FieldConfig, registry *resource.Registry) (*resource.Field, error) {
	var fieldOpts []resource.FieldOption
	if fc.APIName != "" {
		fieldOpts = append(fieldOpts, resource.APIName(fc.APIName))
	}
	if fc.Default != nil {
		fieldOpts = append(fieldOpts, resource.Default(fc.Default))
	}
	if fc.ReadOnly {
		fieldOpts = append(fieldOpts, resource.ReadOnly())
	}
	if fc.ResourceID {
		fieldOpts = append(fieldOpts, resource.ResourceID())
	}

	switch fc.Kind {
	case "resource", "list":
		nested, ok := registry.Get(fc.Resource)
		if !ok {
			return nil, fmt.Errorf("field %s references unknown resource %q", fc.Name, fc.Resource)
		}
		if fc.Kind == "list" {
			return resource.NewListField(fc.Name, nested, fieldOpts...), nil
		}
		return resource.NewResourceField(fc.Name, nested, fieldOpts...), nil
	case "datetime":
		layout := fc.Layout
		if layout == "" {
			layout = time.RFC3339
		}
		return resource.NewDateTimeField(fc.Name, layout, fieldOpts...), nil
	default:
		return resource.NewField(fc.Name, fieldOpts...), nil
	}
}

func buildTemplates(configs []TemplateConfig) ([]*lookup.Template, error) {
	if len(configs) == 0 {
		return nil, nil
	}

	templates := make([]*lookup.Template, 0, len(configs))
	for _, tc := range configs {
		if tc.Pattern == "" {
			return nil, fmt.Errorf("url pattern is required")
		}
		opts := []lookup.Option{
			lookup.Update(tc.Update),
			lookup.Create(tc.Create),
			lookup.Collection(tc.Collection),
		}
		if tc.Lookup != nil {
			opts = append(opts, lookup.Lookup(*tc.Lookup))
		}
		if len(tc.Params) > 0 {
			opts = append(opts, lookup.WithParams(tc.Params...))
		}

		tmpl, err := lookup.New(tc.Pattern, opts...)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
