package resource

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/conduit-lang/restmap/internal/cache"
	"github.com/conduit-lang/restmap/internal/lookup"
	"go.uber.org/zap"
)

// Options holds the recognized per-type configuration.
// Extra carries free-form keys that only the dispatch engine interprets.
type Options struct {
	// ResourceName overrides the name derived from the type name
	ResourceName string
	// URLs replaces the default template pair when non-nil
	URLs []*lookup.Template
	// PrependURLs are matched before URLs
	PrependURLs []*lookup.Template
	// AppendURLs are matched after URLs
	AppendURLs []*lookup.Template
	// RootURL is the base URL resolved templates are joined to
	RootURL string
	// UpdateFromWrite re-reads fields from write responses; nil means enabled
	UpdateFromWrite *bool
	// DynamicSchema allows fields to be discovered from response data
	DynamicSchema bool
	// Cache is the cache backend; nil means no caching
	Cache cache.Cache
	// Engine builds the dispatch engine bound to the type
	Engine EngineFactory
	// Logger receives schema and dispatch events; nil means no logging
	Logger *zap.Logger
	// Extra holds pass-through keys for the engine
	Extra map[string]interface{}
}

// Bool returns a pointer to b, for optional boolean options
func Bool(b bool) *bool {
	return &b
}

// Metadata is the per-type record shared by every instance of a resource type.
// It is built once by Define. The field set may only grow afterwards, and only
// through UpdateResourceFields.
type Metadata struct {
	name            string
	resourceName    string
	rootURL         string
	templates       []*lookup.Template
	resolver        *lookup.Resolver
	resourceIDField string
	updateFromWrite bool
	dynamicSchema   bool
	cache           cache.Cache
	logger          *zap.Logger
	extra           map[string]interface{}
	engine          Engine

	mu     sync.RWMutex
	fields map[string]*Field
	order  []string
}

// Define builds the metadata for a resource type named name.
// Fields of parents are inherited in order; own fields override inherited
// ones of the same name.
func Define(name string, fields []*Field, opts Options, parents ...*Metadata) (*Metadata, error) {
	if name == "" {
		return nil, fmt.Errorf("resource type name is required")
	}

	m := &Metadata{
		name:            name,
		resourceName:    opts.ResourceName,
		rootURL:         opts.RootURL,
		templates:       lookup.Compose(opts.PrependURLs, opts.URLs, opts.AppendURLs),
		updateFromWrite: true,
		dynamicSchema:   opts.DynamicSchema,
		cache:           opts.Cache,
		logger:          opts.Logger,
		extra:           make(map[string]interface{}, len(opts.Extra)),
		fields:          make(map[string]*Field),
	}
	if m.resourceName == "" {
		m.resourceName = strings.ToLower(name)
	}
	if opts.UpdateFromWrite != nil {
		m.updateFromWrite = *opts.UpdateFromWrite
	}
	if m.cache == nil {
		m.cache = cache.NewNullCache()
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	for k, v := range opts.Extra {
		m.extra[k] = v
	}
	m.resolver = lookup.NewResolver(m.templates...)

	for _, parent := range parents {
		for _, f := range parent.Fields() {
			m.putField(f.clone())
		}
	}

	own := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f == nil || f.name == "" {
			return nil, fmt.Errorf("resource %s: field name is required", name)
		}
		if own[f.name] {
			return nil, fmt.Errorf("resource %s: %w: %s", name, ErrDuplicateField, f.name)
		}
		own[f.name] = true
		m.putField(f.clone())
	}

	for _, fname := range m.order {
		if !m.fields[fname].resourceID {
			continue
		}
		if m.resourceIDField != "" {
			return nil, fmt.Errorf("resource %s: %w: %s and %s",
				name, ErrAmbiguousResourceID, m.resourceIDField, fname)
		}
		m.resourceIDField = fname
	}

	if opts.Engine != nil {
		m.engine = opts.Engine(m)
	}
	if m.engine == nil {
		m.engine = unboundEngine{}
	}

	return m, nil
}

// MustDefine is like Define but panics on error.
// It is intended for package-level type declarations.
func MustDefine(name string, fields []*Field, opts Options, parents ...*Metadata) *Metadata {
	m, err := Define(name, fields, opts, parents...)
	if err != nil {
		panic(err)
	}
	return m
}

// putField inserts or replaces a field, keeping first-insertion order
func (m *Metadata) putField(f *Field) {
	if _, exists := m.fields[f.name]; !exists {
		m.order = append(m.order, f.name)
	}
	m.fields[f.name] = f
}

// Name returns the type name
func (m *Metadata) Name() string { return m.name }

// ResourceName returns the name used in URL templates
func (m *Metadata) ResourceName() string { return m.resourceName }

// RootURL returns the base URL
func (m *Metadata) RootURL() string { return m.rootURL }

// Templates returns the ordered URL templates
func (m *Metadata) Templates() []*lookup.Template {
	return append([]*lookup.Template(nil), m.templates...)
}

// Resolver returns the resolver over the type's templates
func (m *Metadata) Resolver() *lookup.Resolver { return m.resolver }

// ResourceIDFieldName returns the name of the resource id field, or ""
func (m *Metadata) ResourceIDFieldName() string { return m.resourceIDField }

// UpdateFromWrite reports whether writes refresh instance fields from the response
func (m *Metadata) UpdateFromWrite() bool { return m.updateFromWrite }

// DynamicSchema reports whether fields may be discovered from response data
func (m *Metadata) DynamicSchema() bool { return m.dynamicSchema }

// Cache returns the cache backend
func (m *Metadata) Cache() cache.Cache { return m.cache }

// Logger returns the type's logger
func (m *Metadata) Logger() *zap.Logger { return m.logger }

// Engine returns the dispatch engine bound to the type
func (m *Metadata) Engine() Engine { return m.engine }

// Extra returns a pass-through option
func (m *Metadata) Extra(key string) (interface{}, bool) {
	v, ok := m.extra[key]
	return v, ok
}

// ExtraString returns a pass-through option as a string, or def when unset
func (m *Metadata) ExtraString(key, def string) string {
	if v, ok := m.extra[key].(string); ok {
		return v
	}
	return def
}

// ExtraBool returns a pass-through option as a bool, or def when unset
func (m *Metadata) ExtraBool(key string, def bool) bool {
	if v, ok := m.extra[key].(bool); ok {
		return v
	}
	return def
}

// Fields returns a snapshot of the field set in declaration order
func (m *Metadata) Fields() []*Field {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fields := make([]*Field, 0, len(m.order))
	for _, name := range m.order {
		fields = append(fields, m.fields[name])
	}
	return fields
}

// Field returns the field named name
func (m *Metadata) Field(name string) (*Field, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.fields[name]
	return f, ok
}

// FieldNames returns the sorted field names
func (m *Metadata) FieldNames() []string {
	m.mu.RLock()
	names := append([]string(nil), m.order...)
	m.mu.RUnlock()

	sort.Strings(names)
	return names
}

// String returns the type name
func (m *Metadata) String() string {
	return m.name
}
