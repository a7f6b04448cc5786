package resource

import (
	"context"
	"fmt"
	"reflect"

	"github.com/conduit-lang/restmap/internal/lookup"
)

// State is the lifecycle state of an instance
type State int

const (
	// StateTransient instances have not been confirmed by the server
	StateTransient State = iota
	// StatePersisted instances were created, updated or fetched successfully
	StatePersisted
	// StateDeleted instances were deleted and must not be written again
	StateDeleted
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateTransient:
		return "transient"
	case StatePersisted:
		return "persisted"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Instance is one mapped record of a resource type.
// An Instance is not safe for concurrent mutation.
type Instance struct {
	meta        *Metadata
	values      map[string]interface{}
	extra       map[string]interface{}
	raw         map[string]interface{}
	saved       bool
	deleted     bool
	fullURL     string
	rootURL     string
	requestArgs RequestArgs
}

// InstanceOption configures an Instance at construction
type InstanceOption func(*Instance)

// WithFullURL pins the instance to url, bypassing template resolution
func WithFullURL(url string) InstanceOption {
	return func(i *Instance) { i.fullURL = url }
}

// WithRootURL overrides the type's root URL for this instance
func WithRootURL(url string) InstanceOption {
	return func(i *Instance) { i.rootURL = url }
}

// WithRequestArgs sets request args applied to every write through this instance
func WithRequestArgs(args RequestArgs) InstanceOption {
	return func(i *Instance) { i.requestArgs = args }
}

// AsPersisted marks an instance built from server data
func AsPersisted() InstanceOption {
	return func(i *Instance) { i.saved = true }
}

// New creates an instance of meta populated from wire data
func New(meta *Metadata, data map[string]interface{}, opts ...InstanceOption) (*Instance, error) {
	i := &Instance{
		meta:    meta,
		rootURL: meta.rootURL,
	}
	for _, opt := range opts {
		opt(i)
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	if err := i.UpdateFields(data); err != nil {
		return nil, err
	}
	return i, nil
}

// Meta returns the instance's resource type
func (i *Instance) Meta() *Metadata { return i.meta }

// UpdateFields replaces every declared field from wire data. Fields missing
// from data take their default. Keys with no matching field are kept in
// ExtraData. If any conversion fails the instance is left unchanged.
func (i *Instance) UpdateFields(data map[string]interface{}) error {
	fields := i.meta.Fields()

	values := make(map[string]interface{}, len(fields))
	mapped := make(map[string]bool, len(fields))
	for _, f := range fields {
		wire := f.WireName()
		mapped[wire] = true

		raw, ok := data[wire]
		if !ok {
			values[f.name] = f.DefaultValue()
			continue
		}

		value, err := f.ScrubValue(raw)
		if err != nil {
			return fmt.Errorf("resource %s: %w", i.meta.name, err)
		}
		values[f.name] = value
	}

	extra := make(map[string]interface{})
	for key, value := range data {
		if !mapped[key] {
			extra[key] = value
		}
	}

	rawCopy := make(map[string]interface{}, len(data))
	for key, value := range data {
		rawCopy[key] = value
	}

	i.values = values
	i.extra = extra
	i.raw = rawCopy
	return nil
}

// Get returns the value of field name, or nil if it is unset or unknown
func (i *Instance) Get(name string) interface{} {
	return i.values[name]
}

// Set assigns the value of field name without conversion
func (i *Instance) Set(name string, value interface{}) error {
	if _, ok := i.meta.Field(name); !ok {
		return fmt.Errorf("resource %s: %w: %s", i.meta.name, ErrFieldNotFound, name)
	}
	i.values[name] = value
	return nil
}

// ExtraData returns wire attributes that matched no declared field
func (i *Instance) ExtraData() map[string]interface{} {
	return copyMap(i.extra)
}

// RawFieldData returns the data most recently passed to UpdateFields
func (i *Instance) RawFieldData() map[string]interface{} {
	if i.raw == nil {
		return nil
	}
	return copyMap(i.raw)
}

// ResourceID returns the value of the resource id field, or nil
func (i *Instance) ResourceID() interface{} {
	if i.meta.resourceIDField == "" {
		return nil
	}
	return i.values[i.meta.resourceIDField]
}

// SetResourceID assigns the resource id field. It is a no-op for types without one.
func (i *Instance) SetResourceID(value interface{}) {
	if i.meta.resourceIDField == "" {
		return
	}
	i.values[i.meta.resourceIDField] = value
}

// FullURL returns the pinned URL, or ""
func (i *Instance) FullURL() string { return i.fullURL }

// RootURL returns the root URL used for this instance
func (i *Instance) RootURL() string { return i.rootURL }

// RequestArgs returns the request args set at construction
func (i *Instance) RequestArgs() RequestArgs { return i.requestArgs }

// State returns the lifecycle state
func (i *Instance) State() State {
	switch {
	case i.deleted:
		return StateDeleted
	case i.saved:
		return StatePersisted
	default:
		return StateTransient
	}
}

// LookupVars returns the variables available for URL resolution: every
// non-nil scalar field by name, plus resource_name and resource_id
func (i *Instance) LookupVars() lookup.Vars {
	vars := lookup.Vars{}
	for _, f := range i.meta.Fields() {
		value := i.values[f.name]
		if value == nil || f.kind == KindResource || f.kind == KindList {
			continue
		}
		vars[f.name] = f.DescrubValue(value, true)
	}

	vars["resource_name"] = i.meta.resourceName
	if id := i.ResourceID(); id != nil {
		vars["resource_id"] = id
	}
	return vars
}

// ResolveURL resolves the instance against the type's templates for role
func (i *Instance) ResolveURL(role lookup.Role) (lookup.Result, bool) {
	return i.meta.resolver.ResolveRole(role, i.LookupVars())
}

// ToMap projects the declared fields into a wire-shaped mapping keyed by
// wire name. Read-only fields are included only when forRead is true.
func (i *Instance) ToMap(forRead bool) map[string]interface{} {
	out := make(map[string]interface{})
	for _, f := range i.meta.Fields() {
		if f.readOnly && !forRead {
			continue
		}
		out[f.WireName()] = f.DescrubValue(i.values[f.name], forRead)
	}
	return out
}

// Equal reports whether other is of the same type and projects to the same data
func (i *Instance) Equal(other *Instance) bool {
	if i == nil || other == nil {
		return i == other
	}
	if i.meta != other.meta {
		return false
	}
	return reflect.DeepEqual(i.ToMap(true), other.ToMap(true))
}

// CacheKey derives the cache key from the instance's resolved lookup URL.
// It is never computed from field values directly.
func (i *Instance) CacheKey() (string, bool) {
	engine := i.meta.engine
	lookupURL, ok := engine.LookupURL(i)
	if !ok {
		return "", false
	}
	fullURL := engine.FullURL(lookupURL)
	return engine.Cache().CacheKey(i.meta.resourceName, fullURL), true
}

// WriteOption configures a Save, Update or Delete call
type WriteOption func(*writeConfig)

type writeConfig struct {
	params      lookup.Vars
	requestArgs RequestArgs
}

// WithParams passes extra variables to the engine operation
func WithParams(params lookup.Vars) WriteOption {
	return func(c *writeConfig) { c.params = params }
}

// WithRequest passes request args for this call only
func WithRequest(args RequestArgs) WriteOption {
	return func(c *writeConfig) { c.requestArgs = args }
}

func (i *Instance) writeConfig(opts []WriteOption) writeConfig {
	cfg := writeConfig{params: lookup.Vars{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	args := RequestArgs{}
	for k, v := range i.requestArgs {
		args[k] = v
	}
	for k, v := range cfg.requestArgs {
		args[k] = v
	}
	cfg.requestArgs = args
	return cfg
}

// Save updates the instance on the server if it is persisted, pinned to a
// URL, or resolvable to an update URL; otherwise it creates it.
func (i *Instance) Save(ctx context.Context, opts ...WriteOption) error {
	if i.deleted {
		return ErrResourceDeleted
	}
	cfg := i.writeConfig(opts)
	engine := i.meta.engine.ModifyRequest(cfg.requestArgs)

	var (
		obj *Instance
		err error
	)
	if _, hasUpdateURL := i.meta.engine.UpdateURL(i); i.saved || i.fullURL != "" || hasUpdateURL {
		obj, err = engine.Update(ctx, i, cfg.params)
	} else {
		obj, err = engine.Create(ctx, i, cfg.params)
	}
	if err != nil {
		return err
	}

	return i.refreshFromWrite(obj)
}

// Update forces an update of the instance on the server
func (i *Instance) Update(ctx context.Context, opts ...WriteOption) error {
	if i.deleted {
		return ErrResourceDeleted
	}
	cfg := i.writeConfig(opts)

	obj, err := i.meta.engine.ModifyRequest(cfg.requestArgs).Update(ctx, i, cfg.params)
	if err != nil {
		return err
	}

	return i.refreshFromWrite(obj)
}

// Delete removes the instance on the server and clears its resource id
func (i *Instance) Delete(ctx context.Context, opts ...WriteOption) error {
	if i.deleted {
		return ErrResourceDeleted
	}
	cfg := i.writeConfig(opts)

	if err := i.meta.engine.ModifyRequest(cfg.requestArgs).Delete(ctx, i, cfg.params); err != nil {
		return err
	}

	i.SetResourceID(nil)
	i.deleted = true
	return nil
}

func (i *Instance) refreshFromWrite(obj *Instance) error {
	if i.meta.updateFromWrite {
		if obj == nil || obj.raw == nil {
			return ErrEmptyResponse
		}
		if err := i.UpdateFields(obj.raw); err != nil {
			return err
		}
	}
	i.saved = true
	return nil
}

// String renders the instance as <TypeName: resource_id>
func (i *Instance) String() string {
	id := ""
	if v := i.ResourceID(); v != nil {
		id = fmt.Sprint(v)
	}
	return fmt.Sprintf("<%s: %s>", i.meta.name, id)
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
