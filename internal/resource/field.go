package resource

import (
	"fmt"
	"time"
)

// FieldKind distinguishes how a field converts values between wire and code
type FieldKind int

const (
	KindScalar FieldKind = iota
	KindResource
	KindList
	KindDateTime
)

// String returns the string representation of the field kind
func (k FieldKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindResource:
		return "resource"
	case KindList:
		return "list"
	case KindDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// ScrubFunc converts a wire value into the value stored on an instance
type ScrubFunc func(value interface{}) (interface{}, error)

// DescrubFunc converts a stored value back into its wire form
type DescrubFunc func(value interface{}, forRead bool) interface{}

// Field describes one resource attribute
type Field struct {
	name       string
	apiName    string
	def        interface{}
	readOnly   bool
	resourceID bool
	kind       FieldKind
	layout     string
	nested     *Metadata
	scrub      ScrubFunc
	descrub    DescrubFunc
}

// FieldOption configures a Field
type FieldOption func(*Field)

// APIName sets the name used on the wire when it differs from the field name
func APIName(name string) FieldOption {
	return func(f *Field) { f.apiName = name }
}

// Default sets the value used when the wire data lacks the field.
// A func() interface{} is called for every instance.
func Default(value interface{}) FieldOption {
	return func(f *Field) { f.def = value }
}

// ReadOnly excludes the field from outbound payloads
func ReadOnly() FieldOption {
	return func(f *Field) { f.readOnly = true }
}

// ResourceID marks the field as the one identifying an instance in its collection
func ResourceID() FieldOption {
	return func(f *Field) { f.resourceID = true }
}

// Scrub overrides the inbound conversion
func Scrub(fn ScrubFunc) FieldOption {
	return func(f *Field) { f.scrub = fn }
}

// Descrub overrides the outbound conversion
func Descrub(fn DescrubFunc) FieldOption {
	return func(f *Field) { f.descrub = fn }
}

// NewField creates a scalar field whose values pass through unchanged
func NewField(name string, opts ...FieldOption) *Field {
	return newField(name, KindScalar, opts)
}

// NewResourceField creates a field holding a nested instance of nested.
// Inbound mappings become *Instance values; outbound they are projected back.
func NewResourceField(name string, nested *Metadata, opts ...FieldOption) *Field {
	f := newField(name, KindResource, nil)
	f.nested = nested
	applyFieldOptions(f, opts)
	return f
}

// NewListField creates a field holding a list of nested instances of nested
func NewListField(name string, nested *Metadata, opts ...FieldOption) *Field {
	f := newField(name, KindList, nil)
	f.nested = nested
	applyFieldOptions(f, opts)
	return f
}

// NewDateTimeField creates a field holding a time.Time parsed with layout
func NewDateTimeField(name, layout string, opts ...FieldOption) *Field {
	f := newField(name, KindDateTime, nil)
	f.layout = layout
	applyFieldOptions(f, opts)
	return f
}

func newField(name string, kind FieldKind, opts []FieldOption) *Field {
	f := &Field{name: name, kind: kind}
	applyFieldOptions(f, opts)
	return f
}

func applyFieldOptions(f *Field, opts []FieldOption) {
	for _, opt := range opts {
		opt(f)
	}
}

// Name returns the identifier used in code
func (f *Field) Name() string { return f.name }

// WireName returns the identifier used on the wire
func (f *Field) WireName() string {
	if f.apiName != "" {
		return f.apiName
	}
	return f.name
}

// ReadOnly reports whether the field is excluded from outbound payloads
func (f *Field) ReadOnly() bool { return f.readOnly }

// IsResourceID reports whether the field identifies the instance
func (f *Field) IsResourceID() bool { return f.resourceID }

// Kind returns the field kind
func (f *Field) Kind() FieldKind { return f.kind }

// Nested returns the nested resource type of resource and list fields
func (f *Field) Nested() *Metadata { return f.nested }

// DefaultValue returns the field default, calling it if it is a producer function
func (f *Field) DefaultValue() interface{} {
	if fn, ok := f.def.(func() interface{}); ok {
		return fn()
	}
	return f.def
}

// ScrubValue converts a wire value into the stored value
func (f *Field) ScrubValue(value interface{}) (interface{}, error) {
	if f.scrub != nil {
		return f.scrub(value)
	}
	if value == nil {
		return nil, nil
	}

	switch f.kind {
	case KindResource:
		return f.scrubResource(value)
	case KindList:
		items, ok := value.([]interface{})
		if !ok {
			return nil, fmt.Errorf("field %s: expected a list, got %T", f.name, value)
		}
		list := make([]*Instance, 0, len(items))
		for _, item := range items {
			inst, err := f.scrubResource(item)
			if err != nil {
				return nil, err
			}
			list = append(list, inst)
		}
		return list, nil
	case KindDateTime:
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			t, err := time.Parse(f.layout, v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.name, err)
			}
			return t, nil
		default:
			return nil, fmt.Errorf("field %s: expected a time string, got %T", f.name, value)
		}
	default:
		return value, nil
	}
}

func (f *Field) scrubResource(value interface{}) (*Instance, error) {
	switch v := value.(type) {
	case *Instance:
		return v, nil
	case map[string]interface{}:
		inst, err := New(f.nested, v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		return inst, nil
	default:
		return nil, fmt.Errorf("field %s: expected a mapping, got %T", f.name, value)
	}
}

// DescrubValue converts a stored value into its wire form
func (f *Field) DescrubValue(value interface{}, forRead bool) interface{} {
	if f.descrub != nil {
		return f.descrub(value, forRead)
	}

	switch v := value.(type) {
	case *Instance:
		if v == nil {
			return nil
		}
		return v.ToMap(forRead)
	case []*Instance:
		items := make([]interface{}, 0, len(v))
		for _, inst := range v {
			items = append(items, inst.ToMap(forRead))
		}
		return items
	case time.Time:
		if f.kind == KindDateTime {
			return v.Format(f.layout)
		}
		return v
	default:
		return value
	}
}

func (f *Field) clone() *Field {
	c := *f
	return &c
}
