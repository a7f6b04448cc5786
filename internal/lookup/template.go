// Package lookup resolves concrete resource URLs from ordered URL templates.
//
// A template is a URL pattern with named placeholders in the form
// %(name)s, for example "%(resource_name)s/%(resource_id)s". A literal
// percent sign is written as %%. Each template carries role flags that
// say which operations it can serve (lookup, update, create, collection)
// and an optional list of extra parameter names that must be present for
// the template to match even though they do not appear in the pattern.
package lookup

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidTemplate is returned when a URL pattern has malformed placeholder syntax
var ErrInvalidTemplate = errors.New("invalid url template")

var placeholderName = regexp.MustCompile(`^[\w\-]+$`)

// Role identifies an operation a template can serve
type Role int

const (
	RoleLookup Role = iota
	RoleUpdate
	RoleCreate
	RoleCollection
)

// String returns the string representation of the role
func (r Role) String() string {
	switch r {
	case RoleLookup:
		return "lookup"
	case RoleUpdate:
		return "update"
	case RoleCreate:
		return "create"
	case RoleCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// ParseRole converts a string to a Role
func ParseRole(s string) (Role, error) {
	switch s {
	case "lookup":
		return RoleLookup, nil
	case "update":
		return RoleUpdate, nil
	case "create":
		return RoleCreate, nil
	case "collection":
		return RoleCollection, nil
	default:
		return 0, fmt.Errorf("unknown url role: %s", s)
	}
}

// Vars is the set of named variables available for URL resolution
type Vars map[string]interface{}

// Template is an immutable URL pattern plus its role flags
type Template struct {
	pattern      string
	params       []string
	placeholders []string
	required     []string

	lookup     bool
	update     bool
	create     bool
	collection bool
}

// Option configures a Template
type Option func(*Template)

// WithParams declares names that are required for a match but are not
// placeholders in the pattern
func WithParams(names ...string) Option {
	return func(t *Template) {
		t.params = append(t.params, names...)
	}
}

// Lookup sets whether the template serves single-resource lookups (default true)
func Lookup(enabled bool) Option {
	return func(t *Template) { t.lookup = enabled }
}

// Update sets whether the template serves updates
func Update(enabled bool) Option {
	return func(t *Template) { t.update = enabled }
}

// Create sets whether the template serves creates
func Create(enabled bool) Option {
	return func(t *Template) { t.create = enabled }
}

// Collection sets whether the template serves collection listings
func Collection(enabled bool) Option {
	return func(t *Template) { t.collection = enabled }
}

// New parses pattern and returns a Template.
// Malformed placeholder syntax is reported as ErrInvalidTemplate.
func New(pattern string, opts ...Option) (*Template, error) {
	placeholders, err := parsePlaceholders(pattern)
	if err != nil {
		return nil, err
	}

	t := &Template{
		pattern:      pattern,
		placeholders: placeholders,
		lookup:       true,
	}
	for _, opt := range opts {
		opt(t)
	}

	seen := make(map[string]bool, len(placeholders)+len(t.params))
	for _, name := range append(append([]string{}, placeholders...), t.params...) {
		if seen[name] {
			continue
		}
		seen[name] = true
		t.required = append(t.required, name)
	}

	return t, nil
}

// MustNew is like New but panics on a malformed pattern.
// It is intended for templates declared at program initialization.
func MustNew(pattern string, opts ...Option) *Template {
	t, err := New(pattern, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTemplates returns the default template pair: a collection/create
// template and an item lookup/update template
func DefaultTemplates() []*Template {
	return []*Template{
		MustNew("%(resource_name)s/", Create(true), Lookup(false), Collection(true)),
		MustNew("%(resource_name)s/%(resource_id)s", Update(true)),
	}
}

// Pattern returns the raw URL pattern
func (t *Template) Pattern() string {
	return t.pattern
}

// Placeholders returns the placeholder names parsed from the pattern, in order of first appearance
func (t *Template) Placeholders() []string {
	return append([]string(nil), t.placeholders...)
}

// Params returns the declared extra parameter names
func (t *Template) Params() []string {
	return append([]string(nil), t.params...)
}

// RequiredNames returns placeholders and declared params, deduplicated
func (t *Template) RequiredNames() []string {
	return append([]string(nil), t.required...)
}

// Supports reports whether the template carries the given role flag
func (t *Template) Supports(role Role) bool {
	switch role {
	case RoleLookup:
		return t.lookup
	case RoleUpdate:
		return t.update
	case RoleCreate:
		return t.create
	case RoleCollection:
		return t.collection
	default:
		return false
	}
}

// Match instantiates the template if every required name is present in vars.
// Variables not required by the template are returned as extra params.
func (t *Template) Match(vars Vars) (string, Vars, bool) {
	for _, name := range t.required {
		if _, ok := vars[name]; !ok {
			return "", nil, false
		}
	}

	required := make(map[string]bool, len(t.required))
	for _, name := range t.required {
		required[name] = true
	}

	extra := make(Vars)
	for name, value := range vars {
		if !required[name] {
			extra[name] = value
		}
	}

	return t.expand(vars), extra, true
}

// String returns the raw URL pattern
func (t *Template) String() string {
	return t.pattern
}

// expand substitutes every placeholder by name. The pattern was validated
// in New, so malformed sequences cannot occur here.
func (t *Template) expand(vars Vars) string {
	var b strings.Builder
	p := t.pattern

	for i := 0; i < len(p); i++ {
		if p[i] != '%' {
			b.WriteByte(p[i])
			continue
		}
		if p[i+1] == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		end := strings.Index(p[i:], ")s")
		name := p[i+2 : i+end]
		b.WriteString(fmt.Sprint(vars[name]))
		i += end + 1
	}

	return b.String()
}

// parsePlaceholders validates pattern and returns its unique placeholder names
func parsePlaceholders(pattern string) ([]string, error) {
	var names []string
	seen := make(map[string]bool)

	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '%' {
			continue
		}
		if i+1 >= len(pattern) {
			return nil, fmt.Errorf("%w: %q: trailing %%", ErrInvalidTemplate, pattern)
		}

		switch pattern[i+1] {
		case '%':
			i++
		case '(':
			closing := strings.Index(pattern[i:], ")")
			if closing < 0 {
				return nil, fmt.Errorf("%w: %q: unclosed placeholder at offset %d", ErrInvalidTemplate, pattern, i)
			}
			name := pattern[i+2 : i+closing]
			if !placeholderName.MatchString(name) {
				return nil, fmt.Errorf("%w: %q: bad placeholder name %q", ErrInvalidTemplate, pattern, name)
			}
			if i+closing+1 >= len(pattern) || pattern[i+closing+1] != 's' {
				return nil, fmt.Errorf("%w: %q: placeholder %q must end with )s", ErrInvalidTemplate, pattern, name)
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			i += closing + 1
		default:
			return nil, fmt.Errorf("%w: %q: unsupported sequence %%%c", ErrInvalidTemplate, pattern, pattern[i+1])
		}
	}

	return names, nil
}
