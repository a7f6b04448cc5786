package lookup

// Result is the outcome of a successful resolution
type Result struct {
	// URL is the instantiated template
	URL string
	// Extra holds every available variable the template did not require
	Extra Vars
	// Template is the template that matched
	Template *Template
}

// Resolver matches variables against an ordered list of templates.
// The first template whose required names are all available wins, so
// declaration order is part of the contract.
type Resolver struct {
	templates []*Template
}

// NewResolver creates a resolver over templates in the given order
func NewResolver(templates ...*Template) *Resolver {
	return &Resolver{
		templates: append([]*Template(nil), templates...),
	}
}

// Compose assembles a template list as prepend + (base or defaults) + append
func Compose(prepend, base, appendix []*Template) []*Template {
	if base == nil {
		base = DefaultTemplates()
	}

	templates := make([]*Template, 0, len(prepend)+len(base)+len(appendix))
	templates = append(templates, prepend...)
	templates = append(templates, base...)
	templates = append(templates, appendix...)
	return templates
}

// Templates returns a copy of the ordered template list
func (r *Resolver) Templates() []*Template {
	return append([]*Template(nil), r.templates...)
}

// Resolve returns the first template match for vars.
// When nothing matches it returns an empty result and false; callers treat
// that as "no URL resolvable", not as an error.
func (r *Resolver) Resolve(vars Vars) (Result, bool) {
	return r.resolve(vars, func(*Template) bool { return true })
}

// ResolveRole is like Resolve but only considers templates that support role
func (r *Resolver) ResolveRole(role Role, vars Vars) (Result, bool) {
	return r.resolve(vars, func(t *Template) bool { return t.Supports(role) })
}

func (r *Resolver) resolve(vars Vars, include func(*Template) bool) (Result, bool) {
	for _, t := range r.templates {
		if !include(t) {
			continue
		}
		if url, extra, ok := t.Match(vars); ok {
			return Result{URL: url, Extra: extra, Template: t}, true
		}
	}
	return Result{Extra: Vars{}}, false
}
