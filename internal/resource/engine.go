package resource

import (
	"context"

	"github.com/conduit-lang/restmap/internal/cache"
	"github.com/conduit-lang/restmap/internal/lookup"
)

// RequestArgs are per-request transport settings (headers, timeouts, ...)
// understood by the dispatch engine
type RequestArgs map[string]interface{}

// Engine dispatches lifecycle operations for one resource type
type Engine interface {
	// Create sends inst to the collection and returns the server's representation
	Create(ctx context.Context, inst *Instance, params lookup.Vars) (*Instance, error)
	// Update sends inst to its item URL and returns the server's representation
	Update(ctx context.Context, inst *Instance, params lookup.Vars) (*Instance, error)
	// Delete removes inst on the server
	Delete(ctx context.Context, inst *Instance, params lookup.Vars) error
	// UpdateURL resolves the URL an update of inst would target
	UpdateURL(inst *Instance) (string, bool)
	// LookupURL resolves the URL inst would be fetched from
	LookupURL(inst *Instance) (string, bool)
	// FullURL qualifies a resolved URL with the root URL
	FullURL(lookupURL string) string
	// ModifyRequest returns a request-scoped variant of the engine
	ModifyRequest(args RequestArgs) Engine
	// Cache returns the cache backend the engine reads through
	Cache() cache.Cache
}

// EngineFactory builds the engine bound to a resource type
type EngineFactory func(meta *Metadata) Engine

// unboundEngine serves types defined without an engine
type unboundEngine struct{}

func (unboundEngine) Create(context.Context, *Instance, lookup.Vars) (*Instance, error) {
	return nil, ErrNoEngine
}

func (unboundEngine) Update(context.Context, *Instance, lookup.Vars) (*Instance, error) {
	return nil, ErrNoEngine
}

func (unboundEngine) Delete(context.Context, *Instance, lookup.Vars) error {
	return ErrNoEngine
}

func (unboundEngine) UpdateURL(inst *Instance) (string, bool) {
	result, ok := inst.ResolveURL(lookup.RoleUpdate)
	return result.URL, ok
}

func (unboundEngine) LookupURL(inst *Instance) (string, bool) {
	result, ok := inst.ResolveURL(lookup.RoleLookup)
	return result.URL, ok
}

func (unboundEngine) FullURL(lookupURL string) string {
	return lookupURL
}

func (e unboundEngine) ModifyRequest(RequestArgs) Engine {
	return e
}

func (unboundEngine) Cache() cache.Cache {
	return cache.NewNullCache()
}
