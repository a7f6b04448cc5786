package resource

import (
	"context"

	"github.com/conduit-lang/restmap/internal/cache"
	"github.com/conduit-lang/restmap/internal/lookup"
)

// fakeEngine records calls and answers writes with respond
type fakeEngine struct {
	meta       *Metadata
	calls      []string
	lastParams lookup.Vars
	lastArgs   RequestArgs
	respond    func(op string, inst *Instance) (*Instance, error)
	deleteErr  error
	cache      cache.Cache
}

func (e *fakeEngine) record(op string, params lookup.Vars) {
	e.calls = append(e.calls, op)
	e.lastParams = params
}

func (e *fakeEngine) Create(ctx context.Context, inst *Instance, params lookup.Vars) (*Instance, error) {
	e.record("create", params)
	return e.respond("create", inst)
}

func (e *fakeEngine) Update(ctx context.Context, inst *Instance, params lookup.Vars) (*Instance, error) {
	e.record("update", params)
	return e.respond("update", inst)
}

func (e *fakeEngine) Delete(ctx context.Context, inst *Instance, params lookup.Vars) error {
	e.record("delete", params)
	return e.deleteErr
}

func (e *fakeEngine) UpdateURL(inst *Instance) (string, bool) {
	result, ok := inst.ResolveURL(lookup.RoleUpdate)
	return result.URL, ok
}

func (e *fakeEngine) LookupURL(inst *Instance) (string, bool) {
	result, ok := inst.ResolveURL(lookup.RoleLookup)
	return result.URL, ok
}

func (e *fakeEngine) FullURL(lookupURL string) string {
	return e.meta.RootURL() + lookupURL
}

func (e *fakeEngine) ModifyRequest(args RequestArgs) Engine {
	e.lastArgs = args
	return e
}

func (e *fakeEngine) Cache() cache.Cache {
	return e.cache
}

// echo answers a write with the instance's own data, assigning id 42 on create
func echo(op string, inst *Instance) (*Instance, error) {
	data := inst.ToMap(true)
	if op == "create" {
		data["id"] = float64(42)
	}
	data["updated_by"] = "server"
	return New(inst.Meta(), data, AsPersisted())
}

func defineNote(respond func(string, *Instance) (*Instance, error), opts ...func(*Options)) (*Metadata, *fakeEngine) {
	engine := &fakeEngine{respond: respond, cache: cache.NewNullCache()}
	options := Options{
		RootURL: "https://api.example.com/",
		Engine: func(m *Metadata) Engine {
			engine.meta = m
			return engine
		},
	}
	for _, opt := range opts {
		opt(&options)
	}

	meta := MustDefine("Note", []*Field{
		NewField("id", ResourceID(), ReadOnly()),
		NewField("title", Default("untitled")),
		NewField("body", APIName("content")),
		NewField("created", ReadOnly()),
	}, options)
	return meta, engine
}
