package resource

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func defineOpaque(t *testing.T) *Metadata {
	t.Helper()
	meta, err := Define("Filter", []*Field{NewField("id", ResourceID())}, Options{DynamicSchema: true})
	require.NoError(t, err)
	return meta
}

func TestUpdateResourceFields_NestedMapping(t *testing.T) {
	meta := defineOpaque(t)

	err := meta.UpdateResourceFields(map[string]interface{}{
		"author": map[string]interface{}{"name": "A", "email": "a@x.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"author", "id"}, meta.FieldNames())

	author, ok := meta.Field("author")
	require.True(t, ok)
	assert.Equal(t, KindResource, author.Kind())

	nested := author.Nested()
	require.NotNil(t, nested)
	assert.Equal(t, "AuthorResource", nested.Name())
	assert.Equal(t, []string{"email", "name"}, nested.FieldNames())
	for _, f := range nested.Fields() {
		assert.Equal(t, KindScalar, f.Kind())
	}
}

func TestUpdateResourceFields_Scalars(t *testing.T) {
	meta := defineOpaque(t)

	require.NoError(t, meta.UpdateResourceFields(map[string]interface{}{
		"count":  float64(3),
		"active": true,
		"tags":   []interface{}{"a", "b"},
		"none":   nil,
	}))

	for _, name := range []string{"count", "active", "tags", "none"} {
		f, ok := meta.Field(name)
		require.True(t, ok, name)
		assert.Equal(t, KindScalar, f.Kind(), name)
	}
}

func TestUpdateResourceFields_DeepNesting(t *testing.T) {
	meta := defineOpaque(t)

	require.NoError(t, meta.UpdateResourceFields(map[string]interface{}{
		"billing_address": map[string]interface{}{
			"street": "Main",
			"geo":    map[string]interface{}{"lat": 1.0, "lng": 2.0},
		},
	}))

	billing, ok := meta.Field("billing_address")
	require.True(t, ok)
	assert.Equal(t, "BillingAddressResource", billing.Nested().Name())

	geo, ok := billing.Nested().Field("geo")
	require.True(t, ok)
	assert.Equal(t, KindResource, geo.Kind())
	assert.Equal(t, "GeoResource", geo.Nested().Name())
	assert.Equal(t, []string{"lat", "lng"}, geo.Nested().FieldNames())
}

func TestUpdateResourceFields_Idempotent(t *testing.T) {
	attrs := map[string]interface{}{
		"title":  "x",
		"author": map[string]interface{}{"name": "A"},
	}

	once := defineOpaque(t)
	require.NoError(t, once.UpdateResourceFields(attrs))

	twice := defineOpaque(t)
	require.NoError(t, twice.UpdateResourceFields(attrs))
	before, _ := twice.Field("author")
	require.NoError(t, twice.UpdateResourceFields(attrs))
	after, _ := twice.Field("author")

	assert.Equal(t, once.FieldNames(), twice.FieldNames())
	assert.Same(t, before, after, "known fields are left untouched")
}

func TestUpdateResourceFields_KeepsFirstShape(t *testing.T) {
	meta := defineOpaque(t)

	require.NoError(t, meta.UpdateResourceFields(map[string]interface{}{"owner": "bob"}))
	require.NoError(t, meta.UpdateResourceFields(map[string]interface{}{
		"owner": map[string]interface{}{"name": "bob"},
	}))

	owner, _ := meta.Field("owner")
	assert.Equal(t, KindScalar, owner.Kind())
}

func TestUpdateResourceFields_DeclaredFieldsUntouched(t *testing.T) {
	meta := defineOpaque(t)
	declared, _ := meta.Field("id")

	require.NoError(t, meta.UpdateResourceFields(map[string]interface{}{"id": map[string]interface{}{"a": 1}}))

	got, _ := meta.Field("id")
	assert.Same(t, declared, got)
	assert.Equal(t, "id", meta.ResourceIDFieldName())
}

func TestUpdateResourceFields_StaticSchema(t *testing.T) {
	meta := MustDefine("Note", nil, Options{})
	err := meta.UpdateResourceFields(map[string]interface{}{"x": 1})
	assert.ErrorIs(t, err, ErrStaticSchema)
	assert.Empty(t, meta.FieldNames())
}

func TestUpdateResourceFields_InstancesSeeNewFields(t *testing.T) {
	meta := defineOpaque(t)
	data := map[string]interface{}{
		"id":     float64(1),
		"author": map[string]interface{}{"name": "A", "email": "a@x.com"},
	}

	before, err := New(meta, data)
	require.NoError(t, err)
	assert.Contains(t, before.ExtraData(), "author")

	require.NoError(t, meta.UpdateResourceFields(data))

	after, err := New(meta, data)
	require.NoError(t, err)
	assert.Empty(t, after.ExtraData())

	author, ok := after.Get("author").(*Instance)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", author.Get("email"))
	assert.Equal(t, data, after.ToMap(true))
}

func TestUpdateResourceFields_Concurrent(t *testing.T) {
	meta := defineOpaque(t)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			attrs := map[string]interface{}{
				"shared": map[string]interface{}{"n": g},
			}
			for i := 0; i < 10; i++ {
				attrs[fmt.Sprintf("f%d", (g+i)%20)] = i
			}
			assert.NoError(t, meta.UpdateResourceFields(attrs))
			_, err := New(meta, attrs)
			assert.NoError(t, err)
		}(g)
	}
	wg.Wait()

	names := meta.FieldNames()
	assert.Contains(t, names, "shared")
	assert.Len(t, names, 22) // id + shared + f0..f19
}

func TestUpdateResourceFields_Logs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	meta := MustDefine("Filter", nil, Options{DynamicSchema: true, Logger: zap.New(core)})

	require.NoError(t, meta.UpdateResourceFields(map[string]interface{}{"a": 1, "b": map[string]interface{}{}}))

	entries := logs.FilterMessage("synthesized resource field").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ContextMap()["field"])
	assert.Equal(t, "resource", entries[1].ContextMap()["kind"])
}

func TestSynthesizedTypeName(t *testing.T) {
	assert.Equal(t, "AuthorResource", SynthesizedTypeName("author"))
	assert.Equal(t, "AuthorInfoResource", SynthesizedTypeName("author_info"))
}
