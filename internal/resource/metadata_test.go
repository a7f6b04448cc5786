package resource

import (
	"context"
	"testing"

	"github.com/conduit-lang/restmap/internal/cache"
	"github.com/conduit-lang/restmap/internal/lookup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefine_Defaults(t *testing.T) {
	meta, err := Define("BlogPost", []*Field{
		NewField("id", ResourceID()),
		NewField("title"),
	}, Options{})
	require.NoError(t, err)

	assert.Equal(t, "BlogPost", meta.Name())
	assert.Equal(t, "blogpost", meta.ResourceName())
	assert.Equal(t, "id", meta.ResourceIDFieldName())
	assert.True(t, meta.UpdateFromWrite())
	assert.False(t, meta.DynamicSchema())
	assert.IsType(t, &cache.NullCache{}, meta.Cache())
	assert.NotNil(t, meta.Logger())
	assert.Equal(t, []string{"id", "title"}, meta.FieldNames())

	templates := meta.Templates()
	require.Len(t, templates, 2)
	assert.Equal(t, "%(resource_name)s/", templates[0].Pattern())
	assert.Equal(t, "%(resource_name)s/%(resource_id)s", templates[1].Pattern())
}

func TestDefine_Options(t *testing.T) {
	pre := lookup.MustNew("%(resource_name)s/featured/")
	custom := lookup.MustNew("v2/%(resource_name)s/%(resource_id)s", lookup.Update(true))
	post := lookup.MustNew("%(resource_name)s/archive/")
	memory := cache.NewMemoryCache()
	defer memory.Close()

	meta, err := Define("Note", nil, Options{
		ResourceName:    "notes",
		URLs:            []*lookup.Template{custom},
		PrependURLs:     []*lookup.Template{pre},
		AppendURLs:      []*lookup.Template{post},
		RootURL:         "https://api.example.com/",
		UpdateFromWrite: Bool(false),
		DynamicSchema:   true,
		Cache:           memory,
		Extra:           map[string]interface{}{"update_method": "PATCH", "add_slash": true},
	})
	require.NoError(t, err)

	assert.Equal(t, "notes", meta.ResourceName())
	assert.Equal(t, "https://api.example.com/", meta.RootURL())
	assert.Equal(t, []*lookup.Template{pre, custom, post}, meta.Templates())
	assert.False(t, meta.UpdateFromWrite())
	assert.True(t, meta.DynamicSchema())
	assert.Same(t, memory, meta.Cache())

	v, ok := meta.Extra("update_method")
	assert.True(t, ok)
	assert.Equal(t, "PATCH", v)
	assert.Equal(t, "PATCH", meta.ExtraString("update_method", "PUT"))
	assert.Equal(t, "objects", meta.ExtraString("collection_field", "objects"))
	assert.True(t, meta.ExtraBool("add_slash", false))
	assert.False(t, meta.ExtraBool("missing", false))
	_, ok = meta.Extra("missing")
	assert.False(t, ok)

	result, ok := meta.Resolver().Resolve(lookup.Vars{"resource_name": "notes"})
	require.True(t, ok)
	assert.Equal(t, "notes/featured/", result.URL)
}

func TestDefine_Inheritance(t *testing.T) {
	base := MustDefine("Base", []*Field{
		NewField("id", ResourceID()),
		NewField("created"),
		NewField("title", Default("base")),
	}, Options{})

	child, err := Define("Article", []*Field{
		NewField("title", Default("child")),
		NewField("body"),
	}, Options{}, base)
	require.NoError(t, err)

	assert.Equal(t, []string{"body", "created", "id", "title"}, child.FieldNames())
	assert.Equal(t, "id", child.ResourceIDFieldName())

	title, ok := child.Field("title")
	require.True(t, ok)
	assert.Equal(t, "child", title.DefaultValue())

	// The parent is unaffected
	title, _ = base.Field("title")
	assert.Equal(t, "base", title.DefaultValue())
	_, ok = base.Field("body")
	assert.False(t, ok)
}

func TestDefine_OverrideDropsInheritedResourceID(t *testing.T) {
	base := MustDefine("Base", []*Field{NewField("id", ResourceID())}, Options{})

	child, err := Define("Child", []*Field{
		NewField("id"),
		NewField("slug", ResourceID()),
	}, Options{}, base)
	require.NoError(t, err)
	assert.Equal(t, "slug", child.ResourceIDFieldName())
}

func TestDefine_Errors(t *testing.T) {
	_, err := Define("", nil, Options{})
	assert.Error(t, err)

	_, err = Define("Note", []*Field{
		NewField("id", ResourceID()),
		NewField("uuid", ResourceID()),
	}, Options{})
	assert.ErrorIs(t, err, ErrAmbiguousResourceID)

	_, err = Define("Note", []*Field{NewField("title"), NewField("title")}, Options{})
	assert.ErrorIs(t, err, ErrDuplicateField)

	_, err = Define("Note", []*Field{NewField("")}, Options{})
	assert.Error(t, err)

	assert.Panics(t, func() {
		MustDefine("Note", []*Field{NewField("a", ResourceID()), NewField("b", ResourceID())}, Options{})
	})
}

func TestDefine_FieldsAreCopied(t *testing.T) {
	f := NewField("title")
	meta := MustDefine("Note", []*Field{f}, Options{})

	got, ok := meta.Field("title")
	require.True(t, ok)
	assert.NotSame(t, f, got)
}

func TestDefine_EngineBoundOncePerType(t *testing.T) {
	built := 0
	meta := MustDefine("Note", nil, Options{
		Engine: func(m *Metadata) Engine {
			built++
			return &fakeEngine{meta: m}
		},
	})

	a, err := New(meta, nil)
	require.NoError(t, err)
	b, err := New(meta, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, built)
	assert.Same(t, a.Meta().Engine(), b.Meta().Engine())
}

func TestDefine_UnboundEngine(t *testing.T) {
	meta := MustDefine("Note", []*Field{NewField("id", ResourceID())}, Options{})
	inst, err := New(meta, map[string]interface{}{"id": 1})
	require.NoError(t, err)

	assert.ErrorIs(t, inst.Save(context.Background()), ErrNoEngine)
	assert.ErrorIs(t, inst.Delete(context.Background()), ErrNoEngine)

	url, ok := meta.Engine().UpdateURL(inst)
	assert.True(t, ok)
	assert.Equal(t, "note/1", url)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	note := MustDefine("Note", nil, Options{})
	user := MustDefine("User", nil, Options{})

	require.NoError(t, r.Register(note))
	require.NoError(t, r.Register(user))
	assert.Error(t, r.Register(MustDefine("Note", nil, Options{})))

	got, ok := r.Get("Note")
	assert.True(t, ok)
	assert.Same(t, note, got)
	_, ok = r.Get("Missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"Note", "User"}, r.List())
	assert.Equal(t, 2, r.Count())

	r.Clear()
	assert.Equal(t, 0, r.Count())
}
