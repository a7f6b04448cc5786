package config

import (
	"testing"

	"github.com/conduit-lang/restmap/internal/engine"
	"github.com/conduit-lang/restmap/internal/lookup"
	"github.com/conduit-lang/restmap/internal/middleware"
	"github.com/conduit-lang/restmap/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	registry, err := Build(cfg, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Author", "Post"}, registry.List())

	author, ok := registry.Get("Author")
	require.True(t, ok)
	assert.Equal(t, "author", author.ResourceName())
	assert.Equal(t, "id", author.ResourceIDFieldName())
	assert.True(t, author.UpdateFromWrite())
	assert.Len(t, author.Templates(), 2)

	post, ok := registry.Get("Post")
	require.True(t, ok)
	assert.Equal(t, "posts", post.ResourceName())
	assert.Equal(t, "https://api.example.com/v1/", post.RootURL())
	assert.False(t, post.UpdateFromWrite())
	assert.Equal(t, "objects", post.ExtraString(engine.OptionCollectionField, ""))
	assert.IsType(t, &engine.HTTPEngine{}, post.Engine())

	templates := post.Templates()
	require.Len(t, templates, 2)
	assert.Equal(t, "authors/%(author_id)s/posts/", templates[0].Pattern())
	assert.False(t, templates[0].Supports(lookup.RoleLookup))
	assert.True(t, templates[0].Supports(lookup.RoleCollection))
	assert.Equal(t, []string{"resource_id", "format"}, templates[1].RequiredNames())

	kinds := map[string]resource.FieldKind{}
	for _, f := range post.Fields() {
		kinds[f.Name()] = f.Kind()
	}
	assert.Equal(t, map[string]resource.FieldKind{
		"id":        resource.KindScalar,
		"title":     resource.KindScalar,
		"body":      resource.KindScalar,
		"author":    resource.KindResource,
		"editors":   resource.KindList,
		"published": resource.KindDateTime,
	}, kinds)

	body, ok := post.Field("body")
	require.True(t, ok)
	assert.Equal(t, "content", body.WireName())

	authorField, ok := post.Field("author")
	require.True(t, ok)
	assert.Same(t, author, authorField.Nested())

	inst, err := resource.New(post, nil)
	require.NoError(t, err)
	assert.Equal(t, "untitled", inst.Get("title"))
}

func TestBuild_AddSlashAndURLs(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	registry, err := Build(cfg, BuildOptions{})
	require.NoError(t, err)

	post, _ := registry.Get("Post")
	inst, err := resource.New(post, map[string]interface{}{"id": 7})
	require.NoError(t, err)

	updateURL, ok := post.Engine().UpdateURL(inst)
	assert.False(t, ok, "format param is required")
	assert.Empty(t, updateURL)

	assert.Equal(t, "https://api.example.com/v1/posts/7/", post.Engine().FullURL("posts/7"))
}

func TestBuild_Extends(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
resources:
  - name: Base
    fields:
      - name: id
        resource_id: true
      - name: created
        read_only: true
  - name: Child
    extends: [Base]
    fields:
      - name: label
`))
	require.NoError(t, err)

	registry, err := Build(cfg, BuildOptions{})
	require.NoError(t, err)

	child, ok := registry.Get("Child")
	require.True(t, ok)
	assert.Equal(t, []string{"created", "id", "label"}, child.FieldNames())
	assert.Equal(t, "id", child.ResourceIDFieldName())
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "forward nested reference",
			content: "resources:\n  - name: A\n    fields:\n      - name: b\n        kind: resource\n        resource: B\n  - name: B\n",
			wantErr: `unknown resource "B"`,
		},
		{
			name:    "unknown parent",
			content: "resources:\n  - name: A\n    extends: [Z]\n",
			wantErr: `extends unknown resource "Z"`,
		},
		{
			name:    "invalid template",
			content: "resources:\n  - name: A\n    urls:\n      - pattern: \"a/%(id)d\"\n",
			wantErr: "invalid",
		},
		{
			name:    "unknown middleware",
			content: "middleware: [gzip]\n",
			wantErr: `unknown middleware "gzip"`,
		},
		{
			name:    "two resource ids",
			content: "resources:\n  - name: A\n    fields:\n      - name: a\n        resource_id: true\n      - name: b\n        resource_id: true\n",
			wantErr: "resource id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			require.NoError(t, err)

			_, err = Build(cfg, BuildOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildMiddleware_AuthFirst(t *testing.T) {
	cfg := &Config{
		Auth: &AuthConfig{
			Type:      "bearer",
			SecretKey: "k",
			Subject:   "svc",
		},
		Middleware: []string{"request_id"},
	}

	chain, err := BuildMiddleware(cfg)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.IsType(t, &middleware.BearerAuthorization{}, chain[0])
	assert.IsType(t, &middleware.RequestID{}, chain[1])
}

func TestBuildMiddleware_AuthTypes(t *testing.T) {
	proxy, err := BuildMiddleware(&Config{Auth: &AuthConfig{Type: "proxy", Username: "a@b.c", Password: "p", Endpoint: "https://proxy.example.com/"}})
	require.NoError(t, err)
	require.Len(t, proxy, 1)
	assert.Equal(t, "https://proxy.example.com/", proxy[0].(*middleware.ProxyAuthorization).Endpoint)

	basic, err := BuildMiddleware(&Config{Auth: &AuthConfig{Type: "basic", Username: "u", Password: "p"}})
	require.NoError(t, err)
	assert.Equal(t, "u", basic[0].(*middleware.HTTPAuthorization).Username)

	_, err = BuildMiddleware(&Config{Auth: &AuthConfig{Type: "bearer"}})
	assert.Error(t, err)
}
