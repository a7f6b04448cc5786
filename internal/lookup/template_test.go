package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Placeholders(t *testing.T) {
	tests := []struct {
		name         string
		pattern      string
		params       []string
		placeholders []string
		required     []string
	}{
		{
			name:         "no placeholders",
			pattern:      "status/",
			placeholders: nil,
			required:     nil,
		},
		{
			name:         "single",
			pattern:      "%(resource_name)s/",
			placeholders: []string{"resource_name"},
			required:     []string{"resource_name"},
		},
		{
			name:         "repeated placeholder counted once",
			pattern:      "%(a)s/%(b)s/%(a)s",
			placeholders: []string{"a", "b"},
			required:     []string{"a", "b"},
		},
		{
			name:         "declared params",
			pattern:      "%(resource_name)s/search/",
			params:       []string{"q", "resource_name"},
			placeholders: []string{"resource_name"},
			required:     []string{"resource_name", "q"},
		},
		{
			name:         "escaped percent",
			pattern:      "100%%/%(id)s",
			placeholders: []string{"id"},
			required:     []string{"id"},
		},
		{
			name:         "dashes in name",
			pattern:      "%(user-id)s/",
			placeholders: []string{"user-id"},
			required:     []string{"user-id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := New(tt.pattern, WithParams(tt.params...))
			require.NoError(t, err)
			assert.Equal(t, tt.placeholders, tmpl.Placeholders())
			assert.Equal(t, tt.required, tmpl.RequiredNames())
			assert.Equal(t, tt.pattern, tmpl.String())
		})
	}
}

func TestNew_InvalidPatterns(t *testing.T) {
	patterns := []string{
		"%(resource_name/",
		"%(resource_name)/",
		"%(resource_name)",
		"notes/%",
		"notes/%d",
		"%()s",
		"%(bad name)s",
	}

	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			_, err := New(pattern)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTemplate)
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNew("%(unclosed")
	})
	assert.NotPanics(t, func() {
		MustNew("%(resource_name)s/")
	})
}

func TestTemplate_RoleFlags(t *testing.T) {
	tmpl := MustNew("x/")
	assert.True(t, tmpl.Supports(RoleLookup))
	assert.False(t, tmpl.Supports(RoleUpdate))
	assert.False(t, tmpl.Supports(RoleCreate))
	assert.False(t, tmpl.Supports(RoleCollection))

	tmpl = MustNew("x/", Lookup(false), Update(true), Create(true), Collection(true))
	assert.False(t, tmpl.Supports(RoleLookup))
	assert.True(t, tmpl.Supports(RoleUpdate))
	assert.True(t, tmpl.Supports(RoleCreate))
	assert.True(t, tmpl.Supports(RoleCollection))
}

func TestTemplate_Match(t *testing.T) {
	tmpl := MustNew("%(resource_name)s/%(resource_id)s")

	url, extra, ok := tmpl.Match(Vars{"resource_name": "note", "resource_id": 42, "page": 2})
	require.True(t, ok)
	assert.Equal(t, "note/42", url)
	assert.Equal(t, Vars{"page": 2}, extra)

	_, _, ok = tmpl.Match(Vars{"resource_name": "note"})
	assert.False(t, ok)
}

func TestTemplate_MatchDeclaredParamNotInterpolated(t *testing.T) {
	tmpl := MustNew("%(resource_name)s/search/", WithParams("q"))

	url, extra, ok := tmpl.Match(Vars{"resource_name": "note", "q": "hello"})
	require.True(t, ok)
	assert.Equal(t, "note/search/", url)
	assert.Empty(t, extra)
}

func TestTemplate_MatchEscapedPercent(t *testing.T) {
	tmpl := MustNew("rates/100%%/%(id)s")

	url, _, ok := tmpl.Match(Vars{"id": "a"})
	require.True(t, ok)
	assert.Equal(t, "rates/100%/a", url)
}

func TestParseRole(t *testing.T) {
	for _, role := range []Role{RoleLookup, RoleUpdate, RoleCreate, RoleCollection} {
		parsed, err := ParseRole(role.String())
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	_, err := ParseRole("destroy")
	assert.Error(t, err)
	assert.Equal(t, "unknown", Role(99).String())
}
