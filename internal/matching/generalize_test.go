package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneralize(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		wantTemplate string
		wantValues   map[string]string
	}{
		{
			name:         "numeric id",
			path:         "/users/123",
			wantTemplate: "/users/{param1}",
			wantValues:   map[string]string{"param1": "123"},
		},
		{
			name:         "uuid",
			path:         "/orders/550e8400-e29b-41d4-a716-446655440000",
			wantTemplate: "/orders/{param1}",
			wantValues:   map[string]string{"param1": "550e8400-e29b-41d4-a716-446655440000"},
		},
		{
			name:         "long hex hash",
			path:         "/blobs/deadbeefdeadbeef",
			wantTemplate: "/blobs/{param1}",
			wantValues:   map[string]string{"param1": "deadbeefdeadbeef"},
		},
		{
			name:         "opaque identifier",
			path:         "/carts/ab12",
			wantTemplate: "/carts/{param1}",
			wantValues:   map[string]string{"param1": "ab12"},
		},
		{
			name:         "multiple dynamic segments numbered left to right",
			path:         "/users/42/orders/7/items",
			wantTemplate: "/users/{param1}/orders/{param2}/items",
			wantValues:   map[string]string{"param1": "42", "param2": "7"},
		},
		{
			name:         "all static",
			path:         "/api/health/live",
			wantTemplate: "/api/health/live",
			wantValues:   map[string]string{},
		},
		{
			name:         "root unchanged",
			path:         "/",
			wantTemplate: "/",
			wantValues:   map[string]string{},
		},
		{
			name:         "version segment stays static",
			path:         "/v1/users",
			wantTemplate: "/v1/users",
			wantValues:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generalize(tt.path)
			assert.Equal(t, tt.wantTemplate, got.Template)
			assert.Equal(t, tt.wantValues, map[string]string(got.Values))
			assert.Len(t, got.Parameters, len(tt.wantValues))
			for _, p := range got.Parameters {
				assert.Equal(t, "path", string(p.In))
				assert.True(t, p.Required)
			}
		})
	}
}

func TestSegmentClassificationBoundaries(t *testing.T) {
	assert.False(t, isDynamicSegment("abc"))
	assert.True(t, isDynamicSegment("ab12"))
	assert.False(t, isDynamicSegment("v1"))
	assert.True(t, isDynamicSegment("550e8400-e29b-41d4-a716-446655440000"))
	assert.True(t, isDynamicSegment("deadbeefdeadbeef"))
	assert.True(t, isDynamicSegment("123"))
	assert.False(t, isDynamicSegment("users"))
	assert.True(t, isDynamicSegment("order_a1"))
	assert.True(t, isDynamicSegment("a1~b2"))
	assert.False(t, isDynamicSegment("has space1a"))
	// 15 chars: too short for the hash rule, and with no digit the
	// identifier rule does not apply either, so the segment is static.
	assert.False(t, isDynamicSegment("deadbeefdeadbee"))
	// A digit brings the identifier rule back below 16 chars.
	assert.True(t, isDynamicSegment("deadbee7deadbee"))
}

func TestGeneralizeIdempotentAcrossShapes(t *testing.T) {
	// Paths sharing a literal/dynamic shape must produce identical
	// templates and parameter names.
	g1 := Generalize("/users/123")
	g2 := Generalize("/users/456")
	assert.Equal(t, g1.Template, g2.Template)
	assert.Equal(t, g1.Parameters, g2.Parameters)

	g3 := Generalize("/users/550e8400-e29b-41d4-a716-446655440000")
	assert.Equal(t, g1.Template, g3.Template)
}

func TestGeneralizeIsPure(t *testing.T) {
	// Repeated calls see no hidden state: numbering restarts at param1.
	first := Generalize("/a/1/b/2")
	second := Generalize("/a/1/b/2")
	assert.Equal(t, first, second)
	assert.Equal(t, "/a/{param1}/b/{param2}", second.Template)
}

func TestRoundTrip(t *testing.T) {
	paths := []string{
		"/users/123",
		"/users/550e8400-e29b-41d4-a716-446655440000",
		"/a/1/b/2/c",
		"/blobs/deadbeefdeadbeefdeadbeef",
		"/static/only",
	}
	for _, p := range paths {
		gen := Generalize(p)
		params, ok := MatchTemplate(gen.Template, p)
		require.True(t, ok, p)
		for name, want := range gen.Values {
			assert.Equal(t, want, params[name], p)
		}
	}
}
