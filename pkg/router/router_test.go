package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

func testDefinition() *service.ServiceDefinition {
	return &service.ServiceDefinition{
		Name: "orders",
		Endpoints: []service.EndpointDefinition{
			{
				Method: "GET",
				Path:   "/orders/{id}",
				Responses: map[int]service.ResponseDefinition{
					200: {ContentType: "application/json", Body: `{"id":"x"}`},
				},
			},
			{
				Method:      "GET",
				Path:        "/orders/{id}",
				HeaderMatch: map[string]string{"X-Api-Version": "2"},
				Responses: map[int]service.ResponseDefinition{
					200: {ContentType: "application/json", Body: `{"id":"x","v":2}`},
				},
			},
			{
				Method: "DELETE",
				Path:   "/orders/{id}",
				Responses: map[int]service.ResponseDefinition{
					204: {},
				},
			},
		},
	}
}

func TestFindEndpointDeclarationOrderWins(t *testing.T) {
	rt := New(testDefinition())

	// Both GET endpoints' templates match; the first declared wins because
	// it has no header requirements.
	match, ok := rt.FindEndpoint("GET", "/orders/42", nil)
	require.True(t, ok)
	assert.Equal(t, 0, match.Index)
	assert.Equal(t, service.PathParameters{"id": "42"}, match.Params)
}

func TestFindEndpointHeaderMatchPreFilter(t *testing.T) {
	def := testDefinition()
	// Reverse declaration order so the header-gated endpoint comes first.
	def.Endpoints[0], def.Endpoints[1] = def.Endpoints[1], def.Endpoints[0]
	rt := New(def)

	match, ok := rt.FindEndpoint("GET", "/orders/42", map[string]string{"x-api-version": "2"})
	require.True(t, ok)
	assert.Equal(t, 0, match.Index)

	// Without the header the gated endpoint is ineligible and matching
	// falls through to the next declaration.
	match, ok = rt.FindEndpoint("GET", "/orders/42", nil)
	require.True(t, ok)
	assert.Equal(t, 1, match.Index)
}

func TestFindEndpointMethodMismatch(t *testing.T) {
	rt := New(testDefinition())

	match, ok := rt.FindEndpoint("DELETE", "/orders/42", nil)
	require.True(t, ok)
	assert.Equal(t, 2, match.Index)

	_, ok = rt.FindEndpoint("PATCH", "/orders/42", nil)
	assert.False(t, ok)
}

func TestFindEndpointBasePath(t *testing.T) {
	def := testDefinition()
	def.Server.BasePath = "/api"
	rt := New(def)

	_, ok := rt.FindEndpoint("GET", "/orders/42", nil)
	assert.False(t, ok, "path outside base path must not match")

	match, ok := rt.FindEndpoint("GET", "/api/orders/42", nil)
	require.True(t, ok)
	assert.Equal(t, "42", match.Params["id"])
}

func TestFindEndpointNoMatch(t *testing.T) {
	rt := New(testDefinition())
	_, ok := rt.FindEndpoint("GET", "/customers/1", nil)
	assert.False(t, ok)
}
