package recorder

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmaojo/apicentric-sub001/internal/matching"
	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

func upsertPath(s *SessionStore, method, path string, status int, body string) {
	s.Upsert(matching.Generalize(path), Exchange{
		Method:      method,
		Path:        path,
		Status:      status,
		ContentType: "application/json",
		Body:        []byte(body),
	})
}

func TestUpsertCollapsesSameShape(t *testing.T) {
	s := NewSessionStore("rec")

	upsertPath(s, "GET", "/users/123", 200, `{"id":123}`)
	upsertPath(s, "GET", "/users/456", 200, `{"id":456}`)
	upsertPath(s, "GET", "/users/789", 200, `{"id":789}`)

	assert.Equal(t, 1, s.Len())

	def := s.Definition(service.ServerConfig{})
	require.Len(t, def.Endpoints, 1)
	ep := def.Endpoints[0]
	assert.Equal(t, "/users/{param1}", ep.Path)
	require.Len(t, ep.Parameters, 1)
	assert.Equal(t, "param1", ep.Parameters[0].Name)
	assert.Equal(t, service.InPath, ep.Parameters[0].In)

	// Last writer wins for the 200 response body.
	assert.Equal(t, `{"id":789}`, ep.Responses[200].Body)
}

func TestDistinctMethodsStayDistinct(t *testing.T) {
	s := NewSessionStore("rec")
	upsertPath(s, "GET", "/users/123", 200, `{}`)
	upsertPath(s, "DELETE", "/users/123", 204, ``)
	assert.Equal(t, 2, s.Len())
}

func TestProvenanceAggregation(t *testing.T) {
	s := NewSessionStore("rec")
	upsertPath(s, "GET", "/users/123", 200, `{}`)
	upsertPath(s, "GET", "/users/456", 200, `{}`)
	upsertPath(s, "GET", "/users/456", 200, `{}`) // duplicate value

	def := s.Definition(service.ServerConfig{})
	require.Len(t, def.Endpoints, 1)

	raw := def.Endpoints[0].Responses[200].Headers[service.RecordedPathParamsHeader]
	require.NotEmpty(t, raw)

	var observed map[string][]string
	require.NoError(t, json.Unmarshal([]byte(raw), &observed))
	assert.Equal(t, map[string][]string{"param1": {"123", "456"}}, observed)
}

func TestProvenanceSharedAcrossStatusCodes(t *testing.T) {
	s := NewSessionStore("rec")
	upsertPath(s, "GET", "/users/123", 200, `{}`)
	upsertPath(s, "GET", "/users/456", 404, `{"error":"gone"}`)

	def := s.Definition(service.ServerConfig{})
	ep := def.Endpoints[0]
	require.Contains(t, ep.Responses, 200)
	require.Contains(t, ep.Responses, 404)

	for _, status := range []int{200, 404} {
		var observed map[string][]string
		raw := ep.Responses[status].Headers[service.RecordedPathParamsHeader]
		require.NoError(t, json.Unmarshal([]byte(raw), &observed), status)
		assert.Equal(t, []string{"123", "456"}, observed["param1"], status)
	}
}

func TestStaticPathsCarryNoProvenance(t *testing.T) {
	s := NewSessionStore("rec")
	upsertPath(s, "GET", "/health", 200, `ok`)

	def := s.Definition(service.ServerConfig{})
	ep := def.Endpoints[0]
	assert.Empty(t, ep.Parameters)
	assert.NotContains(t, ep.Responses[200].Headers, service.RecordedPathParamsHeader)
}

func TestDefinitionRoundTripsThroughMatcher(t *testing.T) {
	s := NewSessionStore("rec")
	paths := []string{
		"/users/123",
		"/users/550e8400-e29b-41d4-a716-446655440000",
		"/orders/42/items/7",
	}
	for _, p := range paths {
		upsertPath(s, "GET", p, 200, `{}`)
	}

	def := s.Definition(service.ServerConfig{})
	for _, p := range paths {
		matched := false
		for _, ep := range def.Endpoints {
			if params, ok := matching.MatchTemplate(ep.Path, p); ok {
				matched = true
				gen := matching.Generalize(p)
				for name, want := range gen.Values {
					assert.Equal(t, want, params[name], p)
				}
				break
			}
		}
		assert.True(t, matched, "recorded path %s must match its own template", p)
	}
}

func TestConcurrentUpsertsCollapse(t *testing.T) {
	// 100 concurrent requests over 10 distinct shapes must produce exactly
	// 10 entries. Run with -race.
	s := NewSessionStore("rec")

	resources := []string{
		"users", "orders", "items", "carts", "invoices",
		"products", "reviews", "tickets", "accounts", "events",
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("/%s/%d", resources[i%10], i)
			upsertPath(s, "GET", path, 200, `{}`)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, s.Len())

	def := s.Definition(service.ServerConfig{})
	assert.Len(t, def.Endpoints, 10)
	for _, ep := range def.Endpoints {
		var observed map[string][]string
		raw := ep.Responses[200].Headers[service.RecordedPathParamsHeader]
		require.NoError(t, json.Unmarshal([]byte(raw), &observed))
		assert.Len(t, observed["param1"], 10, ep.Path)
	}
}
