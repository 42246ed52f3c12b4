package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

func TestMatchTemplate(t *testing.T) {
	tests := []struct {
		name       string
		template   string
		path       string
		wantOK     bool
		wantParams service.PathParameters
	}{
		{
			name:       "exact literal match",
			template:   "/api/users",
			path:       "/api/users",
			wantOK:     true,
			wantParams: service.PathParameters{},
		},
		{
			name:       "single placeholder binds",
			template:   "/users/{id}",
			path:       "/users/123",
			wantOK:     true,
			wantParams: service.PathParameters{"id": "123"},
		},
		{
			name:     "placeholder binds without type checking",
			template: "/users/{id}",
			path:     "/users/not-a-number",
			wantOK:   true,
			wantParams: service.PathParameters{
				"id": "not-a-number",
			},
		},
		{
			name:     "multiple placeholders",
			template: "/users/{uid}/orders/{oid}",
			path:     "/users/7/orders/42",
			wantOK:   true,
			wantParams: service.PathParameters{
				"uid": "7",
				"oid": "42",
			},
		},
		{
			name:     "segment count mismatch fails",
			template: "/users/{id}",
			path:     "/users/1/orders",
			wantOK:   false,
		},
		{
			name:     "literal mismatch fails",
			template: "/users/{id}",
			path:     "/accounts/1",
			wantOK:   false,
		},
		{
			name:     "literals are case-sensitive",
			template: "/Users/{id}",
			path:     "/users/1",
			wantOK:   false,
		},
		{
			name:       "root matches root",
			template:   "/",
			path:       "/",
			wantOK:     true,
			wantParams: service.PathParameters{},
		},
		{
			name:     "root does not match deeper path",
			template: "/",
			path:     "/users",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, ok := MatchTemplate(tt.template, tt.path)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantParams, params)
			}
		})
	}
}
