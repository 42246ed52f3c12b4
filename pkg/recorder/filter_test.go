package recorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilFilterRecordsEverything(t *testing.T) {
	var f *Filter
	assert.True(t, f.ShouldRecord("api.example.com", "/anything"))
}

func TestFilterRules(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		host   string
		path   string
		want   bool
	}{
		{
			name:   "empty filter records all",
			filter: Filter{},
			host:   "x", path: "/y",
			want: true,
		},
		{
			name:   "include path glob",
			filter: Filter{IncludePaths: []string{"/api/**"}},
			host:   "x", path: "/api/users/1",
			want: true,
		},
		{
			name:   "non-included path dropped",
			filter: Filter{IncludePaths: []string{"/api/**"}},
			host:   "x", path: "/metrics",
			want: false,
		},
		{
			name:   "exclude wins over include",
			filter: Filter{IncludePaths: []string{"/api/**"}, ExcludePaths: []string{"/api/internal/**"}},
			host:   "x", path: "/api/internal/debug",
			want: false,
		},
		{
			name:   "host include glob",
			filter: Filter{IncludeHosts: []string{"*.example.com"}},
			host:   "api.example.com", path: "/",
			want: true,
		},
		{
			name:   "host exclude",
			filter: Filter{ExcludeHosts: []string{"*.internal"}},
			host:   "db.internal", path: "/",
			want: false,
		},
		{
			name:   "invalid pattern never matches",
			filter: Filter{IncludePaths: []string{"[broken"}},
			host:   "x", path: "/api",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.ShouldRecord(tt.host, tt.path))
		})
	}
}
