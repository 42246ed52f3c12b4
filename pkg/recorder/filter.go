package recorder

import "github.com/bmatcuk/doublestar/v4"

// Filter decides which observed exchanges are recorded. Filtered-out
// traffic is still forwarded; it just leaves no trace in the session
// store. Patterns are doublestar globs ("api.*.example.com",
// "/internal/**"). A nil Filter records everything.
type Filter struct {
	// IncludeHosts limits recording to matching hosts; empty means all.
	IncludeHosts []string
	// ExcludeHosts drops matching hosts. Exclusion wins over inclusion.
	ExcludeHosts []string

	// IncludePaths limits recording to matching paths; empty means all.
	IncludePaths []string
	// ExcludePaths drops matching paths. Exclusion wins over inclusion.
	ExcludePaths []string
}

// ShouldRecord reports whether an exchange for host and path should be
// stored.
func (f *Filter) ShouldRecord(host, path string) bool {
	if f == nil {
		return true
	}
	if matchesAny(f.ExcludeHosts, host) || matchesAny(f.ExcludePaths, path) {
		return false
	}
	if len(f.IncludeHosts) > 0 && !matchesAny(f.IncludeHosts, host) {
		return false
	}
	if len(f.IncludePaths) > 0 && !matchesAny(f.IncludePaths, path) {
		return false
	}
	return true
}

func matchesAny(patterns []string, s string) bool {
	for _, p := range patterns {
		// Invalid patterns simply never match.
		if ok, err := doublestar.Match(p, s); err == nil && ok {
			return true
		}
	}
	return false
}
