// Package matching implements the path templater: the shared heuristic
// core that generalizes concrete request paths into endpoint templates and
// matches concrete paths against templated ones.
package matching

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

// Generalization is the result of converting a concrete path into a
// template.
type Generalization struct {
	// Template is the path with dynamic segments replaced by {param1},
	// {param2}, ... in left-to-right order.
	Template string

	// Parameters describes one inferred path parameter per placeholder.
	Parameters []service.ParameterDefinition

	// Values maps each assigned parameter name to the concrete segment
	// value it replaced.
	Values map[string]string
}

// Generalize converts a concrete request path into a template. It is pure
// and deterministic: two paths with the same literal/dynamic segment shape
// always produce identical templates and parameter names. The root path
// "/" is returned unchanged with no parameters.
func Generalize(path string) Generalization {
	if path == "" || path == "/" {
		return Generalization{Template: path, Values: map[string]string{}}
	}

	segments := strings.Split(path, "/")
	out := make([]string, len(segments))
	gen := Generalization{Values: make(map[string]string)}

	n := 0
	for i, seg := range segments {
		if seg == "" || !isDynamicSegment(seg) {
			out[i] = seg
			continue
		}
		n++
		name := fmt.Sprintf("param%d", n)
		out[i] = "{" + name + "}"
		gen.Values[name] = seg
		gen.Parameters = append(gen.Parameters, service.ParameterDefinition{
			Name:     name,
			In:       service.InPath,
			Type:     "string",
			Required: true,
		})
	}

	gen.Template = strings.Join(out, "/")
	return gen
}

// isDynamicSegment classifies a path segment as a value position rather
// than a literal. A segment is dynamic when it is all digits, parses as a
// UUID, is a long hex string (16+ chars), or looks like an opaque
// identifier: at least one digit and one letter, only alphanumerics and
// -/_/~, and at least 4 chars long.
func isDynamicSegment(seg string) bool {
	if isAllDigits(seg) {
		return true
	}
	if _, err := uuid.Parse(seg); err == nil {
		return true
	}
	if len(seg) >= 16 && isAllHex(seg) {
		return true
	}
	return looksLikeIdentifier(seg)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isAllHex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range []byte(s) {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func looksLikeIdentifier(s string) bool {
	if len(s) < 4 {
		return false
	}
	var hasDigit, hasLetter bool
	for _, c := range []byte(s) {
		switch {
		case c >= '0' && c <= '9':
			hasDigit = true
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			hasLetter = true
		case c == '-' || c == '_' || c == '~':
		default:
			return false
		}
	}
	return hasDigit && hasLetter
}
