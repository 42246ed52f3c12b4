package matching

import (
	"strings"

	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

// MatchTemplate matches a concrete path against a templated one. It
// returns the bound path parameters and true on a match, or nil and false
// otherwise.
//
// Both paths are split on "/"; a differing segment count never matches. A
// literal template segment must equal the concrete segment exactly
// (case-sensitive); a {name} segment binds name to the concrete segment
// unconditionally. Declared parameter types are not checked here.
func MatchTemplate(template, path string) (service.PathParameters, bool) {
	tSegs := strings.Split(strings.Trim(template, "/"), "/")
	pSegs := strings.Split(strings.Trim(path, "/"), "/")

	if len(tSegs) != len(pSegs) {
		return nil, false
	}

	params := make(service.PathParameters)
	for i, tSeg := range tSegs {
		if name, ok := placeholderName(tSeg); ok {
			params[name] = pSegs[i]
			continue
		}
		if tSeg != pSegs[i] {
			return nil, false
		}
	}
	return params, true
}

// placeholderName extracts the name of a {name} segment.
func placeholderName(seg string) (string, bool) {
	if len(seg) > 2 && strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}
