package scenario

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/ohler55/ojg/jp"
)

// Request is the request-scoped view the selector evaluates conditions
// against. Header keys are matched case-insensitively.
type Request struct {
	Query   map[string]string
	Headers map[string]string
	Body    []byte
	Params  map[string]string
}

func (r Request) header(name string) (string, bool) {
	if v, ok := r.Headers[name]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// parsedBody decodes the JSON body once per selection. A missing or
// non-JSON body yields nil, which fails any body condition.
func (r Request) parsedBody() any {
	if len(r.Body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil
	}
	return v
}

// exprCache compiles `when` expressions once per source string.
type exprCache struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

func newExprCache() *exprCache {
	return &exprCache{programs: make(map[string]*vm.Program)}
}

func (c *exprCache) eval(src string, env map[string]any) bool {
	c.mu.RLock()
	program, ok := c.programs[src]
	c.mu.RUnlock()

	if !ok {
		var err error
		program, err = expr.Compile(src, expr.AllowUndefinedVariables())
		if err != nil {
			return false
		}
		c.mu.Lock()
		c.programs[src] = program
		c.mu.Unlock()
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return false
	}
	b, ok := out.(bool)
	return ok && b
}

// matchBodyField checks that the JSON field at path deep-equals want.
// Paths are JSONPath; a leading "$." may be omitted ("card.status" and
// "$.card.status" are equivalent).
func matchBodyField(path string, want any, body any) bool {
	if body == nil {
		return false
	}
	if !strings.HasPrefix(path, "$") {
		path = "$." + path
	}
	x, err := jp.ParseString(path)
	if err != nil {
		return false
	}
	for _, got := range x.Get(body) {
		if reflect.DeepEqual(jsonNormalize(got), jsonNormalize(want)) {
			return true
		}
	}
	return false
}

// jsonNormalize round-trips a value through JSON so that YAML-decoded
// expectations (int, map[string]any) and JSON-decoded body fragments
// (float64) compare equal.
func jsonNormalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
