// Package scenario picks a response for a matched endpoint: conditional
// scenarios first, then condition-free scenarios under their declared
// strategy, then the endpoint's status-keyed responses, and finally a
// built-in 404.
package scenario

import (
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

// Outcome is the selected response.
type Outcome struct {
	Status   int
	Response service.ResponseDefinition

	// Scenario is the matched scenario's name, or "" when the outcome came
	// from the responses map or the not-found fallback.
	Scenario string
}

// Selector evaluates scenarios for one service instance. The sequential
// counters live here, one slot per endpoint, so isolated instances can be
// constructed freely in tests and are reset by building a new Selector on
// reload. The counters are the selector's only mutable state.
type Selector struct {
	counters []atomic.Uint64
	exprs    *exprCache

	// randIntn is swappable in tests; defaults to math/rand.
	randIntn func(n int) int
	randMu   sync.Mutex
}

// NewSelector sizes the counter arena for a definition's endpoints.
func NewSelector(numEndpoints int) *Selector {
	return &Selector{
		counters: make([]atomic.Uint64, numEndpoints),
		exprs:    newExprCache(),
		randIntn: rand.Intn,
	}
}

// Select picks the response for a request matched to the endpoint at
// declaration index idx.
func (s *Selector) Select(idx int, ep *service.EndpointDefinition, req Request) Outcome {
	body := req.parsedBody()

	var free []*service.ScenarioDefinition
	for i := range ep.Scenarios {
		sc := &ep.Scenarios[i]
		if sc.Conditions.Empty() {
			free = append(free, sc)
			continue
		}
		if s.conditionsMatch(sc.Conditions, req, body) {
			return outcomeFor(sc)
		}
	}

	if len(free) > 0 {
		return s.pickFree(idx, free)
	}

	if len(ep.Responses) > 0 {
		return defaultResponse(ep)
	}

	return NotFound()
}

// conditionsMatch requires every declared condition to hold.
func (s *Selector) conditionsMatch(c *service.ScenarioConditions, req Request, body any) bool {
	for k, want := range c.Query {
		if req.Query[k] != want {
			return false
		}
	}
	for k, want := range c.Headers {
		got, ok := req.header(k)
		if !ok || got != want {
			return false
		}
	}
	for path, want := range c.Body {
		if !matchBodyField(path, want, body) {
			return false
		}
	}
	if c.When != "" {
		env := map[string]any{
			"query":   req.Query,
			"headers": req.Headers,
			"body":    body,
			"params":  req.Params,
		}
		if !s.exprs.eval(c.When, env) {
			return false
		}
	}
	return true
}

// pickFree chooses among condition-free scenarios. A declared strategy on
// any of them governs the whole group; without one the first wins.
func (s *Selector) pickFree(idx int, free []*service.ScenarioDefinition) Outcome {
	strategy := service.ScenarioStrategy("")
	for _, sc := range free {
		if sc.Strategy != "" {
			strategy = sc.Strategy
			break
		}
	}

	switch strategy {
	case service.StrategySequential:
		n := s.counters[idx].Add(1) - 1
		return outcomeFor(free[n%uint64(len(free))])
	case service.StrategyRandom:
		s.randMu.Lock()
		i := s.randIntn(len(free))
		s.randMu.Unlock()
		return outcomeFor(free[i])
	default:
		return outcomeFor(free[0])
	}
}

func outcomeFor(sc *service.ScenarioDefinition) Outcome {
	status := sc.Response.Status
	if status == 0 {
		status = 200
	}
	return Outcome{
		Status:   status,
		Response: sc.Response.ResponseDefinition,
		Scenario: sc.Name,
	}
}

// defaultResponse falls back to the status-keyed map: 200 when present,
// otherwise the lowest declared status.
func defaultResponse(ep *service.EndpointDefinition) Outcome {
	if resp, ok := ep.Responses[200]; ok {
		return Outcome{Status: 200, Response: resp}
	}
	statuses := make([]int, 0, len(ep.Responses))
	for st := range ep.Responses {
		statuses = append(statuses, st)
	}
	sort.Ints(statuses)
	st := statuses[0]
	return Outcome{Status: st, Response: ep.Responses[st]}
}

// NotFound is the terminal fallback when neither a scenario nor a
// status-keyed response applies.
func NotFound() Outcome {
	return Outcome{
		Status: 404,
		Response: service.ResponseDefinition{
			ContentType: "application/json",
			Body:        `{"error":"no matching response"}`,
		},
	}
}
