package recorder

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/pmaojo/apicentric-sub001/internal/matching"
	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

// Exchange is one observed request/response pair, already fully buffered.
type Exchange struct {
	Method      string
	Path        string
	Status      int
	ContentType string
	Headers     map[string]string
	Body        []byte
}

// SessionStore accumulates generalized endpoints for one recording
// session. It is injected per session, never shared between sessions, and
// is the only state shared across connection goroutines; one mutex guards
// the read-modify-write of Upsert. Callers must do all network I/O before
// calling in.
type SessionStore struct {
	mu        sync.Mutex
	name      string
	endpoints map[string]*recordedEndpoint
	order     []string
}

type recordedEndpoint struct {
	def service.EndpointDefinition

	// observed holds, per parameter name, every concrete value seen for
	// that parameter across all requests collapsed into this template, in
	// first-seen order with duplicates dropped.
	observed map[string][]string
}

// NewSessionStore creates an empty store for a session whose output
// definition will carry the given service name.
func NewSessionStore(name string) *SessionStore {
	return &SessionStore{
		name:      name,
		endpoints: make(map[string]*recordedEndpoint),
	}
}

// Upsert records an exchange under its generalized path. The first
// occurrence of a (method, template) key creates the endpoint with the
// inferred parameters; later occurrences merge parameter values into the
// provenance metadata and overwrite the response for the exchange's
// status code (last writer wins).
func (s *SessionStore) Upsert(gen matching.Generalization, exch Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := exch.Method + " " + gen.Template
	ep, ok := s.endpoints[key]
	if !ok {
		ep = &recordedEndpoint{
			def: service.EndpointDefinition{
				Kind:       service.KindHTTP,
				Method:     exch.Method,
				Path:       gen.Template,
				Parameters: gen.Parameters,
				Responses:  make(map[int]service.ResponseDefinition),
			},
			observed: make(map[string][]string),
		}
		s.endpoints[key] = ep
		s.order = append(s.order, key)
	}

	for name, value := range gen.Values {
		if !contains(ep.observed[name], value) {
			ep.observed[name] = append(ep.observed[name], value)
		}
	}

	ep.def.Responses[exch.Status] = service.ResponseDefinition{
		ContentType: exch.ContentType,
		Body:        string(exch.Body),
		Headers:     exch.Headers,
	}
}

// Len returns the number of distinct (method, template) entries.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.endpoints)
}

// Definition freezes the accumulated endpoints into a ServiceDefinition.
// Provenance metadata is emitted here, as the hidden header on each
// status-keyed response; it exists only in the artifact and is never sent
// on the wire.
func (s *SessionStore) Definition(server service.ServerConfig) *service.ServiceDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()

	def := &service.ServiceDefinition{
		Name:   s.name,
		Server: server,
	}

	for _, key := range s.order {
		ep := s.endpoints[key]
		out := ep.def
		out.Responses = make(map[int]service.ResponseDefinition, len(ep.def.Responses))

		provenance := provenanceJSON(ep.observed)

		statuses := make([]int, 0, len(ep.def.Responses))
		for st := range ep.def.Responses {
			statuses = append(statuses, st)
		}
		sort.Ints(statuses)

		for _, st := range statuses {
			resp := ep.def.Responses[st]
			if provenance != "" {
				headers := make(map[string]string, len(resp.Headers)+1)
				for k, v := range resp.Headers {
					headers[k] = v
				}
				headers[service.RecordedPathParamsHeader] = provenance
				resp.Headers = headers
			}
			out.Responses[st] = resp
		}
		def.Endpoints = append(def.Endpoints, out)
	}
	return def
}

func provenanceJSON(observed map[string][]string) string {
	if len(observed) == 0 {
		return ""
	}
	data, err := json.Marshal(observed)
	if err != nil {
		return ""
	}
	return string(data)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
