// Package service defines the declarative service model: services,
// endpoints, responses, scenarios, and parameters. Definitions are loaded
// from YAML (or imported from OpenAPI) and handed to the router immutable;
// a reload builds a fresh definition and swaps it in, never mutates one
// in place.
package service

// RecordedPathParamsHeader is the response header key under which the
// recorder stores provenance metadata: a JSON map of parameter name to the
// deduplicated list of concrete values observed for that parameter. It is
// written only into recorded YAML artifacts and must never be sent on the
// wire, neither while recording nor while replaying.
const RecordedPathParamsHeader = "x-apicentric-recorded-path-params"

// Kind distinguishes how an endpoint is served.
type Kind string

const (
	KindHTTP      Kind = "http"
	KindWebSocket Kind = "websocket"
	KindSSE       Kind = "sse"
)

// ServiceDefinition is the root document describing one mock service.
type ServiceDefinition struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Server ServerConfig `json:"server" yaml:"server"`

	// Models holds named JSON Schemas that responses may reference via
	// ResponseDefinition.Schema.
	Models map[string]any `json:"models,omitempty" yaml:"models,omitempty"`

	// Fixtures holds named seed data usable by response bodies.
	Fixtures map[string]any `json:"fixtures,omitempty" yaml:"fixtures,omitempty"`

	// Endpoints is ordered: the first endpoint that matches a request wins.
	Endpoints []EndpointDefinition `json:"endpoints" yaml:"endpoints" validate:"dive"`
}

// ServerConfig carries per-service serving options.
type ServerConfig struct {
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	BasePath string `json:"base_path,omitempty" yaml:"base_path,omitempty"`

	// UpstreamURL, when set together with RecordUnknown, is where requests
	// that match no endpoint are forwarded.
	UpstreamURL   string      `json:"upstream_url,omitempty" yaml:"upstream_url,omitempty"`
	CORS          *CORSConfig `json:"cors,omitempty" yaml:"cors,omitempty"`
	RecordUnknown bool        `json:"record_unknown,omitempty" yaml:"record_unknown,omitempty"`
}

// CORSConfig controls cross-origin response headers.
type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
	AllowedMethods []string `json:"allowed_methods,omitempty" yaml:"allowed_methods,omitempty"`
	AllowedHeaders []string `json:"allowed_headers,omitempty" yaml:"allowed_headers,omitempty"`
	MaxAge         int      `json:"max_age,omitempty" yaml:"max_age,omitempty"`
}

// EndpointDefinition describes one routable endpoint.
type EndpointDefinition struct {
	// Kind defaults to http when empty. WebSocket and SSE endpoints use the
	// same matching rules and carry a Stream config instead of bodies.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=http websocket sse"`

	Method string `json:"method" yaml:"method" validate:"required"`

	// Path is templated: literal segments plus {name} placeholders.
	Path string `json:"path" yaml:"path" validate:"required"`

	// HeaderMatch is an eligibility pre-filter: every listed header must
	// equal the request's value for the endpoint to be considered at all.
	// It is evaluated before scenario selection.
	HeaderMatch map[string]string `json:"header_match,omitempty" yaml:"header_match,omitempty"`

	Parameters []ParameterDefinition `json:"parameters,omitempty" yaml:"parameters,omitempty" validate:"dive"`

	// Responses are unconditional, keyed by status code.
	Responses map[int]ResponseDefinition `json:"responses,omitempty" yaml:"responses,omitempty"`

	// Scenarios are conditional alternatives, evaluated in order.
	Scenarios []ScenarioDefinition `json:"scenarios,omitempty" yaml:"scenarios,omitempty" validate:"dive"`

	Stream *StreamConfig `json:"stream,omitempty" yaml:"stream,omitempty"`
}

// EffectiveKind returns the endpoint kind, defaulting to http.
func (e *EndpointDefinition) EffectiveKind() Kind {
	if e.Kind == "" {
		return KindHTTP
	}
	return e.Kind
}

// ParameterLocation says where a parameter is carried.
type ParameterLocation string

const (
	InPath   ParameterLocation = "path"
	InQuery  ParameterLocation = "query"
	InHeader ParameterLocation = "header"
)

// ParameterDefinition declares a typed endpoint parameter. The recorder
// generates these automatically for inferred path parameters (param1,
// param2, ... in left-to-right order). Declared types are informational;
// they are not enforced at match time.
type ParameterDefinition struct {
	Name     string            `json:"name" yaml:"name" validate:"required"`
	In       ParameterLocation `json:"in" yaml:"in" validate:"required,oneof=path query header"`
	Type     string            `json:"type,omitempty" yaml:"type,omitempty"`
	Required bool              `json:"required,omitempty" yaml:"required,omitempty"`
}

// ScenarioStrategy governs selection among condition-free scenarios.
type ScenarioStrategy string

const (
	StrategySequential ScenarioStrategy = "sequential"
	StrategyRandom     ScenarioStrategy = "random"
)

// ScenarioDefinition is a conditionally matched alternative response.
type ScenarioDefinition struct {
	Name       string              `json:"name,omitempty" yaml:"name,omitempty"`
	Conditions *ScenarioConditions `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Response   ScenarioResponse    `json:"response" yaml:"response"`
	Strategy   ScenarioStrategy    `json:"strategy,omitempty" yaml:"strategy,omitempty" validate:"omitempty,oneof=sequential random"`
}

// ScenarioConditions must all hold for the scenario to match.
type ScenarioConditions struct {
	// Query and Headers compare for string equality against the request.
	Query   map[string]string `json:"query,omitempty" yaml:"query,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Body maps field paths (dotted or JSONPath) to expected values which
	// must deep-equal the corresponding field of the request's JSON body.
	Body map[string]any `json:"body,omitempty" yaml:"body,omitempty"`

	// When is an optional boolean expression over query, headers, body and
	// params, e.g. `query.page == "2" && body.amount > 100`.
	When string `json:"when,omitempty" yaml:"when,omitempty"`
}

// Empty reports whether no condition is declared at all.
func (c *ScenarioConditions) Empty() bool {
	return c == nil ||
		(len(c.Query) == 0 && len(c.Headers) == 0 && len(c.Body) == 0 && c.When == "")
}

// ScenarioResponse pairs a status code with a response definition.
type ScenarioResponse struct {
	Status             int `json:"status" yaml:"status"`
	ResponseDefinition `yaml:",inline"`
}

// ResponseDefinition describes one response body.
type ResponseDefinition struct {
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Body        string `json:"body,omitempty" yaml:"body,omitempty"`

	// Schema names an entry of ServiceDefinition.Models the body conforms to.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`

	// Script is a path to an external response script, resolved by the host
	// application; the engine only carries it.
	Script string `json:"script,omitempty" yaml:"script,omitempty"`

	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	SideEffects []SideEffect `json:"side_effects,omitempty" yaml:"side_effects,omitempty"`
}

// SideEffect mutates engine state when its response is served.
// Supported actions: set, delete, increment.
type SideEffect struct {
	Action string `json:"action" yaml:"action"`
	Target string `json:"target" yaml:"target"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
}

// StreamConfig configures WebSocket and SSE endpoints: a burst of initial
// messages on connect, then an optional periodic message.
type StreamConfig struct {
	Initial  []StreamMessage  `json:"initial,omitempty" yaml:"initial,omitempty"`
	Periodic *PeriodicMessage `json:"periodic,omitempty" yaml:"periodic,omitempty"`
}

// StreamMessage is one streamed payload. Event is only meaningful for SSE.
type StreamMessage struct {
	Event string `json:"event,omitempty" yaml:"event,omitempty"`
	Data  string `json:"data" yaml:"data"`
}

// PeriodicMessage repeats Data every IntervalMs milliseconds until the
// client goes away.
type PeriodicMessage struct {
	IntervalMs int    `json:"interval_ms" yaml:"interval_ms"`
	Event      string `json:"event,omitempty" yaml:"event,omitempty"`
	Data       string `json:"data" yaml:"data"`
}

// PathParameters maps placeholder names to the concrete segment values
// bound during matching. Request-scoped; never persisted.
type PathParameters map[string]string

// RouteMatch bundles a matched endpoint with its declaration index and the
// path parameters extracted from the request. Request-scoped.
type RouteMatch struct {
	Endpoint *EndpointDefinition
	Index    int
	Params   PathParameters
}
