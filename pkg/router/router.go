// Package router answers synthetic requests from a service definition. It
// exposes the single matching entry point the rest of the system consumes
// (FindEndpoint) and an http.Handler that drives scenario selection,
// streaming kinds, CORS, and side effects.
package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/pmaojo/apicentric-sub001/internal/matching"
	"github.com/pmaojo/apicentric-sub001/pkg/logging"
	"github.com/pmaojo/apicentric-sub001/pkg/requestlog"
	"github.com/pmaojo/apicentric-sub001/pkg/scenario"
	"github.com/pmaojo/apicentric-sub001/pkg/service"
	"github.com/pmaojo/apicentric-sub001/pkg/store"
)

// Router serves one immutable service definition. Reloading means
// building a new Router and swapping it in; scenario counters start
// fresh on the new instance.
type Router struct {
	def      *service.ServiceDefinition
	selector *scenario.Selector
	log      *slog.Logger
	reqlog   requestlog.Sink
	state    store.KV

	// passthrough handles requests no endpoint matches when the
	// definition enables record_unknown.
	passthrough http.Handler
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(rt *Router) {
		if log != nil {
			rt.log = log
		}
	}
}

// WithRequestLog sets the sink that receives one entry per handled
// request.
func WithRequestLog(sink requestlog.Sink) Option {
	return func(rt *Router) {
		if sink != nil {
			rt.reqlog = sink
		}
	}
}

// WithState sets the key/value store side effects apply to.
func WithState(kv store.KV) Option {
	return func(rt *Router) {
		if kv != nil {
			rt.state = kv
		}
	}
}

// WithPassthrough sets the handler for unmatched requests, used when the
// definition sets record_unknown and an upstream URL.
func WithPassthrough(h http.Handler) Option {
	return func(rt *Router) { rt.passthrough = h }
}

// New builds a Router over def. The definition must not be mutated after
// this call.
func New(def *service.ServiceDefinition, opts ...Option) *Router {
	rt := &Router{
		def:      def,
		selector: scenario.NewSelector(len(def.Endpoints)),
		log:      logging.Nop(),
		reqlog:   requestlog.Nop(),
		state:    store.NewMemory(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Definition returns the definition this router serves.
func (rt *Router) Definition() *service.ServiceDefinition { return rt.def }

// FindEndpoint resolves a request to an endpoint: the first endpoint in
// declaration order whose method and templated path match, and whose
// header_match pre-filter (if any) passes, wins. Header matching is the
// endpoint's eligibility filter and runs before any scenario evaluation.
func (rt *Router) FindEndpoint(method, path string, headers map[string]string) (*service.RouteMatch, bool) {
	path, ok := rt.stripBasePath(path)
	if !ok {
		return nil, false
	}

	for i := range rt.def.Endpoints {
		ep := &rt.def.Endpoints[i]
		if !strings.EqualFold(ep.Method, method) {
			continue
		}
		params, ok := matching.MatchTemplate(ep.Path, path)
		if !ok {
			continue
		}
		if !headerMatchOK(ep.HeaderMatch, headers) {
			continue
		}
		return &service.RouteMatch{Endpoint: ep, Index: i, Params: params}, true
	}
	return nil, false
}

// stripBasePath removes the configured base path prefix. Requests outside
// the base path never match.
func (rt *Router) stripBasePath(path string) (string, bool) {
	base := rt.def.Server.BasePath
	if base == "" || base == "/" {
		return path, true
	}
	base = strings.TrimSuffix(base, "/")
	if path == base {
		return "/", true
	}
	if strings.HasPrefix(path, base+"/") {
		return path[len(base):], true
	}
	return "", false
}

func headerMatchOK(want map[string]string, headers map[string]string) bool {
	for name, expected := range want {
		got, ok := lookupHeader(headers, name)
		if !ok || got != expected {
			return false
		}
	}
	return true
}

func lookupHeader(headers map[string]string, name string) (string, bool) {
	if v, ok := headers[name]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

func flattenQuery(r *http.Request) map[string]string {
	values := r.URL.Query()
	out := make(map[string]string, len(values))
	for k := range values {
		out[k] = values.Get(k)
	}
	return out
}
