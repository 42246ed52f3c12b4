package router

import (
	"io"
	"net/http"
	"time"

	"github.com/pmaojo/apicentric-sub001/pkg/requestlog"
	"github.com/pmaojo/apicentric-sub001/pkg/scenario"
	"github.com/pmaojo/apicentric-sub001/pkg/service"
	"github.com/pmaojo/apicentric-sub001/pkg/stream"
)

// maxBodySize caps how much of a request body is buffered for condition
// evaluation.
const maxBodySize = 10 * 1024 * 1024

// ServeHTTP implements http.Handler over the service definition.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if rt.applyCORS(w, r) {
		rt.logRequest(r, http.StatusNoContent, start, "")
		return
	}

	match, ok := rt.FindEndpoint(r.Method, r.URL.Path, flattenHeader(r.Header))
	if !ok {
		rt.handleUnmatched(w, r, start)
		return
	}

	switch match.Endpoint.EffectiveKind() {
	case service.KindWebSocket:
		err := stream.ServeWebSocket(w, r, match.Endpoint.Stream, rt.log)
		status := http.StatusSwitchingProtocols
		errMsg := ""
		if err != nil {
			status, errMsg = http.StatusInternalServerError, err.Error()
		}
		rt.logRequest(r, status, start, errMsg)
	case service.KindSSE:
		stream.ServeSSE(w, r, match.Endpoint.Stream)
		rt.logRequest(r, http.StatusOK, start, "")
	case service.KindHTTP:
		rt.serveMock(w, r, match, start)
	default:
		// Unknown kinds are a definition bug, not a request error; answer
		// rather than crash.
		http.Error(w, "unsupported endpoint kind", http.StatusNotImplemented)
		rt.logRequest(r, http.StatusNotImplemented, start, "unsupported endpoint kind")
	}
}

func (rt *Router) serveMock(w http.ResponseWriter, r *http.Request, match *service.RouteMatch, start time.Time) {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			rt.logRequest(r, http.StatusBadRequest, start, "unreadable body")
			return
		}
	}

	outcome := rt.selector.Select(match.Index, match.Endpoint, scenario.Request{
		Query:   flattenQuery(r),
		Headers: flattenHeader(r.Header),
		Body:    body,
		Params:  match.Params,
	})

	rt.applySideEffects(outcome.Response.SideEffects)

	if outcome.Response.ContentType != "" {
		w.Header().Set("Content-Type", outcome.Response.ContentType)
	}
	for name, value := range outcome.Response.Headers {
		// Provenance metadata stays in the artifact; it is never replayed.
		if name == service.RecordedPathParamsHeader {
			continue
		}
		w.Header().Set(name, value)
	}
	w.WriteHeader(outcome.Status)
	_, _ = w.Write([]byte(outcome.Response.Body))

	rt.log.Debug("served mock response",
		"method", r.Method,
		"path", r.URL.Path,
		"status", outcome.Status,
		"scenario", outcome.Scenario)
	rt.logRequest(r, outcome.Status, start, "")
}

// handleUnmatched forwards to the upstream when the definition asks for
// it, otherwise answers 404.
func (rt *Router) handleUnmatched(w http.ResponseWriter, r *http.Request, start time.Time) {
	if rt.def.Server.RecordUnknown && rt.passthrough != nil {
		sw := &statusWriter{ResponseWriter: w}
		rt.passthrough.ServeHTTP(sw, r)
		rt.logRequest(r, sw.Status(), start, "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":"no endpoint matches this request"}`))
	rt.logRequest(r, http.StatusNotFound, start, "")
}

// applySideEffects mutates engine state as the response prescribes.
// Failures are logged and otherwise ignored; a broken side effect must
// not break the response.
func (rt *Router) applySideEffects(effects []service.SideEffect) {
	for _, fx := range effects {
		var err error
		switch fx.Action {
		case "set":
			err = rt.state.Set(fx.Target, fx.Value)
		case "delete":
			err = rt.state.Delete(fx.Target)
		case "increment":
			err = incrementKey(rt.state, fx.Target)
		default:
			rt.log.Warn("unknown side effect action", "action", fx.Action, "target", fx.Target)
			continue
		}
		if err != nil {
			rt.log.Warn("side effect failed", "action", fx.Action, "target", fx.Target, "error", err)
		}
	}
}

// statusWriter captures the status code a wrapped handler writes.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(p)
}

// Status returns the written status code, defaulting to 200 when the
// handler wrote a body without an explicit header.
func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (rt *Router) logRequest(r *http.Request, status int, start time.Time, errMsg string) {
	e := requestlog.NewEntry(rt.def.Name, r.Method, r.URL.Path, status, time.Since(start))
	e.Error = errMsg
	rt.reqlog.Log(e)
}
