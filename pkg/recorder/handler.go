package recorder

import (
	"bytes"
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pmaojo/apicentric-sub001/internal/matching"
	"github.com/pmaojo/apicentric-sub001/pkg/logging"
)

const (
	// maxBodySize caps how much of a request or response body is buffered.
	maxBodySize = 10 * 1024 * 1024

	defaultTimeout = 30 * time.Second
)

// Forwarder forwards every inbound request to a fixed upstream target,
// relays the real response verbatim, and concurrently feeds the session
// store with generalized endpoints.
type Forwarder struct {
	target *url.URL
	client *http.Client
	store  *SessionStore
	filter *Filter
	log    *slog.Logger
}

// NewForwarder builds a forwarding handler for target. The store receives
// one upsert per successfully forwarded exchange that passes the filter.
func NewForwarder(target *url.URL, store *SessionStore, filter *Filter, log *slog.Logger) *Forwarder {
	if log == nil {
		log = logging.Nop()
	}
	return &Forwarder{
		target: target,
		client: newRecordingClient(defaultTimeout),
		store:  store,
		filter: filter,
		log:    log,
	}
}

// newRecordingClient builds the outbound client used while recording.
// Upstream certificate verification is deliberately skipped so HTTPS
// targets can be recorded without a valid trust chain. This relaxation is
// confined to recording; replay-side clients verify normally.
func newRecordingClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		//nolint:gosec // recording-mode trust relaxation, see above
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// ServeHTTP implements the per-request forwarding algorithm. Every error
// is contained here and translated into a client-visible status; nothing
// on this path panics or kills the process.
func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var reqBody []byte
	if r.Body != nil {
		var err error
		reqBody, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			f.log.Warn("failed to buffer request body", "method", r.Method, "path", r.URL.Path, "error", err)
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		_ = r.Body.Close()
	}

	resp, err := f.forward(r, reqBody)
	if err != nil {
		f.log.Warn("upstream request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "upstream request failed", http.StatusBadGateway)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	// Read one byte past the cap so truncation is detected rather than
	// silently relaying and recording a cut-off body.
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		f.log.Warn("failed to read upstream response", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "failed to read upstream response", http.StatusBadGateway)
		return
	}
	if len(respBody) > maxBodySize {
		f.log.Warn("upstream response exceeds body limit", "method", r.Method, "path", r.URL.Path, "limit", maxBodySize)
		http.Error(w, "upstream response too large", http.StatusBadGateway)
		return
	}

	if f.filter.ShouldRecord(f.target.Host, r.URL.Path) {
		// All network I/O is done; the upsert itself is the only work that
		// happens under the store lock.
		gen := matching.Generalize(r.URL.Path)
		f.store.Upsert(gen, Exchange{
			Method:      r.Method,
			Path:        r.URL.Path,
			Status:      resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Headers:     flattenHeaders(resp.Header),
			Body:        respBody,
		})
		f.log.Debug("recorded exchange",
			"method", r.Method,
			"path", r.URL.Path,
			"template", gen.Template,
			"status", resp.StatusCode,
			"duration", time.Since(start))
	}

	relayHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(respBody)
}

// forward rewrites the inbound request against the target origin and
// issues it upstream.
func (f *Forwarder) forward(r *http.Request, body []byte) (*http.Response, error) {
	out := *f.target
	out.Path = joinPath(f.target.Path, r.URL.Path)
	out.RawQuery = r.URL.RawQuery

	req, err := http.NewRequestWithContext(r.Context(), r.Method, out.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	copyHeaders(req.Header, r.Header)
	removeHopByHopHeaders(req.Header)
	req.Header.Set("X-Forwarded-For", r.RemoteAddr)
	req.Header.Set("X-Forwarded-Host", r.Host)

	return f.client.Do(req)
}

func joinPath(base, path string) string {
	switch {
	case base == "" || base == "/":
		return path
	case path == "" || path == "/":
		return base
	default:
		return strings.TrimSuffix(base, "/") + path
	}
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

func copyHeaders(dst, src http.Header) {
	for k, values := range src {
		for _, v := range values {
			dst.Add(k, v)
		}
	}
}

// relayHeaders copies upstream response headers to the client, dropping
// hop-by-hop headers.
func relayHeaders(dst, src http.Header) {
	copyHeaders(dst, src)
	removeHopByHopHeaders(dst)
}

var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"TE",
	"Trailers",
	"Transfer-Encoding",
	"Upgrade",
}

func removeHopByHopHeaders(h http.Header) {
	for _, name := range hopByHopHeaders {
		h.Del(name)
	}
}
