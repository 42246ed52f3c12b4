// Package runner lets an external harness (contract testing, CI) drive
// the mock engine as a black box: start a service from a definition file,
// fire requests at it, stop it.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pmaojo/apicentric-sub001/pkg/logging"
	"github.com/pmaojo/apicentric-sub001/pkg/router"
	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

// Request is one synthetic request to execute against a running handle.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    []byte
}

// Response is the engine's answer.
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// Handle refers to one running service instance.
type Handle struct {
	addr   string
	server *http.Server
	rt     *router.Router
}

// Addr returns the host:port the instance listens on.
func (h *Handle) Addr() string { return h.addr }

// Runner starts, drives and stops mock service instances.
type Runner interface {
	Start(path string) (*Handle, error)
	ExecuteRequest(h *Handle, req Request) (*Response, error)
	Stop(h *Handle) error
}

// Local runs services in-process on loopback listeners.
type Local struct {
	log    *slog.Logger
	client *http.Client
}

// LocalOption configures a Local runner.
type LocalOption func(*Local)

// WithLogger sets the operational logger for started services.
func WithLogger(log *slog.Logger) LocalOption {
	return func(l *Local) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLocal creates a Local runner.
func NewLocal(opts ...LocalOption) *Local {
	l := &Local{
		log:    logging.Nop(),
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start loads the definition at path and serves it on an ephemeral
// loopback port.
func (l *Local) Start(path string) (*Handle, error) {
	def, err := service.Load(path)
	if err != nil {
		return nil, err
	}

	rt := router.New(def, router.WithLogger(l.log))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("runner: listen: %w", err)
	}

	srv := &http.Server{Handler: rt, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(listener) }()

	l.log.Info("mock service started", "service", def.Name, "addr", listener.Addr().String())
	return &Handle{addr: listener.Addr().String(), server: srv, rt: rt}, nil
}

// ExecuteRequest fires req at the running instance and buffers the
// response.
func (l *Local) ExecuteRequest(h *Handle, req Request) (*Response, error) {
	httpReq, err := http.NewRequest(req.Method, "http://"+h.addr+req.Path, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("runner: build request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("runner: execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("runner: read response: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return &Response{Status: resp.StatusCode, Headers: headers, Body: body}, nil
}

// Stop shuts the instance down, letting in-flight requests finish.
func (l *Local) Stop(h *Handle) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return h.server.Shutdown(ctx)
}
