// Package recorder implements the traffic-recording reverse proxy: it
// transparently forwards requests to a real upstream, relays the real
// responses, and incrementally builds a generalized service definition
// from what it observes. One call to Record is one recording session,
// from bind to shutdown-triggered YAML flush.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/pmaojo/apicentric-sub001/pkg/logging"
	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

// OutputFile is the name of the YAML artifact written under OutputDir.
const OutputFile = "recorded_service.yaml"

// defaultServiceName identifies recordings in the output definition.
const defaultServiceName = "recorded-service"

// Options configures one recording session.
type Options struct {
	// Target is the upstream base URL traffic is forwarded to. Required.
	Target *url.URL

	// OutputDir is where the recorded YAML is written on shutdown. Required.
	OutputDir string

	// Port to listen on (0.0.0.0). Required.
	Port int

	// Filter optionally limits which exchanges are recorded.
	Filter *Filter

	// ServiceName overrides the name of the recorded definition.
	ServiceName string

	// ShutdownTimeout bounds how long in-flight requests may take to
	// finish after cancellation. Defaults to 10s.
	ShutdownTimeout time.Duration

	Logger *slog.Logger
}

// Record runs a recording session until ctx is cancelled. It binds the
// listener (failure is fatal and reported before any connection is
// accepted), serves connections concurrently, then stops accepting,
// waits for in-flight requests, and writes the accumulated definition to
// <OutputDir>/recorded_service.yaml. A failed flush is returned as the
// session's error so partial recordings are never silently discarded.
func Record(ctx context.Context, opts Options) error {
	if opts.Target == nil {
		return errors.New("recorder: target URL is required")
	}
	if opts.OutputDir == "" {
		return errors.New("recorder: output directory is required")
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	name := opts.ServiceName
	if name == "" {
		name = defaultServiceName
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	store := NewSessionStore(name)
	handler := NewForwarder(opts.Target, store, opts.Filter, log)

	addr := fmt.Sprintf("0.0.0.0:%d", opts.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("recorder: bind %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	log.Info("recording started",
		"addr", listener.Addr().String(),
		"target", opts.Target.String(),
		"output", filepath.Join(opts.OutputDir, OutputFile))

	select {
	case err := <-serveErr:
		// Serve never returns nil; any exit before cancellation is fatal.
		_ = listener.Close()
		return fmt.Errorf("recorder: serve: %w", err)
	case <-ctx.Done():
	}

	// Stop accepting; in-flight requests finish naturally within the
	// shutdown budget.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown did not complete cleanly", "error", err)
	}
	<-serveErr // Serve has returned http.ErrServerClosed by now

	def := store.Definition(service.ServerConfig{Port: opts.Port, UpstreamURL: opts.Target.String()})
	outPath := filepath.Join(opts.OutputDir, OutputFile)
	if err := service.Save(def, outPath); err != nil {
		return fmt.Errorf("recorder: flush recording: %w", err)
	}

	log.Info("recording flushed", "endpoints", len(def.Endpoints), "file", outPath)
	return nil
}
