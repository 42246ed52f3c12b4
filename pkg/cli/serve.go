package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmaojo/apicentric-sub001/pkg/recorder"
	"github.com/pmaojo/apicentric-sub001/pkg/requestlog"
	"github.com/pmaojo/apicentric-sub001/pkg/router"
	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

var (
	serveConfig string
	servePort   int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a mock API from a service definition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		def, err := service.Load(serveConfig)
		if err != nil {
			return err
		}

		port := def.Server.Port
		if servePort != 0 {
			port = servePort
		}
		if port == 0 {
			port = 8080
		}

		logs := requestlog.NewBroadcaster(256)
		opts := []router.Option{
			router.WithLogger(log),
			router.WithRequestLog(logs),
		}

		// Unknown requests are forwarded upstream when the definition
		// asks for it; the forwarder records them into a throwaway
		// session so the same handler serves both purposes.
		if def.Server.RecordUnknown && def.Server.UpstreamURL != "" {
			upstream, err := url.Parse(def.Server.UpstreamURL)
			if err != nil {
				return fmt.Errorf("invalid upstream_url: %w", err)
			}
			passStore := recorder.NewSessionStore(def.Name + "-unknown")
			opts = append(opts, router.WithPassthrough(
				recorder.NewForwarder(upstream, passStore, nil, log)))
		}

		rt := router.New(def, opts...)

		entries, cancelLogs := logs.Subscribe()
		defer cancelLogs()
		go func() {
			for e := range entries {
				log.Info("request",
					"service", e.Service,
					"method", e.Method,
					"path", e.Path,
					"status", e.Status,
					"duration_ms", e.DurationMs)
			}
		}()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           rt,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serveErr := make(chan error, 1)
		go func() { serveErr <- srv.ListenAndServe() }()
		log.Info("mock service listening", "service", def.Name, "port", port)

		select {
		case err := <-serveErr:
			return fmt.Errorf("serve: %w", err)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "Service definition YAML (required)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Override the definition's port")
	_ = serveCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(serveCmd)
}
