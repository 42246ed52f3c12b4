// Package stream serves the streaming endpoint kinds: WebSocket and
// Server-Sent Events. Both replay a stream config, a burst of initial
// messages followed by an optional periodic message, until the client
// disconnects.
package stream

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	ws "github.com/coder/websocket"

	"github.com/pmaojo/apicentric-sub001/pkg/logging"
	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

// ServeWebSocket upgrades the request and replays cfg over the
// connection. A nil cfg accepts the connection and closes it cleanly. The
// returned error reports upgrade failures only; mid-stream disconnects
// are normal client behavior, not errors.
func ServeWebSocket(w http.ResponseWriter, r *http.Request, cfg *service.StreamConfig, log *slog.Logger) error {
	if log == nil {
		log = logging.Nop()
	}

	conn, err := ws.Accept(w, r, &ws.AcceptOptions{
		// Mock endpoints accept any origin.
		InsecureSkipVerify: true,
	})
	if err != nil {
		return err
	}
	defer conn.CloseNow()

	ctx := r.Context()
	if cfg != nil {
		for _, msg := range cfg.Initial {
			if err := conn.Write(ctx, ws.MessageText, []byte(msg.Data)); err != nil {
				log.Debug("websocket client went away during initial burst", "error", err)
				return nil
			}
		}
		if cfg.Periodic != nil && cfg.Periodic.IntervalMs > 0 {
			runPeriodicWS(ctx, conn, cfg.Periodic, log)
			return nil
		}
	}

	_ = conn.Close(ws.StatusNormalClosure, "")
	return nil
}

func runPeriodicWS(ctx context.Context, conn *ws.Conn, p *service.PeriodicMessage, log *slog.Logger) {
	ticker := time.NewTicker(time.Duration(p.IntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.Write(ctx, ws.MessageText, []byte(p.Data)); err != nil {
				log.Debug("websocket client went away", "error", err)
				return
			}
		}
	}
}
