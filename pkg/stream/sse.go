package stream

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

// ServeSSE writes cfg as a text/event-stream response. Initial messages
// are flushed immediately; with a periodic message configured the stream
// stays open until the client disconnects, otherwise it ends after the
// initial burst.
func ServeSSE(w http.ResponseWriter, r *http.Request, cfg *service.StreamConfig) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if cfg == nil {
		return
	}

	for _, msg := range cfg.Initial {
		writeEvent(w, msg.Event, msg.Data)
	}
	flusher.Flush()

	p := cfg.Periodic
	if p == nil || p.IntervalMs <= 0 {
		return
	}

	ticker := time.NewTicker(time.Duration(p.IntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			writeEvent(w, p.Event, p.Data)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event, data string) {
	if event != "" {
		fmt.Fprintf(w, "event: %s\n", event)
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
