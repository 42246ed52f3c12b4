// Package requestlog carries structured request-log entries from the
// engine to whoever wants them (CLIs, GUIs, cloud forwarders) over a
// broadcast channel. The engine only depends on the Sink interface.
package requestlog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry describes one handled request.
type Entry struct {
	// ID is a unique identifier for the entry.
	ID string `json:"id"`

	// Time is when the request was received.
	Time time.Time `json:"time"`

	// Service is the name of the service definition that handled it.
	Service string `json:"service"`

	Method string `json:"method"`
	Path   string `json:"path"`
	Status int    `json:"status"`

	// DurationMs is the total handling time in milliseconds.
	DurationMs int64 `json:"durationMs"`

	// Error holds a message when handling failed.
	Error string `json:"error,omitempty"`
}

// Sink accepts log entries. Implementations must not block.
type Sink interface {
	Log(e Entry)
}

// NewEntry stamps an entry with an ID and timestamp.
func NewEntry(service, method, path string, status int, d time.Duration) Entry {
	return Entry{
		ID:         uuid.NewString(),
		Time:       time.Now(),
		Service:    service,
		Method:     method,
		Path:       path,
		Status:     status,
		DurationMs: d.Milliseconds(),
	}
}

// Broadcaster fans entries out to subscribers. Sends never block: a
// subscriber whose channel is full misses entries rather than stalling
// the request path.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan Entry
	next int
	buf  int
}

// NewBroadcaster creates a Broadcaster whose subscriber channels buffer up
// to buf entries. A non-positive buf gets a small default.
func NewBroadcaster(buf int) *Broadcaster {
	if buf <= 0 {
		buf = 64
	}
	return &Broadcaster{subs: make(map[int]chan Entry), buf: buf}
}

// Log delivers e to every subscriber that has room.
func (b *Broadcaster) Log(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel function
// removes the subscription and closes the channel; it is safe to call
// more than once.
func (b *Broadcaster) Subscribe() (<-chan Entry, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Entry, b.buf)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Nop returns a sink that discards entries.
func Nop() Sink { return nopSink{} }

type nopSink struct{}

func (nopSink) Log(Entry) {}
