// Package sse streams hierarchy and pairing events as Server-Sent Events.
//
// Events carry numeric ids. The broadcaster keeps the most recent ones so a
// client that reconnects with Last-Event-ID receives what it missed before
// the live stream resumes.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/leimap/pkg/constants"
)

// Broadcaster manages Server-Sent Events connections.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[chan Event]struct{}
	history []Event // oldest first, at most replaySize
	closed  bool

	events     chan Event
	done       chan struct{}
	replaySize int
	heartbeat  time.Duration
	logger     *zerolog.Logger
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithReplay sets how many recent events are kept for reconnecting clients.
// Zero disables replay.
func WithReplay(n int) Option {
	return func(b *Broadcaster) { b.replaySize = n }
}

// WithHeartbeat sets the interval of keep-alive comments. Zero disables them.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broadcaster) { b.heartbeat = d }
}

// NewBroadcaster creates a new SSE broadcaster.
func NewBroadcaster(logger *zerolog.Logger, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		clients:    make(map[chan Event]struct{}),
		events:     make(chan Event, constants.ChannelBufferSize),
		done:       make(chan struct{}),
		replaySize: constants.SSEReplaySize,
		heartbeat:  constants.SSEHeartbeatInterval,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run fans broadcasts out until ctx is canceled, then ends every open stream.
func (b *Broadcaster) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for client := range b.clients {
				close(client)
			}
			clear(b.clients)
			b.closed = true
			b.mu.Unlock()
			close(b.done)
			b.logger.Info().Msg("SSE broadcaster shut down")
			return

		case event := <-b.events:
			b.mu.Lock()
			b.remember(event)
			for client := range b.clients {
				select {
				case client <- event:
				default:
					b.logger.Warn().Str("id", event.ID).Msg("SSE client buffer full, event skipped")
				}
			}
			b.mu.Unlock()
		}
	}
}

// remember appends event to the replay history. Callers hold b.mu.
func (b *Broadcaster) remember(event Event) {
	if b.replaySize <= 0 || event.ID == "" {
		return
	}
	b.history = append(b.history, event)
	if over := len(b.history) - b.replaySize; over > 0 {
		b.history = append(b.history[:0:0], b.history[over:]...)
	}
}

// Broadcast queues an event for all connected SSE clients. It never blocks.
func (b *Broadcaster) Broadcast(event Event) {
	select {
	case b.events <- event:
	default:
		b.logger.Warn().Str("event", event.Event).Msg("SSE broadcast channel full, event dropped")
	}
}

// ClientCount returns the number of connected SSE clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// connect registers a client and returns the remembered events newer than
// lastID. Registration and the snapshot share one critical section, so no
// event is both replayed and streamed, or lost in between.
func (b *Broadcaster) connect(lastID string) (chan Event, []Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, nil, false
	}

	client := make(chan Event, constants.ChannelBufferSize)
	b.clients[client] = struct{}{}
	b.logger.Info().Int("total_clients", len(b.clients)).Msg("SSE client connected")

	last, err := strconv.ParseUint(lastID, 10, 64)
	if err != nil {
		return client, nil, true
	}
	var missed []Event
	for _, e := range b.history {
		if id, err := strconv.ParseUint(e.ID, 10, 64); err == nil && id > last {
			missed = append(missed, e)
		}
	}
	return client, missed, true
}

func (b *Broadcaster) disconnect(client chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; !ok {
		return
	}
	delete(b.clients, client)
	close(client)
	b.logger.Info().Int("total_clients", len(b.clients)).Msg("SSE client disconnected")
}

// ServeHTTP streams events to one client until it disconnects or the
// broadcaster shuts down. The replay position comes from the Last-Event-ID
// header or, for a first connection, the last_event_id query parameter.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	lastID := r.Header.Get("Last-Event-ID")
	if lastID == "" {
		lastID = r.URL.Query().Get("last_event_id")
	}
	client, missed, ok := b.connect(lastID)
	if !ok {
		http.Error(w, "Shutting down", http.StatusServiceUnavailable)
		return
	}
	defer b.disconnect(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	b.write(w, Event{
		Event: "connected",
		Data: map[string]any{
			"message":   "Connected to leimap updates stream",
			"timestamp": time.Now().UTC(),
			"replayed":  len(missed),
		},
	})
	for _, e := range missed {
		b.write(w, e)
	}
	flusher.Flush()

	var heartbeat <-chan time.Time
	if b.heartbeat > 0 {
		ticker := time.NewTicker(b.heartbeat)
		defer ticker.Stop()
		heartbeat = ticker.C
	}

	for {
		select {
		case event, ok := <-client:
			if !ok {
				return
			}
			b.write(w, event)
			flusher.Flush()
		case <-heartbeat:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// write encodes one SSE frame.
func (b *Broadcaster) write(w io.Writer, event Event) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		b.logger.Error().Err(err).Str("event", event.Event).Msg("Failed to marshal SSE event data")
		return
	}
	if event.Event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", event.Event)
	}
	if event.ID != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", event.ID)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

// Event is one SSE frame.
type Event struct {
	Event string `json:"event,omitempty"`
	ID    string `json:"id,omitempty"`
	Data  any    `json:"data"`
}
