// Package adapters connects the event broker to the real-time transports.
package adapters

import (
	"strconv"

	"github.com/agentstation/leimap/internal/server/events"
	"github.com/agentstation/leimap/internal/server/sse"
	ws "github.com/agentstation/leimap/internal/server/websocket"
)

// Forwarder relays broker events to one transport. The transport owns its
// own lifecycle, so Close does nothing.
type Forwarder struct {
	transport string
	forward   func(events.Event)
}

// Send implements events.Subscriber.
func (f *Forwarder) Send(event events.Event) error {
	f.forward(event)
	return nil
}

// Close implements events.Subscriber.
func (f *Forwarder) Close() error { return nil }

// Transport names the transport f forwards to.
func (f *Forwarder) Transport() string { return f.transport }

// WebSocket forwards events to every client of hub.
func WebSocket(hub *ws.Hub) *Forwarder {
	return &Forwarder{transport: "websocket", forward: func(event events.Event) {
		hub.Broadcast(ws.Message{
			Type:      string(event.Type),
			Timestamp: event.Timestamp,
			Data:      event.Data,
		})
	}}
}

// SSE forwards events to every stream of b. The SSE id is the broker
// sequence number.
func SSE(b *sse.Broadcaster) *Forwarder {
	return &Forwarder{transport: "sse", forward: func(event events.Event) {
		b.Broadcast(sse.Event{
			Event: string(event.Type),
			ID:    strconv.FormatUint(event.Seq, 10),
			Data:  event.Data,
		})
	}}
}
