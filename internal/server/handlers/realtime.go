package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/leimap/internal/server/events"
	ws "github.com/agentstation/leimap/internal/server/websocket"
)

// Welcome is the first frame a WebSocket client receives. LastSeq is the
// sequence number of the most recent published event.
type Welcome struct {
	ClientID string   `json:"client_id"`
	LastSeq  uint64   `json:"last_seq"`
	Topics   []string `json:"topics"`
}

// HandleWebSocket handles WebSocket connections at /api/v1/updates/ws.
// @Summary WebSocket updates
// @Description Hierarchy and pairing events. Send {"topics": [...]} to filter by event type.
// @Tags updates
// @Success 101 "Switching Protocols"
// @Router /api/v1/updates/ws [get].
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(uuid.NewString(), h.wsHub, conn)
	h.wsHub.Register(client)
	h.wsHub.Send(client, ws.Message{
		Type:      string(events.ClientConnected),
		Timestamp: time.Now().UTC(),
		Data: Welcome{
			ClientID: client.ID(),
			LastSeq:  h.broker.LastSeq(),
			Topics: []string{
				string(events.HierarchyBuilt),
				string(events.HierarchyReconciled),
				string(events.PairingsSaved),
				string(events.PairingsReset),
			},
		},
	})

	go client.WritePump()
	go client.ReadPump()
}

// HandleSSE handles Server-Sent Events at /api/v1/updates/stream.
// @Summary SSE updates stream
// @Description Server-Sent Events stream of hierarchy and pairing events; the event id is the broker sequence number
// @Tags updates
// @Produce text/event-stream
// @Success 200 "Event stream"
// @Router /api/v1/updates/stream [get].
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseBroadcaster.ServeHTTP(w, r)
}
