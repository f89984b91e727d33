package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/leimap/internal/server/cache"
	"github.com/agentstation/leimap/internal/server/response"
)

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ReadyResponse reports the state of everything a request may touch.
type ReadyResponse struct {
	Status           string      `json:"status"`
	UptimeSeconds    int         `json:"uptime_seconds"`
	Cache            cache.Stats `json:"cache"`
	SavedPairings    int         `json:"saved_pairings"`
	EventsPublished  uint64      `json:"events_published"`
	WebSocketClients int         `json:"websocket_clients"`
	SSEClients       int         `json:"sse_clients"`
}

// HandleHealth handles GET /health and GET /api/v1/health.
// @Summary Health check
// @Description Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=HealthResponse}
// @Router /api/v1/health [get].
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, HealthResponse{Status: "healthy", Service: "leimap-api", Version: h.version})
}

// HandleReady handles GET /api/v1/ready. The server is ready once it has a
// client and the pairings store answers.
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=ReadyResponse}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/ready [get].
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		response.ServiceUnavailable(w, r, "Client not available")
		return
	}
	saved, err := h.pairings.List(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Pairings store failed readiness check")
		response.ServiceUnavailable(w, r, "Pairings store not available")
		return
	}

	response.OK(w, ReadyResponse{
		Status:           "ready",
		UptimeSeconds:    int(time.Since(h.startTime).Seconds()),
		Cache:            h.cache.GetStats(),
		SavedPairings:    len(saved),
		EventsPublished:  h.broker.LastSeq(),
		WebSocketClients: h.wsHub.ClientCount(),
		SSEClients:       h.sseBroadcaster.ClientCount(),
	})
}
