package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/leimap"
	"github.com/agentstation/leimap/internal/metrics"
	"github.com/agentstation/leimap/internal/pairings"
	"github.com/agentstation/leimap/internal/server/cache"
	"github.com/agentstation/leimap/internal/server/events"
	"github.com/agentstation/leimap/internal/server/sse"
	ws "github.com/agentstation/leimap/internal/server/websocket"
	"github.com/agentstation/leimap/pkg/errors"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Deps are the collaborators handlers need.
type Deps struct {
	Client         leimap.Client
	Pairings       pairings.Store
	Cache          *cache.Cache
	Broker         *events.Broker
	WSHub          *ws.Hub
	SSEBroadcaster *sse.Broadcaster
	Upgrader       websocket.Upgrader
	Metrics        *metrics.Metrics
	Logger         *zerolog.Logger
	Version        string
	StartTime      time.Time
}

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	client         leimap.Client
	pairings       pairings.Store
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	metrics        *metrics.Metrics
	logger         *zerolog.Logger
	version        string
	startTime      time.Time
}

// New creates a new Handlers instance.
func New(d Deps) *Handlers {
	return &Handlers{
		client:         d.Client,
		pairings:       d.Pairings,
		cache:          d.Cache,
		broker:         d.Broker,
		wsHub:          d.WSHub,
		sseBroadcaster: d.SSEBroadcaster,
		upgrader:       d.Upgrader,
		metrics:        d.Metrics,
		logger:         d.Logger,
		version:        d.Version,
		startTime:      d.StartTime,
	}
}

// intParam parses an optional positive integer query parameter.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.NewValidationError(name, raw, "must be a positive integer")
	}
	return n, nil
}

// requiredParam returns a trimmed query parameter or a validation error.
func requiredParam(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", errors.NewValidationError(name, v, "is required")
	}
	return v, nil
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errors.NewValidationError("body", nil, "request body is empty")
		}
		return errors.NewValidationError("body", nil, "invalid JSON: "+err.Error())
	}
	return nil
}
