package handlers

import (
	"net/http"

	"github.com/agentstation/leimap/internal/server/events"
	"github.com/agentstation/leimap/internal/server/response"
	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/errors"
)

// SavePairingsRequest is the body of POST /api/v1/pairings.
type SavePairingsRequest struct {
	Pairings []entities.Pairing `json:"pairings"`
}

// SavePairingsResponse reports the outcome of a save.
type SavePairingsResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// HandleListPairings handles GET /api/v1/pairings.
// @Summary List saved pairings
// @Tags pairings
// @Produce json
// @Success 200 {object} response.Response{data=[]entities.Pairing}
// @Router /api/v1/pairings [get].
func (h *Handlers) HandleListPairings(w http.ResponseWriter, r *http.Request) {
	saved, err := h.pairings.List(r.Context())
	if err != nil {
		response.ErrorFromType(w, r, err)
		return
	}
	response.OK(w, saved)
}

// HandleSavePairings handles POST /api/v1/pairings.
// @Summary Save pairings
// @Description Record the chosen match for each target; saving a target again replaces it
// @Tags pairings
// @Accept json
// @Produce json
// @Param request body SavePairingsRequest true "Pairings to save"
// @Success 200 {object} response.Response{data=SavePairingsResponse}
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /api/v1/pairings [post].
func (h *Handlers) HandleSavePairings(w http.ResponseWriter, r *http.Request) {
	var req SavePairingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.ErrorFromType(w, r, err)
		return
	}
	if req.Pairings == nil {
		response.ErrorFromType(w, r, errors.NewValidationError("pairings", nil, "is required"))
		return
	}

	count, err := h.pairings.Save(r.Context(), req.Pairings)
	if err != nil {
		response.ErrorFromType(w, r, err)
		return
	}
	h.metrics.SetSavedPairings(count)
	h.broker.Publish(events.PairingsSaved, events.PairingsData{Received: len(req.Pairings), Count: count})

	response.OK(w, SavePairingsResponse{Status: "saved", Count: count})
}

// HandleResetPairings handles DELETE /api/v1/pairings.
// @Summary Remove every saved pairing
// @Tags pairings
// @Produce json
// @Success 200 {object} response.Response{data=SavePairingsResponse}
// @Router /api/v1/pairings [delete].
func (h *Handlers) HandleResetPairings(w http.ResponseWriter, r *http.Request) {
	if err := h.pairings.Reset(r.Context()); err != nil {
		response.ErrorFromType(w, r, err)
		return
	}
	h.metrics.SetSavedPairings(0)
	h.broker.Publish(events.PairingsReset, events.PairingsData{})

	response.OK(w, SavePairingsResponse{Status: "reset", Count: 0})
}
