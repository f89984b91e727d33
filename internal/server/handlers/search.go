package handlers

import (
	"net/http"
	"strconv"

	"github.com/agentstation/leimap/internal/server/cache"
	"github.com/agentstation/leimap/internal/server/response"
	"github.com/agentstation/leimap/pkg/constants"
	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/errors"
)

// BulkSearchRequest is the body of POST /api/v1/bulk-search.
type BulkSearchRequest struct {
	Targets []string `json:"targets"`
	Top     int      `json:"top"`
}

// HandleSearch handles GET /api/v1/search.
// @Summary Search entities by name
// @Description Rank registry name suggestions and resolve each to an LEI
// @Tags search
// @Produce json
// @Param name query string true "Company name"
// @Param top query integer false "Number of matches (default 5, max 50)"
// @Success 200 {object} response.Response{data=[]entities.Match}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{error=response.Error}
// @Router /api/v1/search [get].
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	name, err := requiredParam(r, "name")
	if err != nil {
		response.ErrorFromType(w, r, err)
		return
	}
	top, err := intParam(r, "top", constants.DefaultTopN)
	if err != nil {
		response.ErrorFromType(w, r, err)
		return
	}
	top = min(top, constants.MaxTopN)

	matches, err := cache.Fetch(h.cache, cache.Key("search", name, strconv.Itoa(top)), func() ([]entities.Match, error) {
		return h.client.Search(r.Context(), name, top)
	})
	if err != nil {
		response.ErrorFromType(w, r, err)
		return
	}
	response.OK(w, matches)
}

// HandleBulkSearch handles POST /api/v1/bulk-search.
// @Summary Search several names at once
// @Description Search up to 10 targets; each gets its own ranked matches
// @Tags search
// @Accept json
// @Produce json
// @Param request body BulkSearchRequest true "Targets and match count"
// @Success 200 {object} response.Response{data=[]entities.BulkResult}
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /api/v1/bulk-search [post].
func (h *Handlers) HandleBulkSearch(w http.ResponseWriter, r *http.Request) {
	var req BulkSearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.ErrorFromType(w, r, err)
		return
	}
	if req.Top < 0 {
		response.ErrorFromType(w, r, errors.NewValidationError("top", req.Top, "must not be negative"))
		return
	}

	results, err := h.client.BulkSearch(r.Context(), req.Targets, req.Top)
	if err != nil {
		response.ErrorFromType(w, r, err)
		return
	}
	response.OK(w, results)
}
