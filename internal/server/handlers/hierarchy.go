package handlers

import (
	"net/http"
	"slices"

	"github.com/agentstation/leimap/internal/server/response"
	"github.com/agentstation/leimap/pkg/entities"
	"github.com/agentstation/leimap/pkg/errors"
	"github.com/agentstation/leimap/pkg/hierarchy"
)

// HierarchyResponse is the payload of the hierarchy endpoints.
type HierarchyResponse struct {
	Tree          *hierarchy.Tree  `json:"tree"`
	Lines         []hierarchy.Line `json:"lines"`
	Text          string           `json:"text"`
	TotalEntities int              `json:"total_entities"`
	Reconciled    int              `json:"reconciled"`
	Match         *entities.Match  `json:"match,omitempty"`
}

func newHierarchyResponse(tree *hierarchy.Tree, match *entities.Match) HierarchyResponse {
	return HierarchyResponse{
		Tree:          tree,
		Lines:         slices.Collect(tree.Lines()),
		Text:          tree.Text(),
		TotalEntities: tree.Count(),
		Reconciled:    len(tree.Reconciled),
		Match:         match,
	}
}

// HandleHierarchyByName handles GET /api/v1/hierarchy.
// @Summary Hierarchy for a company name
// @Description Rank matches for name, pick the match-th one and build its full ownership tree
// @Tags hierarchy
// @Produce json
// @Param name query string true "Company name"
// @Param match query integer false "1-based match to use (default 1, max 10)"
// @Success 200 {object} response.Response{data=HierarchyResponse}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/hierarchy [get].
func (h *Handlers) HandleHierarchyByName(w http.ResponseWriter, r *http.Request) {
	name, err := requiredParam(r, "name")
	if err != nil {
		response.ErrorFromType(w, r, err)
		return
	}
	match, err := intParam(r, "match", 1)
	if err != nil {
		response.ErrorFromType(w, r, err)
		return
	}

	tree, selected, err := h.client.HierarchyForName(r.Context(), name, match)
	if err != nil {
		response.ErrorFromType(w, r, err)
		return
	}
	response.OK(w, newHierarchyResponse(tree, &selected))
}

// HandleHierarchyByLEI handles GET /api/v1/hierarchy/{lei}.
// @Summary Hierarchy for an LEI
// @Description Build the full ownership tree containing the entity
// @Tags hierarchy
// @Produce json
// @Param lei path string true "LEI"
// @Success 200 {object} response.Response{data=HierarchyResponse}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{error=response.Error}
// @Router /api/v1/hierarchy/{lei} [get].
func (h *Handlers) HandleHierarchyByLEI(w http.ResponseWriter, r *http.Request) {
	lei := entities.NormalizeLEI(r.PathValue("lei"))
	if entities.IsBlank(lei) {
		response.ErrorFromType(w, r, errors.NewValidationError("lei", lei, "a resolved LEI is required"))
		return
	}

	tree, err := h.client.Hierarchy(r.Context(), lei)
	if err != nil {
		response.ErrorFromType(w, r, err)
		return
	}
	response.OK(w, newHierarchyResponse(tree, nil))
}
