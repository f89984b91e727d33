package handlers

import (
	"net/http"

	"github.com/agentstation/leimap/internal/server/cache"
	"github.com/agentstation/leimap/internal/server/response"
	"github.com/agentstation/leimap/pkg/entities"
)

// HandleCompany handles GET /api/v1/companies/{lei}.
// @Summary Company details
// @Description Legal name, status, addresses and registration dates of one entity
// @Tags companies
// @Produce json
// @Param lei path string true "LEI"
// @Success 200 {object} response.Response{data=entities.Company}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/companies/{lei} [get].
func (h *Handlers) HandleCompany(w http.ResponseWriter, r *http.Request) {
	lei := entities.NormalizeLEI(r.PathValue("lei"))

	company, err := cache.Fetch(h.cache, cache.Key("company", lei), func() (entities.Company, error) {
		return h.client.Company(r.Context(), lei)
	})
	if err != nil {
		response.ErrorFromType(w, r, err)
		return
	}
	response.OK(w, company)
}
