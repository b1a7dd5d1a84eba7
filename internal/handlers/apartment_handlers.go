package handlers

import (
	"net/http"

	"github.com/crestview/residency-api/internal/response"
)

// ListApartments handles GET /apartments?page=&minRent=&maxRent= (public)
func (h *Handlers) ListApartments(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	minRent := parseInt64(r, "minRent")
	maxRent := parseInt64(r, "maxRent")

	result, err := h.catalog.List(r.Context(), page, minRent, maxRent)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
