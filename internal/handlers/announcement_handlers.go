package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crestview/residency-api/internal/domain"
	"github.com/crestview/residency-api/internal/response"
)

// ListAnnouncements handles GET /announcements
func (h *Handlers) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.announcements.List(r.Context())
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, announcements)
}

// CreateAnnouncement handles POST /announcements (admin only)
func (h *Handlers) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAnnouncementReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	announcement, err := h.announcements.Create(r.Context(), &req)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, announcement)
}
