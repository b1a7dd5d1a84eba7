package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crestview/residency-api/internal/domain"
	"github.com/crestview/residency-api/internal/response"
)

// GetUsers handles GET /users?email=&role=
func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	role := r.URL.Query().Get("role")

	if email != "" {
		user, err := h.users.Get(r.Context(), email)
		if err != nil {
			response.FromError(r.Context(), w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
		return
	}

	users, err := h.users.List(r.Context(), role)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// RegisterUser handles POST /users. Registration is idempotent: an existing
// email returns the stored record with 200, a fresh one 201.
func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	user, created, err := h.users.Register(r.Context(), &req)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, user)
}

// SetUserRole handles PATCH /users?email= (admin only, gated in the router)
func (h *Handlers) SetUserRole(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	affected, err := h.users.SetRole(r.Context(), email, body.Role)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"modified_count": affected})
}
