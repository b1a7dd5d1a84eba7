package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/crestview/residency-api/internal/domain"
	"github.com/crestview/residency-api/internal/response"
)

// SubmitAgreement handles POST /agreements. The caller may only apply on
// their own behalf; the owning email comes from the verified identity when
// the body omits it, and must match it otherwise.
func (h *Handlers) SubmitAgreement(w http.ResponseWriter, r *http.Request) {
	identity := getIdentity(r)

	var req domain.SubmitAgreementReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	if req.UserEmail == "" && identity != nil {
		req.UserEmail = identity.Email
	} else if identity != nil && !strings.EqualFold(req.UserEmail, identity.Email) {
		response.Forbidden(w, "cannot submit an agreement for another user")
		return
	}

	agreement, err := h.agreements.Submit(r.Context(), &req)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, agreement)
}

// ListAgreements handles GET /agreements?email=
func (h *Handlers) ListAgreements(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		if identity := getIdentity(r); identity != nil {
			email = identity.Email
		}
	}

	agreements, err := h.agreements.ListForUser(r.Context(), email)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, agreements)
}

// GetMemberAgreement handles GET /member-agreements?email=. The stored role
// is re-checked; anything but member is a 403.
func (h *Handlers) GetMemberAgreement(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		if identity := getIdentity(r); identity != nil {
			email = identity.Email
		}
	}

	agreement, err := h.agreements.GetMineAsMember(r.Context(), email)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, agreement)
}

// AcceptAgreement handles PATCH /agreements/{id}/accept (admin only)
func (h *Handlers) AcceptAgreement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid agreement ID")
		return
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	result, err := h.agreements.Accept(r.Context(), id, body.Email)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RejectAgreement handles PATCH /agreements/{id}/reject (admin only)
func (h *Handlers) RejectAgreement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid agreement ID")
		return
	}

	affected, err := h.agreements.Reject(r.Context(), id)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"modified_count": affected})
}
