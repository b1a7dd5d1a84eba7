package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crestview/residency-api/internal/domain"
	"github.com/crestview/residency-api/internal/response"
)

// CreatePaymentIntent handles POST /create-payment-intent
func (h *Handlers) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rent int64 `json:"rent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	intent, err := h.billing.CreateIntent(r.Context(), body.Rent)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, intent)
}

// RecordPayment handles POST /payments
func (h *Handlers) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if req.Email == "" {
		if identity := getIdentity(r); identity != nil {
			req.Email = identity.Email
		}
	}

	payment, err := h.billing.Record(r.Context(), &req)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

// ListPayments handles GET /payments?email=
func (h *Handlers) ListPayments(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	payments, err := h.billing.ListByEmail(r.Context(), email)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}
