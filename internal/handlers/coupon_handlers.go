package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crestview/residency-api/internal/domain"
	"github.com/crestview/residency-api/internal/response"
)

// ListCoupons handles GET /coupons (public)
func (h *Handlers) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, coupons)
}

// ValidateCoupon handles GET /validate-coupon?code=
func (h *Handlers) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")

	result, err := h.coupons.Validate(r.Context(), code)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateCoupon handles POST /coupons (admin only)
func (h *Handlers) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var coupon domain.Coupon
	if err := json.NewDecoder(r.Body).Decode(&coupon); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	created, err := h.coupons.Create(r.Context(), &coupon)
	if err != nil {
		response.FromError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
