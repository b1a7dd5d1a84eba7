package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/crestview/residency-api/internal/response"
	"github.com/crestview/residency-api/internal/service"
	"github.com/crestview/residency-api/pkg/auth"
	"github.com/crestview/residency-api/pkg/logger"
)

type ctxKey string

const ctxIdentity ctxKey = "identity"

type Handlers struct {
	verifier      auth.Verifier
	users         service.UserService
	catalog       service.CatalogService
	agreements    service.AgreementService
	coupons       service.CouponService
	billing       service.BillingService
	announcements service.AnnouncementService
}

func New(
	verifier auth.Verifier,
	users service.UserService,
	catalog service.CatalogService,
	agreements service.AgreementService,
	coupons service.CouponService,
	billing service.BillingService,
	announcements service.AnnouncementService,
) *Handlers {
	return &Handlers{
		verifier:      verifier,
		users:         users,
		catalog:       catalog,
		agreements:    agreements,
		coupons:       coupons,
		billing:       billing,
		announcements: announcements,
	}
}

// RequireAuth is the authorization gate. Presence and shape of the bearer
// credential are checked before the verifier is called; a verifier failure is
// a Forbidden, not an Unauthorized, so the two can be told apart by clients.
// When requiredRole is set, the stored role is looked up fresh per request;
// the token never carries authorization.
func (h *Handlers) RequireAuth(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Unauthorized(w, "missing or malformed authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			identity, err := h.verifier.Verify(token)
			if err != nil {
				response.Forbidden(w, "invalid credential")
				return
			}

			if requiredRole != "" {
				user, err := h.users.Get(r.Context(), identity.Email)
				if err != nil || user == nil || string(user.Role) != requiredRole {
					response.Forbidden(w, fmt.Sprintf("%s only", requiredRole))
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxIdentity, identity)
			ctx = context.WithValue(ctx, logger.UserKey, identity.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getIdentity(r *http.Request) *auth.Identity {
	if identity, ok := r.Context().Value(ctxIdentity).(*auth.Identity); ok {
		return identity
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func parsePage(r *http.Request) int {
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

func parseInt64(r *http.Request, key string) int64 {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			return n
		}
	}
	return 0
}
