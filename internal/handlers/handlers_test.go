package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crestview/residency-api/internal/domain"
	"github.com/crestview/residency-api/internal/response"
	"github.com/crestview/residency-api/pkg/auth"
)

// ---------- Mocks ----------

type mockVerifier struct {
	identities map[string]*auth.Identity
}

func (m *mockVerifier) Verify(token string) (*auth.Identity, error) {
	if identity, ok := m.identities[token]; ok {
		return identity, nil
	}
	return nil, errors.New("invalid token")
}

type mockUserService struct {
	users map[string]*domain.User
}

func (m *mockUserService) Register(_ context.Context, req *domain.RegisterUserReq) (*domain.User, bool, error) {
	if req.Email == "" {
		return nil, false, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if u, ok := m.users[req.Email]; ok {
		return u, false, nil
	}
	u := &domain.User{Email: req.Email, Name: req.Name, Role: domain.RoleGuest, CreatedAt: time.Now()}
	m.users[req.Email] = u
	return u, true, nil
}

func (m *mockUserService) Get(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: no user for %s", domain.ErrNotFound, email)
}

func (m *mockUserService) List(_ context.Context, _ string) ([]domain.User, error) { return nil, nil }

func (m *mockUserService) SetRole(_ context.Context, email, role string) (int64, error) {
	if _, ok := domain.ParseRole(role); !ok {
		return 0, fmt.Errorf("%w: role must be one of guest, member, admin", domain.ErrValidation)
	}
	if u, ok := m.users[email]; ok {
		u.Role = domain.Role(role)
		return 1, nil
	}
	return 0, nil
}

type mockCouponService struct {
	listErr error
}

func (mockCouponService) Validate(_ context.Context, code string) (*domain.CouponValidation, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", domain.ErrValidation)
	}
	return &domain.CouponValidation{Valid: false, Message: "coupon not found"}, nil
}

func (m mockCouponService) List(_ context.Context) ([]domain.Coupon, error) {
	return nil, m.listErr
}

func (mockCouponService) Create(_ context.Context, c *domain.Coupon) (*domain.Coupon, error) {
	return c, nil
}

func newTestRouter() *chi.Mux {
	verifier := &mockVerifier{identities: map[string]*auth.Identity{
		"admin-token":  {Subject: "1", Email: "admin@example.com"},
		"member-token": {Subject: "2", Email: "member@example.com"},
	}}
	users := &mockUserService{
		users: map[string]*domain.User{
			"admin@example.com":  {Email: "admin@example.com", Role: domain.RoleAdmin},
			"member@example.com": {Email: "member@example.com", Role: domain.RoleMember},
		},
	}

	h := New(verifier, users, nil, nil, mockCouponService{}, nil, nil)

	r := chi.NewRouter()
	r.With(h.RequireAuth("")).Get("/validate-coupon", h.ValidateCoupon)
	r.With(h.RequireAuth("")).Post("/users", h.RegisterUser)
	r.With(h.RequireAuth("admin")).Post("/coupons", h.CreateCoupon)
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// ---------- Tests ----------

func TestGateRequiresCredential(t *testing.T) {
	r := newTestRouter()

	rec := doRequest(t, r, http.MethodPost, "/coupons", "", map[string]any{"code": "X"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 without credential, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/coupons", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 for non-bearer credential, got %d", rec2.Code)
	}
}

func TestGateRejectsBadToken(t *testing.T) {
	r := newTestRouter()

	rec := doRequest(t, r, http.MethodPost, "/coupons", "garbage", map[string]any{"code": "X"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("want 403 for unverifiable token, got %d", rec.Code)
	}
}

func TestGateEnforcesStoredRole(t *testing.T) {
	r := newTestRouter()

	rec := doRequest(t, r, http.MethodPost, "/coupons", "member-token", map[string]any{"code": "X"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("want 403 for non-admin, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "admin only") {
		t.Fatalf("want required role in body, got %s", rec.Body.String())
	}
}

func TestGateAdmitsAdmin(t *testing.T) {
	r := newTestRouter()

	coupon := map[string]any{
		"code":                "WELCOME5",
		"discount_percentage": 5,
		"expires_at":          time.Now().Add(24 * time.Hour),
	}
	rec := doRequest(t, r, http.MethodPost, "/coupons", "admin-token", coupon)
	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201 for admin, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestValidateCouponRequiresCode(t *testing.T) {
	r := newTestRouter()

	rec := doRequest(t, r, http.MethodGet, "/validate-coupon", "member-token", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400 for missing code, got %d", rec.Code)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := newTestRouter()

	body := map[string]string{"email": "new@example.com", "name": "New Resident"}
	first := doRequest(t, r, http.MethodPost, "/users", "member-token", body)
	if first.Code != http.StatusCreated {
		t.Fatalf("want 201 on first registration, got %d", first.Code)
	}

	second := doRequest(t, r, http.MethodPost, "/users", "member-token", body)
	if second.Code != http.StatusOK {
		t.Fatalf("want 200 on repeat registration, got %d", second.Code)
	}

	var u domain.User
	if err := json.NewDecoder(second.Body).Decode(&u); err != nil {
		t.Fatal(err)
	}
	if u.Email != "new@example.com" || u.Role != domain.RoleGuest {
		t.Fatalf("existing record must be returned untouched: %+v", u)
	}
}

func TestStorageFailureIsGenericServerError(t *testing.T) {
	h := New(nil, nil, nil, nil, mockCouponService{listErr: errors.New("connection refused")}, nil, nil)

	r := chi.NewRouter()
	r.Get("/coupons", h.ListCoupons)

	rec := doRequest(t, r, http.MethodGet, "/coupons", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500 on storage failure, got %d", rec.Code)
	}

	var body response.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "internal server error" || body.Code != response.CodeInternalError {
		t.Fatalf("storage detail must not leak to the caller: %+v", body)
	}
}
