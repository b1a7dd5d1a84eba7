package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crestview/residency-api/internal/domain"
	"github.com/crestview/residency-api/internal/repository"
)

// ---------- Mocks ----------

type decideCall struct {
	id    int64
	email string
}

type mockAgreementRepo struct {
	byID         map[int64]*domain.Agreement
	byEmail      map[string]*domain.Agreement
	created      []*domain.Agreement
	createErr    error
	decideCalls  []decideCall
	decideResult *domain.DecisionResult
	checkedIDs   []int64
}

func newMockAgreementRepo() *mockAgreementRepo {
	return &mockAgreementRepo{
		byID:         make(map[int64]*domain.Agreement),
		byEmail:      make(map[string]*domain.Agreement),
		decideResult: &domain.DecisionResult{AgreementUpdated: 1, UserUpdated: 1},
	}
}

func (m *mockAgreementRepo) Create(_ context.Context, req *domain.SubmitAgreementReq) (*domain.Agreement, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	a := &domain.Agreement{
		ID:          int64(len(m.created) + 1),
		UserEmail:   req.UserEmail,
		Block:       req.Block,
		Floor:       req.Floor,
		ApartmentNo: req.ApartmentNo,
		Rent:        req.Rent,
		Status:      domain.AgreementPending,
		CreatedAt:   time.Now(),
	}
	m.created = append(m.created, a)
	m.byID[a.ID] = a
	m.byEmail[a.UserEmail] = a
	return a, nil
}

func (m *mockAgreementRepo) GetByID(_ context.Context, id int64) (*domain.Agreement, error) {
	return m.byID[id], nil
}

func (m *mockAgreementRepo) ListByEmail(_ context.Context, email string) ([]domain.Agreement, error) {
	if a, ok := m.byEmail[email]; ok {
		return []domain.Agreement{*a}, nil
	}
	return nil, nil
}

func (m *mockAgreementRepo) FindByEmail(_ context.Context, email string) (*domain.Agreement, error) {
	return m.byEmail[email], nil
}

func (m *mockAgreementRepo) Decide(_ context.Context, id int64, email string) (*domain.DecisionResult, error) {
	m.decideCalls = append(m.decideCalls, decideCall{id: id, email: email})
	a, ok := m.byID[id]
	if !ok {
		return &domain.DecisionResult{}, nil
	}
	a.Status = domain.AgreementChecked
	return m.decideResult, nil
}

func (m *mockAgreementRepo) MarkChecked(_ context.Context, id int64) (int64, error) {
	m.checkedIDs = append(m.checkedIDs, id)
	if _, ok := m.byID[id]; !ok {
		return 0, nil
	}
	return 1, nil
}

type mockUserRepo struct {
	users           map[string]*domain.User
	roleUpdateCalls int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.users[email], nil
}

func (m *mockUserRepo) List(_ context.Context, _ *domain.Role) ([]domain.User, error) {
	return nil, nil
}

func (m *mockUserRepo) CreateIfAbsent(_ context.Context, email, name string) (*domain.User, bool, error) {
	if u, ok := m.users[email]; ok {
		return u, false, nil
	}
	u := &domain.User{ID: int64(len(m.users) + 1), Email: email, Name: name, Role: domain.RoleGuest, CreatedAt: time.Now()}
	m.users[email] = u
	return u, true, nil
}

func (m *mockUserRepo) UpdateRole(_ context.Context, email string, role domain.Role) (int64, error) {
	m.roleUpdateCalls++
	if u, ok := m.users[email]; ok {
		u.Role = role
		return 1, nil
	}
	return 0, nil
}

type mockPublisher struct {
	subjects []string
}

func (m *mockPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

type mockMailer struct {
	lastTo       string
	lastDecision string
}

func (m *mockMailer) SendAgreementDecision(toEmail, _, decision string) error {
	m.lastTo = toEmail
	m.lastDecision = decision
	return nil
}

func newAgreementService() (AgreementService, *mockAgreementRepo, *mockUserRepo, *mockPublisher, *mockMailer) {
	agreementRepo := newMockAgreementRepo()
	userRepo := newMockUserRepo()
	bus := &mockPublisher{}
	mail := &mockMailer{}
	return NewAgreementService(agreementRepo, userRepo, bus, mail), agreementRepo, userRepo, bus, mail
}

func validSubmit(email string) *domain.SubmitAgreementReq {
	return &domain.SubmitAgreementReq{
		UserEmail:   email,
		Block:       "A",
		Floor:       "3",
		ApartmentNo: "A-301",
		Rent:        1400,
	}
}

// ---------- Tests ----------

func TestSubmitRequiresAllFields(t *testing.T) {
	svc, repo, _, _, _ := newAgreementService()

	cases := []struct {
		name string
		req  *domain.SubmitAgreementReq
	}{
		{"missing email", &domain.SubmitAgreementReq{Block: "A", Floor: "3", ApartmentNo: "A-301", Rent: 1400}},
		{"missing block", &domain.SubmitAgreementReq{UserEmail: "a@b.c", Floor: "3", ApartmentNo: "A-301", Rent: 1400}},
		{"missing floor", &domain.SubmitAgreementReq{UserEmail: "a@b.c", Block: "A", ApartmentNo: "A-301", Rent: 1400}},
		{"missing apartment", &domain.SubmitAgreementReq{UserEmail: "a@b.c", Block: "A", Floor: "3", Rent: 1400}},
		{"missing rent", &domain.SubmitAgreementReq{UserEmail: "a@b.c", Block: "A", Floor: "3", ApartmentNo: "A-301"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("want ErrValidation, got %v", err)
			}
		})
	}
	if len(repo.created) != 0 {
		t.Fatalf("no agreement should be stored, got %d", len(repo.created))
	}
}

func TestSubmitRejectsDuplicate(t *testing.T) {
	svc, repo, _, bus, _ := newAgreementService()

	if _, err := svc.Submit(context.Background(), validSubmit("resident@example.com")); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err := svc.Submit(context.Background(), validSubmit("resident@example.com"))
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("want exactly one stored agreement, got %d", len(repo.created))
	}
	if len(bus.subjects) != 1 {
		t.Fatalf("want one submitted event, got %d", len(bus.subjects))
	}
}

func TestSubmitMapsUniqueIndexViolation(t *testing.T) {
	// Two submits racing past the pre-read both reach Create; the second one
	// hits the unique index. The service must turn that into a conflict.
	svc, repo, _, _, _ := newAgreementService()
	repo.createErr = repository.ErrDuplicateAgreement

	_, err := svc.Submit(context.Background(), validSubmit("racer@example.com"))
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want ErrConflict from index violation, got %v", err)
	}
}

func TestAcceptChecksOwnerEmail(t *testing.T) {
	svc, repo, _, _, _ := newAgreementService()
	if _, err := svc.Submit(context.Background(), validSubmit("owner@example.com")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := svc.Accept(context.Background(), 1, "impostor@example.com")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation on owner mismatch, got %v", err)
	}
	if len(repo.decideCalls) != 0 {
		t.Fatal("no writes should happen on owner mismatch")
	}
}

func TestAcceptPromotesOwner(t *testing.T) {
	svc, repo, _, bus, mail := newAgreementService()
	if _, err := svc.Submit(context.Background(), validSubmit("owner@example.com")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	result, err := svc.Accept(context.Background(), 1, "owner@example.com")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if result.AgreementUpdated != 1 || result.UserUpdated != 1 {
		t.Fatalf("want both updates applied, got %+v", result)
	}
	if len(repo.decideCalls) != 1 || repo.decideCalls[0].email != "owner@example.com" {
		t.Fatalf("unexpected decide calls: %+v", repo.decideCalls)
	}
	if mail.lastDecision != "accepted" || mail.lastTo != "owner@example.com" {
		t.Fatalf("decision mail not sent: %+v", mail)
	}

	var sawAccepted, sawRoleChanged bool
	for _, s := range bus.subjects {
		switch s {
		case "agreement.accepted":
			sawAccepted = true
		case "user.role.changed":
			sawRoleChanged = true
		}
	}
	if !sawAccepted || !sawRoleChanged {
		t.Fatalf("missing events, got %v", bus.subjects)
	}
}

func TestAcceptUnknownIDIsNoop(t *testing.T) {
	svc, repo, _, _, _ := newAgreementService()

	result, err := svc.Accept(context.Background(), 999, "someone@example.com")
	if err != nil {
		t.Fatalf("unknown id must not error: %v", err)
	}
	if result.AgreementUpdated != 0 {
		t.Fatalf("want zero-affected reported, got %+v", result)
	}
	if len(repo.decideCalls) != 1 {
		t.Fatal("both updates must still be attempted for an unknown id")
	}
}

func TestAcceptTwiceReappliesDecision(t *testing.T) {
	// A second accept on an already checked agreement is idempotent: both
	// updates run again and land on the values they already hold.
	svc, repo, _, _, _ := newAgreementService()
	if _, err := svc.Submit(context.Background(), validSubmit("owner@example.com")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.Accept(context.Background(), 1, "owner@example.com"); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if repo.byID[1].Status != domain.AgreementChecked {
		t.Fatalf("agreement not checked after accept: %+v", repo.byID[1])
	}

	result, err := svc.Accept(context.Background(), 1, "owner@example.com")
	if err != nil {
		t.Fatalf("second accept must succeed: %v", err)
	}
	if result.AgreementUpdated != 1 || result.UserUpdated != 1 {
		t.Fatalf("want both updates re-applied, got %+v", result)
	}
	if len(repo.decideCalls) != 2 || repo.decideCalls[1].email != "owner@example.com" {
		t.Fatalf("unexpected decide calls: %+v", repo.decideCalls)
	}
}

func TestRejectLeavesRoleAlone(t *testing.T) {
	svc, repo, userRepo, _, mail := newAgreementService()
	if _, err := svc.Submit(context.Background(), validSubmit("owner@example.com")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	affected, err := svc.Reject(context.Background(), 1)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if affected != 1 {
		t.Fatalf("want one agreement updated, got %d", affected)
	}
	if userRepo.roleUpdateCalls != 0 {
		t.Fatal("reject must never touch roles")
	}
	if len(repo.checkedIDs) != 1 || repo.checkedIDs[0] != 1 {
		t.Fatalf("unexpected checked ids: %v", repo.checkedIDs)
	}
	if mail.lastDecision != "rejected" {
		t.Fatalf("want rejection mail, got %q", mail.lastDecision)
	}
}

func TestGetMineAsMember(t *testing.T) {
	svc, _, userRepo, _, _ := newAgreementService()
	if _, err := svc.Submit(context.Background(), validSubmit("member@example.com")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	userRepo.users["guest@example.com"] = &domain.User{Email: "guest@example.com", Role: domain.RoleGuest}
	userRepo.users["member@example.com"] = &domain.User{Email: "member@example.com", Role: domain.RoleMember}
	userRepo.users["lonely@example.com"] = &domain.User{Email: "lonely@example.com", Role: domain.RoleMember}

	if _, err := svc.GetMineAsMember(context.Background(), "guest@example.com"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("guest must be forbidden, got %v", err)
	}
	if _, err := svc.GetMineAsMember(context.Background(), "unknown@example.com"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("unknown user must be forbidden, got %v", err)
	}
	if _, err := svc.GetMineAsMember(context.Background(), "lonely@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("member without agreement must be not found, got %v", err)
	}

	agreement, err := svc.GetMineAsMember(context.Background(), "member@example.com")
	if err != nil {
		t.Fatalf("member lookup: %v", err)
	}
	if agreement.UserEmail != "member@example.com" {
		t.Fatalf("wrong agreement returned: %+v", agreement)
	}
}
