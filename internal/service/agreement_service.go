package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crestview/residency-api/internal/domain"
	"github.com/crestview/residency-api/internal/repository"
	"github.com/crestview/residency-api/pkg/events"
	"github.com/crestview/residency-api/pkg/logger"
	"github.com/crestview/residency-api/pkg/mailer"
)

// AgreementService owns the agreement lifecycle and the role transitions it
// drives. It is the only writer of user roles outside the admin role edit.
type AgreementService interface {
	Submit(ctx context.Context, req *domain.SubmitAgreementReq) (*domain.Agreement, error)
	Accept(ctx context.Context, id int64, email string) (*domain.DecisionResult, error)
	Reject(ctx context.Context, id int64) (int64, error)
	ListForUser(ctx context.Context, email string) ([]domain.Agreement, error)
	GetMineAsMember(ctx context.Context, email string) (*domain.Agreement, error)
}

type agreementService struct {
	agreementRepo repository.AgreementRepository
	userRepo      repository.UserRepository
	eventBus      events.Publisher
	mail          mailer.Service
}

func NewAgreementService(
	agreementRepo repository.AgreementRepository,
	userRepo repository.UserRepository,
	eventBus events.Publisher,
	mail mailer.Service,
) AgreementService {
	return &agreementService{
		agreementRepo: agreementRepo,
		userRepo:      userRepo,
		eventBus:      eventBus,
		mail:          mail,
	}
}

func (s *agreementService) Submit(ctx context.Context, req *domain.SubmitAgreementReq) (*domain.Agreement, error) {
	if req.UserEmail == "" || req.Block == "" || req.Floor == "" || req.ApartmentNo == "" || req.Rent == 0 {
		return nil, fmt.Errorf("%w: user_email, block, floor, apartment_no and rent are required", domain.ErrValidation)
	}

	// Friendly pre-check; the pending-agreement unique index is what actually
	// holds the invariant when two submits race past this read.
	existing, err := s.agreementRepo.FindByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to look up agreements: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user already has an agreement", domain.ErrConflict)
	}

	agreement, err := s.agreementRepo.Create(ctx, req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAgreement) {
			return nil, fmt.Errorf("%w: user already has an agreement", domain.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create agreement: %w", err)
	}

	event := events.AgreementSubmittedEvent{
		AgreementID: agreement.ID,
		UserEmail:   agreement.UserEmail,
		Block:       agreement.Block,
		Floor:       agreement.Floor,
		ApartmentNo: agreement.ApartmentNo,
		Rent:        agreement.Rent,
		CreatedAt:   agreement.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.AgreementSubmitted, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish agreement submitted event", "error", err, "agreement_id", agreement.ID)
	}

	return agreement, nil
}

func (s *agreementService) Accept(ctx context.Context, id int64, email string) (*domain.DecisionResult, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	// The caller-supplied email must match the agreement's owner when the
	// agreement resolves. An unknown id still runs both updates; zero-affected
	// rows are reported back, never crashed on.
	agreement, err := s.agreementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load agreement: %w", err)
	}
	if agreement != nil && !agreement.IsOwner(email) {
		return nil, fmt.Errorf("%w: email does not match agreement owner", domain.ErrValidation)
	}

	result, err := s.agreementRepo.Decide(ctx, id, email)
	if err != nil {
		return nil, fmt.Errorf("failed to accept agreement: %w", err)
	}

	if result.AgreementUpdated == 0 {
		logger.WarnContext(ctx, "Accept matched no agreement", "agreement_id", id)
	}

	s.notifyDecision(ctx, id, email, "accepted", agreement)

	event := events.RoleChangedEvent{UserEmail: email, NewRole: string(domain.RoleMember), ChangedAt: time.Now()}
	if err := s.eventBus.Publish(ctx, events.RoleChanged, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish role changed event", "error", err, "email", email)
	}

	return result, nil
}

func (s *agreementService) Reject(ctx context.Context, id int64) (int64, error) {
	agreement, err := s.agreementRepo.GetByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to load agreement: %w", err)
	}

	affected, err := s.agreementRepo.MarkChecked(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to reject agreement: %w", err)
	}

	email := ""
	if agreement != nil {
		email = agreement.UserEmail
	}
	s.notifyDecision(ctx, id, email, "rejected", agreement)

	return affected, nil
}

func (s *agreementService) ListForUser(ctx context.Context, email string) ([]domain.Agreement, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	return s.agreementRepo.ListByEmail(ctx, email)
}

func (s *agreementService) GetMineAsMember(ctx context.Context, email string) (*domain.Agreement, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || user.Role != domain.RoleMember {
		return nil, fmt.Errorf("%w: member only", domain.ErrForbidden)
	}

	agreement, err := s.agreementRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up agreement: %w", err)
	}
	if agreement == nil {
		return nil, fmt.Errorf("%w: no agreement for %s", domain.ErrNotFound, email)
	}
	return agreement, nil
}

// notifyDecision publishes the decision event and sends the decision email.
// Both are best effort; failures are logged, never surfaced to the admin.
func (s *agreementService) notifyDecision(ctx context.Context, id int64, email, decision string, agreement *domain.Agreement) {
	event := events.AgreementDecisionEvent{
		AgreementID: id,
		UserEmail:   email,
		Decision:    decision,
		DecidedAt:   time.Now(),
	}
	subject := events.AgreementAccepted
	if decision == "rejected" {
		subject = events.AgreementRejected
	}
	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish agreement decision event", "error", err, "agreement_id", id)
	}

	if email == "" {
		return
	}
	apartmentNo := ""
	if agreement != nil {
		apartmentNo = agreement.ApartmentNo
	}
	if err := s.mail.SendAgreementDecision(email, apartmentNo, decision); err != nil {
		logger.ErrorContext(ctx, "Failed to send decision email", "error", err, "email", email)
	}
}
