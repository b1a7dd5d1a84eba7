package service

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/crestview/residency-api/internal/domain"
	"github.com/crestview/residency-api/internal/repository"
	"github.com/crestview/residency-api/pkg/events"
	"github.com/crestview/residency-api/pkg/logger"
)

// BillingService bridges the payment gateway and keeps the append-only
// payment ledger.
type BillingService interface {
	CreateIntent(ctx context.Context, rent int64) (*domain.PaymentIntentRes, error)
	Record(ctx context.Context, req *domain.RecordPaymentReq) (*domain.Payment, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Payment, error)
}

type billingService struct {
	stripeClient *client.API
	paymentRepo  repository.PaymentRepository
	eventBus     events.Publisher
}

func NewBillingService(stripeKey string, paymentRepo repository.PaymentRepository, eventBus events.Publisher) BillingService {
	sc := &client.API{}
	sc.Init(stripeKey, nil)

	return &billingService{
		stripeClient: sc,
		paymentRepo:  paymentRepo,
		eventBus:     eventBus,
	}
}

func (s *billingService) CreateIntent(ctx context.Context, rent int64) (*domain.PaymentIntentRes, error) {
	if rent <= 0 {
		return nil, fmt.Errorf("%w: rent must be positive", domain.ErrValidation)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(rent * 100), // cents
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	intent, err := s.stripeClient.PaymentIntents.New(params)
	if err != nil {
		logger.ErrorContext(ctx, "Stripe payment intent failed", "error", err)
		return nil, fmt.Errorf("%w: payment gateway error", domain.ErrUpstream)
	}

	return &domain.PaymentIntentRes{ClientSecret: intent.ClientSecret}, nil
}

func (s *billingService) Record(ctx context.Context, req *domain.RecordPaymentReq) (*domain.Payment, error) {
	if req.Email == "" || req.Amount <= 0 {
		return nil, fmt.Errorf("%w: email and amount are required", domain.ErrValidation)
	}

	payment, err := s.paymentRepo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	event := events.PaymentRecordedEvent{
		PaymentID: payment.ID,
		Email:     payment.Email,
		Amount:    payment.Amount,
		PaidAt:    payment.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.PaymentRecorded, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish payment recorded event", "error", err, "payment_id", payment.ID)
	}

	return payment, nil
}

func (s *billingService) ListByEmail(ctx context.Context, email string) ([]domain.Payment, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	return s.paymentRepo.ListByEmail(ctx, email)
}
