package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/crestview/residency-api/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// NoopPublisher drops events; used when the bus is unreachable in dev.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }

// Event subjects
const (
	AgreementSubmitted = "agreement.submitted"
	AgreementAccepted  = "agreement.accepted"
	AgreementRejected  = "agreement.rejected"
	RoleChanged        = "user.role.changed"
	PaymentRecorded    = "payment.recorded"
	AnnouncementPosted = "announcement.posted"
)

// Event payloads
type AgreementSubmittedEvent struct {
	AgreementID int64     `json:"agreement_id"`
	UserEmail   string    `json:"user_email"`
	Block       string    `json:"block"`
	Floor       string    `json:"floor"`
	ApartmentNo string    `json:"apartment_no"`
	Rent        int64     `json:"rent"`
	CreatedAt   time.Time `json:"created_at"`
}

type AgreementDecisionEvent struct {
	AgreementID int64     `json:"agreement_id"`
	UserEmail   string    `json:"user_email"`
	Decision    string    `json:"decision"` // accepted or rejected
	DecidedAt   time.Time `json:"decided_at"`
}

type RoleChangedEvent struct {
	UserEmail string    `json:"user_email"`
	NewRole   string    `json:"new_role"`
	ChangedAt time.Time `json:"changed_at"`
}

type PaymentRecordedEvent struct {
	PaymentID int64     `json:"payment_id"`
	Email     string    `json:"email"`
	Amount    int64     `json:"amount"`
	PaidAt    time.Time `json:"paid_at"`
}

type AnnouncementPostedEvent struct {
	AnnouncementID int64     `json:"announcement_id"`
	Title          string    `json:"title"`
	Type           string    `json:"type"`
	PostedAt       time.Time `json:"posted_at"`
}
