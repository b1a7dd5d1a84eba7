package domain

import (
	"strings"
	"time"
)

type AgreementStatus string

const (
	// Both accept and reject land on "checked"; the round-trip effect of an
	// acceptance is the correlated role change on the user, not the status.
	AgreementPending AgreementStatus = "pending"
	AgreementChecked AgreementStatus = "checked"
)

type Agreement struct {
	ID          int64           `json:"id"`
	UserEmail   string          `json:"user_email"`
	Block       string          `json:"block"`
	Floor       string          `json:"floor"`
	ApartmentNo string          `json:"apartment_no"`
	Rent        int64           `json:"rent"`
	Status      AgreementStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsOwner reports whether the given email owns this agreement.
func (a *Agreement) IsOwner(email string) bool {
	return strings.EqualFold(a.UserEmail, email)
}

type SubmitAgreementReq struct {
	UserEmail   string `json:"user_email"`
	Block       string `json:"block"`
	Floor       string `json:"floor"`
	ApartmentNo string `json:"apartment_no"`
	Rent        int64  `json:"rent"`
}

// DecisionResult reports both halves of an accept: the agreement status
// update and the role update. Rows affected are surfaced so a caller can see
// a no-op (unknown id) or a partial application.
type DecisionResult struct {
	AgreementUpdated int64 `json:"agreement_updated"`
	UserUpdated      int64 `json:"user_updated"`
}
