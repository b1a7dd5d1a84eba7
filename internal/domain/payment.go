package domain

import "time"

// Payment is an append-only ledger entry; never updated after insertion.
type Payment struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Amount      int64     `json:"amount"`
	Month       string    `json:"month"`
	ApartmentNo string    `json:"apartment_no"`
	CreatedAt   time.Time `json:"created_at"`
}

type RecordPaymentReq struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Month       string `json:"month"`
	ApartmentNo string `json:"apartment_no"`
}

type PaymentIntentRes struct {
	ClientSecret string `json:"clientSecret"`
}
