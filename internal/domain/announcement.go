package domain

import "time"

// Announcement is an append-only notice; never updated after insertion.
type Announcement struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Importance  string    `json:"importance"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateAnnouncementReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Importance  string `json:"importance"`
	Type        string `json:"type"`
}
