package models

import "time"

// Subscription binds a user to an offer for a time window. Rows are
// additive history: a user may accumulate many rows over time, the
// "current" one is resolved at read time (latest end date still valid).
// Price is captured at creation and does not track later offer changes.
type Subscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	OfferID   *int64    `json:"offre_id"`
	Price     float64   `json:"prix"`
	Start     time.Time `json:"debut"`
	End       time.Time `json:"fin"`
	CreatedAt time.Time `json:"created_at"`
}

// Offer is a purchasable subscription plan.
type Offer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"nom"`
	Price       float64   `json:"prix"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
