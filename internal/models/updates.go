package models

import "time"

// UserUpdate carries the optional profile fields of an administrative
// user update; nil fields are left untouched.
type UserUpdate struct {
	Email     *string
	Firstname *string
	Lastname  *string
	Phone     *string
	Role      *Role
}

// SubscriptionUpdate carries the optional fields of a subscription
// update; nil fields are left untouched.
type SubscriptionUpdate struct {
	OfferID *int64
	Price   *float64
	Start   *time.Time
	End     *time.Time
}

// NewsletterUpdate carries the optional fields of a newsletter update;
// nil fields are left untouched.
type NewsletterUpdate struct {
	Title       *string
	Highlight   *string
	Content     *string
	Filename    *string
	Mime        *string
	Size        *int64
	URL         *string
	EditorID    *int64
	CategoryID  *int64
	PublishedAt *time.Time
}

// SubscriptionInfo is a subscription joined with the owning user, as
// listed on the admin dashboard.
type SubscriptionInfo struct {
	Subscription
	UserEmail string  `json:"user_email"`
	OfferName *string `json:"offre,omitempty"`
}

// LectureInfo is a reading-progress row joined with its newsletter
// summary.
type LectureInfo struct {
	Page         int       `json:"page"`
	NewsletterID int64     `json:"journal_id"`
	Title        string    `json:"title"`
	URL          *string   `json:"url,omitempty"`
	Highlight    *string   `json:"gros_titre,omitempty"`
	PublishedAt  time.Time `json:"date_journal"`
	EditorName   string    `json:"editeur"`
	CategoryName string    `json:"categorie"`
}

// OfferCount is an offer with the number of subscriptions referencing it.
type OfferCount struct {
	OfferID *int64 `json:"offre_id"`
	Name    string `json:"nom"`
	Count   int    `json:"count"`
}

// MonthCount is one statistics bucket holding a row count.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthAmount is one statistics bucket holding a summed price.
type MonthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}
