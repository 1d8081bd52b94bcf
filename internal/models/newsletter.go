package models

import "time"

// Newsletter is a published issue ("journal") belonging to one publisher
// and one category. PublishedAt is the editorial date and is distinct
// from CreatedAt.
type Newsletter struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Highlight   *string   `json:"gros_titre,omitempty"`
	Content     *string   `json:"content,omitempty"`
	Filename    *string   `json:"filename,omitempty"`
	Mime        *string   `json:"mime,omitempty"`
	Size        *int64    `json:"size,omitempty"`
	URL         *string   `json:"url,omitempty"`
	EditorID    int64     `json:"editor_id"`
	CategoryID  int64     `json:"categorie_id"`
	PublishedAt time.Time `json:"date_journal"`
	CreatedAt   time.Time `json:"created_at"`

	EditorName   string `json:"editeur,omitempty"`
	CategoryName string `json:"categorie,omitempty"`
}

// Category is a shared classification tag for newsletters.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Lecture tracks the last viewed page of a newsletter per user.
type Lecture struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	NewsletterID int64     `json:"journal_id"`
	Page         int       `json:"page"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Advertisement is a dashboard-managed banner; only active ones are
// publicly visible.
type Advertisement struct {
	ID          int64     `json:"id"`
	Title       string    `json:"titre"`
	Description *string   `json:"description,omitempty"`
	ImageURL    string    `json:"image_url"`
	Active      bool      `json:"actif"`
	CreatedAt   time.Time `json:"created_at"`
}
