package models

import "time"

// User represents a registered account.
// EditorID is set only for ADMIN accounts and identifies the publisher
// the account administers.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Firstname    *string    `json:"firstname,omitempty"`
	Lastname     *string    `json:"lastname,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Role         Role       `json:"role"`
	Activated    bool       `json:"activated"`
	EditorID     *int64     `json:"editor_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Identity is the caller identity resolved by the auth middleware and
// attached to the request context for downstream handlers and services.
type Identity struct {
	UserID   int64
	Email    string
	Role     Role
	EditorID *int64
}
