package model

import "time"

// User represents a platform account. The rental core never touches this
// type; it only sees the opaque user id carried in session claims.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
