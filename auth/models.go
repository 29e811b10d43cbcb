package auth

import "time"

// User represents a user row. The password hash and the live auth token are
// never serialized; response DTOs in the users package expose the public
// fields explicitly.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AuthToken    string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
