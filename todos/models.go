// Package todos implements creation, listing, reading, updating and
// deletion of todo items, each owned by exactly one user.
package todos

import "time"

// Todo represents a todo row. UserID identifies the sole owner and is
// immutable after creation.
type Todo struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	IsDone    bool      `json:"isDone"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OwnerSummary is the reduced view of a todo's owner attached to listings.
type OwnerSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TodoWithOwner is a todo annotated with its owner summary.
type TodoWithOwner struct {
	Todo
	User OwnerSummary `json:"user"`
}
