// Package users implements registration, login, profile management and
// account closure.
package users

import "github.com/user/gotodo-api/todos"

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Name     string `json:"name" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"pw12345"`
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"pw12345"`
}

// UpdateRequest is the profile update payload. Both fields are required.
type UpdateRequest struct {
	Name  string `json:"name" example:"alice"`
	Email string `json:"email" example:"alice@example.com"`
}

// UserResponse is the sanitized public view of a user. The password hash
// and auth token never appear in any response.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserWithTodos is the profile view including the user's owned todos.
type UserWithTodos struct {
	UserResponse
	Todos []todos.Todo `json:"todos"`
}
