// Package auth implements the token guard shared by the users and todos
// modules: issuing and rotating the opaque bearer token, resolving a request
// token to its user, and enforcing record ownership.
package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/user/gotodo-api/apperror"
)

// UserSource resolves an auth token to the user that currently holds it.
// The users package provides the PostgreSQL implementation.
type UserSource interface {
	UserByToken(ctx context.Context, token string) (*User, error)
}

// Guard resolves caller identity and enforces ownership. It is shared by
// every handler that mutates a protected resource.
type Guard struct {
	users UserSource
}

// NewGuard creates a Guard backed by the given user source.
func NewGuard(users UserSource) *Guard {
	return &Guard{users: users}
}

// ResolveCaller maps a request token to the user that owns it. A missing
// token and an unknown token both fail with an AuthError; the distinct
// messages match the ones callers have always received.
func (g *Guard) ResolveCaller(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, apperror.NewAuthError("authentication token is required", nil)
	}
	user, err := g.users.UserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError("Please login", nil)
		}
		return nil, apperror.NewDatabaseError("failed to resolve auth token", err)
	}
	return user, nil
}

// AuthorizeOwner fails with a ForbiddenError unless caller owns the
// resource. It runs before every mutation of an existing row.
func AuthorizeOwner(caller *User, ownerID int64) error {
	if caller == nil || caller.ID != ownerID {
		return apperror.NewForbiddenError("you do not have permission to modify this resource", nil)
	}
	return nil
}
