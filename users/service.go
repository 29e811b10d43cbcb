package users

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/gotodo-api/apperror"
	"github.com/user/gotodo-api/auth"
	"github.com/user/gotodo-api/todos"
	"github.com/user/gotodo-api/validation"
)

const (
	maxNameLen     = 64
	maxEmailLen    = 255
	maxPasswordLen = 255

	// pgUniqueViolation is the PostgreSQL error code for unique constraint
	// violations. The application pre-checks uniqueness for field-level
	// messages; this code is the authoritative backstop when a concurrent
	// registration races past the pre-check.
	pgUniqueViolation = "23505"
)

// TodoSource lists the todos owned by a user, for the profile view.
type TodoSource interface {
	ByOwner(ctx context.Context, ownerID int64) ([]todos.Todo, error)
}

// UserService contains the business logic for accounts: registration,
// login with token rotation, profile reads and updates, and self-service
// account closure.
type UserService struct {
	store      Store
	todoSource TodoSource
	bcryptCost int
}

// NewUserService creates a UserService.
func NewUserService(store Store, todoSource TodoSource, bcryptCost int) *UserService {
	return &UserService{store: store, todoSource: todoSource, bcryptCost: bcryptCost}
}

func sanitize(u *auth.User) *UserResponse {
	return &UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// conflictFromPgError maps a unique violation onto the same field-keyed
// ConflictError the pre-check produces, identifying the colliding column
// from the constraint name.
func conflictFromPgError(err error) (*apperror.AppError, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil, false
	}
	fields := map[string][]string{}
	if strings.Contains(pgErr.ConstraintName, "name") {
		fields["name"] = []string{"has already been taken"}
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		fields["email"] = []string{"has already been taken"}
	}
	return apperror.NewConflictError("name or email has already been taken", nil).WithFields(fields), true
}

// checkUnique performs the application-level uniqueness pre-check for name
// and email, skipping the row identified by excludeID so updates don't
// conflict with themselves.
func (s *UserService) checkUnique(ctx context.Context, name, email string, excludeID int64) error {
	fields := map[string][]string{}

	taken, err := s.store.NameInUse(ctx, name, excludeID)
	if err != nil {
		return apperror.NewDatabaseError("failed to check name uniqueness", err)
	}
	if taken {
		fields["name"] = []string{"has already been taken"}
	}

	taken, err = s.store.EmailInUse(ctx, email, excludeID)
	if err != nil {
		return apperror.NewDatabaseError("failed to check email uniqueness", err)
	}
	if taken {
		fields["email"] = []string{"has already been taken"}
	}

	if len(fields) > 0 {
		return apperror.NewConflictError("name or email has already been taken", nil).WithFields(fields)
	}
	return nil
}

// Register validates the payload, enforces name/email uniqueness, hashes
// the password, issues the initial auth token and persists the user. The
// returned token is the caller's live credential.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, string, error) {
	v := validation.New()
	v.Field("name", req.Name, validation.Required(), validation.NonSpace(), validation.MaxLen(maxNameLen))
	v.Field("email", req.Email, validation.Required(), validation.MaxLen(maxEmailLen), validation.Email())
	v.Field("password", req.Password, validation.Required(), validation.NonSpace(), validation.MaxLen(maxPasswordLen))
	if err := v.Err(); err != nil {
		return nil, "", err
	}

	if err := s.checkUnique(ctx, req.Name, req.Email, 0); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, "", apperror.NewInternalError("failed to hash password", err)
	}
	token, err := auth.GenerateToken()
	if err != nil {
		return nil, "", apperror.NewInternalError("failed to generate auth token", err)
	}

	user := &auth.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		AuthToken:    token,
	}
	created, err := s.store.Insert(ctx, user)
	if err != nil {
		if conflict, ok := conflictFromPgError(err); ok {
			return nil, "", conflict
		}
		return nil, "", apperror.NewDatabaseError("failed to create user", err)
	}
	return sanitize(created), token, nil
}

// Login verifies credentials and rotates the auth token. An unknown email
// and a wrong password both come back as not-found-shaped errors so the
// response does not reveal which one it was.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*UserResponse, string, error) {
	v := validation.New()
	v.Field("email", req.Email, validation.Required(), validation.MaxLen(maxEmailLen), validation.Email())
	v.Field("password", req.Password, validation.Required(), validation.MaxLen(maxPasswordLen))
	if err := v.Err(); err != nil {
		return nil, "", err
	}

	user, err := s.store.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperror.NewNotFoundError("Unregistered email address", nil)
		}
		return nil, "", apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", apperror.NewNotFoundError("Login failed", nil)
	}

	token, err := auth.GenerateToken()
	if err != nil {
		return nil, "", apperror.NewInternalError("failed to generate auth token", err)
	}
	if err := s.store.UpdateToken(ctx, user.ID, token); err != nil {
		return nil, "", apperror.NewDatabaseError("failed to rotate auth token", err)
	}
	return sanitize(user), token, nil
}

// List returns the public fields of every user. No authentication
// required.
func (s *UserService) List(ctx context.Context) ([]UserResponse, error) {
	result, err := s.store.List(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	return result, nil
}

// Show returns a user's public profile together with their owned todos.
func (s *UserService) Show(ctx context.Context, id int64) (*UserWithTodos, error) {
	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	owned, err := s.todoSource.ByOwner(ctx, id)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list user todos", err)
	}
	return &UserWithTodos{UserResponse: *sanitize(user), Todos: owned}, nil
}

// Update changes a user's name and email. The caller's token must belong
// to the user being edited; uniqueness is checked excluding the target row
// so a user keeping their own name or email does not self-conflict.
func (s *UserService) Update(ctx context.Context, caller *auth.User, id int64, req UpdateRequest) (*UserResponse, error) {
	v := validation.New()
	v.Field("name", req.Name, validation.Required(), validation.NonSpace(), validation.MaxLen(maxNameLen))
	v.Field("email", req.Email, validation.Required(), validation.MaxLen(maxEmailLen), validation.Email())
	if err := v.Err(); err != nil {
		return nil, err
	}

	target, err := s.store.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	if err := auth.AuthorizeOwner(caller, target.ID); err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, req.Name, req.Email, target.ID); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateProfile(ctx, target.ID, req.Name, req.Email)
	if err != nil {
		if conflict, ok := conflictFromPgError(err); ok {
			return nil, conflict
		}
		return nil, apperror.NewDatabaseError("failed to update user", err)
	}
	return sanitize(updated), nil
}

// Delete closes the caller's own account; the caller is identified
// strictly by token, so there is no way to delete someone else's account.
// Owned todos are removed by the cascading foreign key. Returns the prior
// snapshot.
func (s *UserService) Delete(ctx context.Context, caller *auth.User) (*UserResponse, error) {
	snapshot := sanitize(caller)
	n, err := s.store.Delete(ctx, caller.ID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to delete user", err)
	}
	if n == 0 {
		return nil, apperror.NewNotFoundError("User not found", nil)
	}
	return snapshot, nil
}
