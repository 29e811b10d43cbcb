package todos

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/user/gotodo-api/apperror"
	"github.com/user/gotodo-api/auth"
	"github.com/user/gotodo-api/validation"
)

const maxTitleLen = 255

// TodoService contains the business logic for todo items. Listing and
// single-item reads are open; every mutation of an existing row runs the
// ownership check first.
type TodoService struct {
	store Store
}

// NewTodoService creates a TodoService over the given store.
func NewTodoService(store Store) *TodoService {
	return &TodoService{store: store}
}

// List returns every todo together with its owner summary. No
// authentication required.
func (s *TodoService) List(ctx context.Context) ([]TodoWithOwner, error) {
	result, err := s.store.ListWithOwners(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list todos", err)
	}
	return result, nil
}

// Create validates the payload and persists a new todo owned by the
// caller. An absent isDone defaults to false.
func (s *TodoService) Create(ctx context.Context, caller *auth.User, req CreateRequest) (*Todo, error) {
	v := validation.New()
	v.Field("title", req.Title, validation.Required(), validation.NonSpace(), validation.MaxLen(maxTitleLen))
	if err := v.Err(); err != nil {
		return nil, err
	}

	todo := &Todo{
		Title:  req.Title,
		UserID: caller.ID,
	}
	if req.IsDone != nil {
		todo.IsDone = *req.IsDone
	}

	created, err := s.store.Insert(ctx, todo)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create todo", err)
	}
	return created, nil
}

// Show returns a single todo by id. No authentication required.
func (s *TodoService) Show(ctx context.Context, id int64) (*Todo, error) {
	todo, err := s.store.TodoByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Todo not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get todo", err)
	}
	return todo, nil
}

// Update replaces a todo's title and completion flag. Both fields are
// required, the target must exist and the caller must own it.
func (s *TodoService) Update(ctx context.Context, caller *auth.User, id int64, req UpdateRequest) (*Todo, error) {
	v := validation.New()
	v.Field("title", req.Title, validation.Required(), validation.NonSpace(), validation.MaxLen(maxTitleLen))
	v.Check("isDone", req.IsDone != nil, "is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	todo, err := s.store.TodoByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Todo not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get todo", err)
	}
	if err := auth.AuthorizeOwner(caller, todo.UserID); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, id, req.Title, *req.IsDone)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to update todo", err)
	}
	return updated, nil
}

// Delete removes a todo owned by the caller and returns the prior
// snapshot.
func (s *TodoService) Delete(ctx context.Context, caller *auth.User, id int64) (*Todo, error) {
	todo, err := s.store.TodoByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Todo not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get todo", err)
	}
	if err := auth.AuthorizeOwner(caller, todo.UserID); err != nil {
		return nil, err
	}

	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to delete todo", err)
	}
	if n == 0 {
		return nil, apperror.NewNotFoundError("Todo not found", nil)
	}
	return todo, nil
}
