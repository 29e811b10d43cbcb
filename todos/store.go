package todos

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistence surface the todo service depends on. Row-absent
// lookups return pgx.ErrNoRows.
type Store interface {
	Insert(ctx context.Context, todo *Todo) (*Todo, error)
	TodoByID(ctx context.Context, id int64) (*Todo, error)
	ListWithOwners(ctx context.Context) ([]TodoWithOwner, error)
	ByOwner(ctx context.Context, ownerID int64) ([]Todo, error)
	Update(ctx context.Context, id int64, title string, isDone bool) (*Todo, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// PGStore is the PostgreSQL implementation of Store.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a PGStore over the given pool.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const todoColumns = `id, title, is_done, user_id, created_at`

func (s *PGStore) scanTodo(row interface{ Scan(dest ...any) error }) (*Todo, error) {
	var t Todo
	err := row.Scan(&t.ID, &t.Title, &t.IsDone, &t.UserID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Insert persists a new todo and fills in the store-assigned id and
// creation time.
func (s *PGStore) Insert(ctx context.Context, todo *Todo) (*Todo, error) {
	query := `INSERT INTO todos (title, is_done, user_id)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`
	err := s.db.QueryRow(ctx, query, todo.Title, todo.IsDone, todo.UserID).
		Scan(&todo.ID, &todo.CreatedAt)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// TodoByID fetches a todo by primary key.
func (s *PGStore) TodoByID(ctx context.Context, id int64) (*Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`
	return s.scanTodo(s.db.QueryRow(ctx, query, id))
}

// ListWithOwners returns every todo joined with its owner's public fields.
func (s *PGStore) ListWithOwners(ctx context.Context) ([]TodoWithOwner, error) {
	query := `SELECT t.id, t.title, t.is_done, t.user_id, t.created_at,
	                 u.id, u.name, u.email
	          FROM todos t
	          JOIN users u ON u.id = t.user_id
	          ORDER BY t.id`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []TodoWithOwner{}
	for rows.Next() {
		var t TodoWithOwner
		err := rows.Scan(&t.ID, &t.Title, &t.IsDone, &t.UserID, &t.CreatedAt,
			&t.User.ID, &t.User.Name, &t.User.Email)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// ByOwner returns all todos owned by the given user.
func (s *PGStore) ByOwner(ctx context.Context, ownerID int64) ([]Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = $1 ORDER BY id`
	rows, err := s.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Todo{}
	for rows.Next() {
		var t Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.IsDone, &t.UserID, &t.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// Update persists a todo's title and completion flag and returns the
// updated row. The owner is never touched.
func (s *PGStore) Update(ctx context.Context, id int64, title string, isDone bool) (*Todo, error) {
	query := `UPDATE todos SET title = $1, is_done = $2 WHERE id = $3
	          RETURNING ` + todoColumns
	return s.scanTodo(s.db.QueryRow(ctx, query, title, isDone, id))
}

// Delete removes a todo row and returns the number of rows affected.
func (s *PGStore) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
