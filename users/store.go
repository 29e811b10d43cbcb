package users

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/gotodo-api/auth"
)

// Store is the persistence surface the user service depends on. Row-absent
// lookups return pgx.ErrNoRows so callers can translate them uniformly.
type Store interface {
	Insert(ctx context.Context, user *auth.User) (*auth.User, error)
	UserByID(ctx context.Context, id int64) (*auth.User, error)
	UserByEmail(ctx context.Context, email string) (*auth.User, error)
	UserByToken(ctx context.Context, token string) (*auth.User, error)
	List(ctx context.Context) ([]UserResponse, error)
	NameInUse(ctx context.Context, name string, excludeID int64) (bool, error)
	EmailInUse(ctx context.Context, email string, excludeID int64) (bool, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) (*auth.User, error)
	UpdateToken(ctx context.Context, id int64, token string) error
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

const userColumns = `id, name, email, password_hash, auth_token, created_at`

func (s *PGStore) scanUser(row interface{ Scan(dest ...any) error }) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.AuthToken, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Insert persists a new user and fills in the store-assigned id and
// creation time.
func (s *PGStore) Insert(ctx context.Context, user *auth.User) (*auth.User, error) {
	query := `INSERT INTO users (name, email, password_hash, auth_token)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at`
	err := s.db.QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash, user.AuthToken).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UserByID fetches a user by primary key.
func (s *PGStore) UserByID(ctx context.Context, id int64) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRow(ctx, query, id))
}

// UserByEmail fetches a user by email address.
func (s *PGStore) UserByEmail(ctx context.Context, email string) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(s.db.QueryRow(ctx, query, email))
}

// UserByToken fetches the user holding the given auth token. This is the
// lookup behind auth.Guard.ResolveCaller.
func (s *PGStore) UserByToken(ctx context.Context, token string) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_token = $1`
	return s.scanUser(s.db.QueryRow(ctx, query, token))
}

// List returns the public fields of every user.
func (s *PGStore) List(ctx context.Context) ([]UserResponse, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, email FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []UserResponse{}
	for rows.Next() {
		var u UserResponse
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// NameInUse reports whether another user (any row but excludeID) already
// holds the given name.
func (s *PGStore) NameInUse(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE name = $1 AND id <> $2)`
	err := s.db.QueryRow(ctx, query, name, excludeID).Scan(&exists)
	return exists, err
}

// EmailInUse reports whether another user already holds the given email.
func (s *PGStore) EmailInUse(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`
	err := s.db.QueryRow(ctx, query, email, excludeID).Scan(&exists)
	return exists, err
}

// UpdateProfile persists new name and email for a user and returns the
// updated row.
func (s *PGStore) UpdateProfile(ctx context.Context, id int64, name, email string) (*auth.User, error) {
	query := `UPDATE users SET name = $1, email = $2 WHERE id = $3
	          RETURNING ` + userColumns
	return s.scanUser(s.db.QueryRow(ctx, query, name, email, id))
}

// UpdateToken replaces the user's live auth token. A single-row write, so
// the previous token stops authenticating the moment this commits.
func (s *PGStore) UpdateToken(ctx context.Context, id int64, token string) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET auth_token = $1 WHERE id = $2`, token, id)
	return err
}

// Delete removes a user row and returns the number of rows affected. Owned
// todos go with it via the ON DELETE CASCADE foreign key.
func (s *PGStore) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
