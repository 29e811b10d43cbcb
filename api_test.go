package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/gotodo-api/auth"
	"github.com/user/gotodo-api/todos"
	"github.com/user/gotodo-api/users"
)

// memDB is a shared in-memory backend implementing both stores, including
// the cascade the todos.user_id foreign key provides in PostgreSQL.
type memDB struct {
	nextUserID int64
	nextTodoID int64
	users      map[int64]auth.User
	todos      map[int64]todos.Todo
}

func newMemDB() *memDB {
	return &memDB{
		users: make(map[int64]auth.User),
		todos: make(map[int64]todos.Todo),
	}
}

type memUserStore struct{ db *memDB }

func (s *memUserStore) Insert(_ context.Context, user *auth.User) (*auth.User, error) {
	s.db.nextUserID++
	user.ID = s.db.nextUserID
	user.CreatedAt = time.Now()
	s.db.users[user.ID] = *user
	return user, nil
}

func (s *memUserStore) UserByID(_ context.Context, id int64) (*auth.User, error) {
	row, ok := s.db.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &row, nil
}

func (s *memUserStore) UserByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, row := range s.db.users {
		if row.Email == email {
			row := row
			return &row, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *memUserStore) UserByToken(_ context.Context, token string) (*auth.User, error) {
	for _, row := range s.db.users {
		if row.AuthToken == token {
			row := row
			return &row, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *memUserStore) List(_ context.Context) ([]users.UserResponse, error) {
	result := []users.UserResponse{}
	for _, row := range s.db.users {
		result = append(result, users.UserResponse{ID: row.ID, Name: row.Name, Email: row.Email})
	}
	return result, nil
}

func (s *memUserStore) NameInUse(_ context.Context, name string, excludeID int64) (bool, error) {
	for _, row := range s.db.users {
		if row.Name == name && row.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) EmailInUse(_ context.Context, email string, excludeID int64) (bool, error) {
	for _, row := range s.db.users {
		if row.Email == email && row.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) UpdateProfile(_ context.Context, id int64, name, email string) (*auth.User, error) {
	row, ok := s.db.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	row.Name = name
	row.Email = email
	s.db.users[id] = row
	return &row, nil
}

func (s *memUserStore) UpdateToken(_ context.Context, id int64, token string) error {
	row, ok := s.db.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	row.AuthToken = token
	s.db.users[id] = row
	return nil
}

func (s *memUserStore) Delete(_ context.Context, id int64) (int64, error) {
	if _, ok := s.db.users[id]; !ok {
		return 0, nil
	}
	delete(s.db.users, id)
	for todoID, todo := range s.db.todos {
		if todo.UserID == id {
			delete(s.db.todos, todoID)
		}
	}
	return 1, nil
}

type memTodoStore struct{ db *memDB }

func (s *memTodoStore) Insert(_ context.Context, todo *todos.Todo) (*todos.Todo, error) {
	s.db.nextTodoID++
	todo.ID = s.db.nextTodoID
	todo.CreatedAt = time.Now()
	s.db.todos[todo.ID] = *todo
	return todo, nil
}

func (s *memTodoStore) TodoByID(_ context.Context, id int64) (*todos.Todo, error) {
	row, ok := s.db.todos[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &row, nil
}

func (s *memTodoStore) ListWithOwners(_ context.Context) ([]todos.TodoWithOwner, error) {
	result := []todos.TodoWithOwner{}
	for _, row := range s.db.todos {
		owner := s.db.users[row.UserID]
		result = append(result, todos.TodoWithOwner{
			Todo: row,
			User: todos.OwnerSummary{ID: owner.ID, Name: owner.Name, Email: owner.Email},
		})
	}
	return result, nil
}

func (s *memTodoStore) ByOwner(_ context.Context, ownerID int64) ([]todos.Todo, error) {
	result := []todos.Todo{}
	for _, row := range s.db.todos {
		if row.UserID == ownerID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (s *memTodoStore) Update(_ context.Context, id int64, title string, isDone bool) (*todos.Todo, error) {
	row, ok := s.db.todos[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	row.Title = title
	row.IsDone = isDone
	s.db.todos[id] = row
	return &row, nil
}

func (s *memTodoStore) Delete(_ context.Context, id int64) (int64, error) {
	if _, ok := s.db.todos[id]; !ok {
		return 0, nil
	}
	delete(s.db.todos, id)
	return 1, nil
}

func newTestServer() http.Handler {
	db := newMemDB()
	userStore := &memUserStore{db: db}
	todoStore := &memTodoStore{db: db}

	guard := auth.NewGuard(userStore)
	userService := users.NewUserService(userStore, todoStore, bcrypt.MinCost)
	todoService := todos.NewTodoService(todoStore)

	return newRouter(guard, users.NewUserHandlers(userService), todos.NewTodoHandlers(todoService))
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Result, out))
}

func TestAPIScenarios(t *testing.T) {
	srv := newTestServer()

	// Scenario A: register alice.
	w := doJSON(t, srv, http.MethodPost, "/v1/auth/sign_up", "", map[string]string{
		"name": "alice", "email": "alice@x.com", "password": "pw12345",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tokenA := w.Header().Get(auth.TokenHeader)
	require.Len(t, tokenA, 64)

	var alice users.UserResponse
	decodeResult(t, w, &alice)
	require.Equal(t, "alice", alice.Name)
	require.NotContains(t, w.Body.String(), "pw12345", "plaintext password never appears in a response")
	require.NotContains(t, w.Body.String(), "password")

	// A second user for ownership checks.
	w = doJSON(t, srv, http.MethodPost, "/v1/auth/sign_up", "", map[string]string{
		"name": "bob", "email": "bob@x.com", "password": "pw67890",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tokenBob := w.Header().Get(auth.TokenHeader)

	// Scenario B: alice creates a todo.
	w = doJSON(t, srv, http.MethodPost, "/v1/todos", tokenA, map[string]interface{}{"title": "buy milk"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created todos.Todo
	decodeResult(t, w, &created)
	require.Equal(t, alice.ID, created.UserID)
	require.False(t, created.IsDone)

	// Scenario C: bob cannot update alice's todo.
	w = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/v1/todos/%d", created.ID), tokenBob,
		map[string]interface{}{"title": "hijack", "isDone": true})
	require.Equal(t, http.StatusForbidden, w.Code)

	// Scenario D: alice logs in again; the old token stops working.
	w = doJSON(t, srv, http.MethodPost, "/v1/auth/sign_in", "", map[string]string{
		"email": "alice@x.com", "password": "pw12345",
	})
	require.Equal(t, http.StatusOK, w.Code)
	tokenA2 := w.Header().Get(auth.TokenHeader)
	require.NotEqual(t, tokenA, tokenA2)

	w = doJSON(t, srv, http.MethodPost, "/v1/todos", tokenA, map[string]interface{}{"title": "stale token"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/v1/todos/%d", created.ID), tokenA2,
		map[string]interface{}{"title": "buy oat milk", "isDone": true})
	require.Equal(t, http.StatusOK, w.Code)

	// Scenario E: alice resigns; her profile and todos are gone.
	w = doJSON(t, srv, http.MethodDelete, "/v1/auth/resign", tokenA2, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/v1/users/%d", alice.ID), "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/v1/todos/%d", created.ID), "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIStatusCodes(t *testing.T) {
	srv := newTestServer()

	w := doJSON(t, srv, http.MethodPost, "/v1/auth/sign_up", "", map[string]string{
		"name": "alice", "email": "alice@x.com", "password": "pw12345",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	token := w.Header().Get(auth.TokenHeader)

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodPost, "/v1/auth/sign_up", "", map[string]string{
			"name": "alice", "email": "alice@x.com", "password": "pw12345",
		})
		require.Equal(t, http.StatusConflict, w.Code)
		require.Contains(t, w.Body.String(), "fields")
	})

	t.Run("validation failure returns field map", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodPost, "/v1/auth/sign_up", "", map[string]string{
			"name": " ", "email": "bad", "password": "",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Error  string              `json:"error"`
			Fields map[string][]string `json:"fields"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Contains(t, resp.Fields, "name")
		require.Contains(t, resp.Fields, "email")
		require.Contains(t, resp.Fields, "password")
	})

	t.Run("login failure and unknown email are the same shape", func(t *testing.T) {
		unknown := doJSON(t, srv, http.MethodPost, "/v1/auth/sign_in", "", map[string]string{
			"email": "ghost@x.com", "password": "pw12345",
		})
		wrongPw := doJSON(t, srv, http.MethodPost, "/v1/auth/sign_in", "", map[string]string{
			"email": "alice@x.com", "password": "wrong",
		})
		require.Equal(t, http.StatusNotFound, unknown.Code)
		require.Equal(t, http.StatusNotFound, wrongPw.Code)
	})

	t.Run("mutations without a token are rejected before anything else", func(t *testing.T) {
		// Unknown todo id plus missing token must yield 401, not 404.
		w := doJSON(t, srv, http.MethodPut, "/v1/todos/9999", "", map[string]interface{}{"title": "x", "isDone": true})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		w = doJSON(t, srv, http.MethodDelete, "/v1/todos/9999", "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		w = doJSON(t, srv, http.MethodPut, "/v1/users/9999", "", map[string]string{"name": "x", "email": "x@x.com"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("open reads require no token", func(t *testing.T) {
		for _, path := range []string{"/v1/users", "/v1/todos"} {
			w := doJSON(t, srv, http.MethodGet, path, "", nil)
			require.Equal(t, http.StatusOK, w.Code, path)
		}
	})

	t.Run("profile update by another user's token is forbidden", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodPost, "/v1/auth/sign_up", "", map[string]string{
			"name": "carol", "email": "carol@x.com", "password": "pw12345",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var carol users.UserResponse
		decodeResult(t, w, &carol)

		w = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/v1/users/%d", carol.ID), token,
			map[string]string{"name": "stolen", "email": "stolen@x.com"})
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("strict boolean isDone", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/v1/todos",
			bytes.NewBufferString(`{"title":"x","isDone":"yes"}`))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, r)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}
