package todos

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/gotodo-api/apperror"
	"github.com/user/gotodo-api/auth"
)

// TodoHandlers provides the HTTP handlers for the todos resource.
type TodoHandlers struct {
	service *TodoService
}

// NewTodoHandlers creates TodoHandlers over the given service.
func NewTodoHandlers(service *TodoService) *TodoHandlers {
	return &TodoHandlers{service: service}
}

func todoIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, apperror.NewNotFoundError("Todo not found", nil)
	}
	return id, nil
}

// HandleList godoc
// @Summary List todos
// @Description Returns every todo item annotated with its owner's public fields.
// @Tags todos
// @Produce json
// @Success 200 {object} auth.Envelope{result=[]todos.TodoWithOwner}
// @Failure 500 {object} apperror.ErrorResponse
// @Router /v1/todos [get]
func (h *TodoHandlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.service.List(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteResult(w, http.StatusOK, result)
	}
}

// HandleCreate godoc
// @Summary Create a todo
// @Description Creates a todo owned by the authenticated caller. isDone defaults to false.
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param todo body todos.CreateRequest true "Todo to create"
// @Success 201 {object} auth.Envelope{result=todos.Todo}
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /v1/todos [post]
func (h *TodoHandlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := auth.UserFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication token is required", nil))
			return
		}

		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		todo, err := h.service.Create(r.Context(), caller, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteResult(w, http.StatusCreated, todo)
	}
}

// HandleShow godoc
// @Summary Get a todo
// @Tags todos
// @Produce json
// @Param id path int true "Todo ID"
// @Success 200 {object} auth.Envelope{result=todos.Todo}
// @Failure 404 {object} apperror.ErrorResponse
// @Router /v1/todos/{id} [get]
func (h *TodoHandlers) HandleShow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := todoIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		todo, err := h.service.Show(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteResult(w, http.StatusOK, todo)
	}
}

// HandleUpdate godoc
// @Summary Update a todo
// @Description Replaces title and isDone. Only the owner may update a todo.
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Todo ID"
// @Param todo body todos.UpdateRequest true "New todo state"
// @Success 200 {object} auth.Envelope{result=todos.Todo}
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /v1/todos/{id} [put]
func (h *TodoHandlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := auth.UserFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication token is required", nil))
			return
		}
		id, err := todoIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		todo, err := h.service.Update(r.Context(), caller, id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteResult(w, http.StatusOK, todo)
	}
}

// HandleDelete godoc
// @Summary Delete a todo
// @Description Deletes a todo. Only the owner may delete it.
// @Tags todos
// @Security BearerAuth
// @Param id path int true "Todo ID"
// @Success 204 "deleted"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /v1/todos/{id} [delete]
func (h *TodoHandlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := auth.UserFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication token is required", nil))
			return
		}
		id, err := todoIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if _, err := h.service.Delete(r.Context(), caller, id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
