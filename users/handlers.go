package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/gotodo-api/apperror"
	"github.com/user/gotodo-api/auth"
)

// UserHandlers provides the HTTP handlers for accounts and profiles.
type UserHandlers struct {
	service *UserService
}

// NewUserHandlers creates UserHandlers over the given service.
func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

func userIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, apperror.NewNotFoundError("User not found", nil)
	}
	return id, nil
}

// HandleRegister godoc
// @Summary Sign up
// @Description Registers a new user. The issued auth token is returned in the X-Auth-Token response header.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body users.RegisterRequest true "Registration details"
// @Success 201 {object} auth.Envelope{result=users.UserResponse}
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /v1/auth/sign_up [post]
func (h *UserHandlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		user, token, err := h.service.Register(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.Header().Set(auth.TokenHeader, token)
		auth.WriteResult(w, http.StatusCreated, user)
	}
}

// HandleLogin godoc
// @Summary Sign in
// @Description Verifies credentials and rotates the auth token; the new token is returned in the X-Auth-Token response header and invalidates the previous one.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body users.LoginRequest true "Login credentials"
// @Success 200 {object} auth.Envelope{result=users.UserResponse}
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /v1/auth/sign_in [post]
func (h *UserHandlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		user, token, err := h.service.Login(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.Header().Set(auth.TokenHeader, token)
		auth.WriteJSON(w, http.StatusOK, auth.Envelope{Message: "Login successfully!", Result: user})
	}
}

// HandleList godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} auth.Envelope{result=[]users.UserResponse}
// @Failure 500 {object} apperror.ErrorResponse
// @Router /v1/users [get]
func (h *UserHandlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.service.List(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteResult(w, http.StatusOK, result)
	}
}

// HandleShow godoc
// @Summary Get a user with their todos
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} auth.Envelope{result=users.UserWithTodos}
// @Failure 404 {object} apperror.ErrorResponse
// @Router /v1/users/{id} [get]
func (h *UserHandlers) HandleShow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userIDParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		profile, err := h.service.Show(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteResult(w, http.StatusOK, profile)
	}
}

// HandleUpdate godoc
// @Summary Update a user's profile
// @Description Updates name and email. The token must belong to the user being edited.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param user body users.UpdateRequest true "New profile fields"
// @Success 200 {object} auth.Envelope{result=users.UserResponse}
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /v1/users/{id} [put]
func (h *UserHandlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := auth.UserFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication token is required", nil))
			return
		}
		id, err := userIDParam(r)
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

		user, err := h.service.Update(r.Context(), caller, id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteResult(w, http.StatusOK, user)
	}
}

// HandleDelete godoc
// @Summary Close the caller's account
// @Description Deletes the account identified by the auth token. Owned todos are deleted with it. Served on both DELETE /v1/auth/resign and DELETE /v1/users/{id}; the path id is not consulted, closure is strictly self-service.
// @Tags auth
// @Security BearerAuth
// @Success 204 "account deleted"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /v1/auth/resign [delete]
func (h *UserHandlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := auth.UserFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication token is required", nil))
			return
		}
		if _, err := h.service.Delete(r.Context(), caller); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
