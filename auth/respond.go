package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/user/gotodo-api/apperror"
)

// Envelope is the body shape of every successful response.
type Envelope struct {
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// WriteJSON serializes data to the response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// WriteResult wraps data in the result envelope and writes it.
func WriteResult(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, Envelope{Result: data})
}

// WriteError converts any error into the standard error response. Errors
// that are not *apperror.AppError are wrapped as internal errors so nothing
// unexpected leaks to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Printf("error processing %s %s: %v", r.Method, r.URL.Path, err)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
