// Package handlers contains the JSON API handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/Shunsena-Jian/kasalo-kusina/pkg/errors"
)

// APIResponse is the standard envelope for all JSON endpoints.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, APIResponse{
		Success: false,
		Error:   message,
	})
}

// writeAppError maps an application error onto the right HTTP status.
// Unknown errors become a generic 500 so internals never leak.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeErrorJSON(w, appErr.StatusCode(), appErr.Message)
		return
	}
	writeErrorJSON(w, http.StatusInternalServerError, "Internal server error")
}
