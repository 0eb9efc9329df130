package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/application/account"
)

// AuthAPIHandler serves registration, login and guest sessions.
type AuthAPIHandler struct {
	accounts *account.Service
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAuthAPIHandler(accounts *account.Service, logger *zap.Logger) *AuthAPIHandler {
	return &AuthAPIHandler{
		accounts: accounts,
		validate: validator.New(),
		logger:   logger.Named("auth-api"),
	}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthAPIHandler) Register(w http.ResponseWriter, r *http.Request) {
	var cmd account.RegisterCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(cmd); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	resp, err := h.accounts.Register(r.Context(), cmd)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: resp})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthAPIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var cmd account.LoginCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(cmd); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	resp, err := h.accounts.Login(r.Context(), cmd)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

// Guest handles POST /api/v1/auth/guest. It issues a token with a
// fresh session ID so unregistered visitors can use the kitchen.
func (h *AuthAPIHandler) Guest(w http.ResponseWriter, r *http.Request) {
	resp, err := h.accounts.GuestSession(r.Context())
	if err != nil {
		h.logger.Error("Failed to create guest session", zap.Error(err))
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: resp})
}
