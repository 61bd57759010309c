package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/planwise-ai/calendar-assistant/internal/middleware"
	"github.com/planwise-ai/calendar-assistant/internal/service"
	"github.com/planwise-ai/calendar-assistant/pkg/logger"
)

// AuthHandler handles Google authorization endpoints.
type AuthHandler struct {
	authService *service.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authSvc *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authSvc,
		logger:      log,
	}
}

// AuthURL handles GET /api/v1/auth/google/url
func (h *AuthHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"url": h.authService.AuthURL(email),
	})
}

// CallbackRequest is the body of POST /api/v1/auth/google/callback.
type CallbackRequest struct {
	Code string `json:"code"`
}

// Callback handles POST /api/v1/auth/google/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := middleware.GetUserEmail(ctx)

	var req CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.HandleCallback(ctx, req.Code, email); err != nil {
		h.logger.Error("authorization code exchange failed", zap.String("user", email), zap.Error(err))
		writeError(w, http.StatusBadRequest, "authorization code exchange failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "authorized",
	})
}
