// Package handler implements the HTTP endpoints of the calendar assistant.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planwise-ai/calendar-assistant/internal/google"
	"github.com/planwise-ai/calendar-assistant/internal/middleware"
	"github.com/planwise-ai/calendar-assistant/internal/model"
	"github.com/planwise-ai/calendar-assistant/internal/service"
	"github.com/planwise-ai/calendar-assistant/pkg/logger"
)

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	chatService *service.ChatService
	authService *service.AuthService
	logger      *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatSvc *service.ChatService, authSvc *service.AuthService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatSvc,
		authService: authSvc,
		logger:      log,
	}
}

// ReplyRequest is the body of POST /api/v1/chat/reply.
type ReplyRequest struct {
	ThreadID string `json:"thread_id,omitempty"`
	Message  string `json:"message"`
}

// ReplyResponse carries the assistant's answer and the updated thread.
type ReplyResponse struct {
	ThreadID string          `json:"thread_id"`
	Reply    string          `json:"reply"`
	Failed   bool            `json:"failed,omitempty"`
	Messages []model.Message `json:"messages"`
}

// Reply handles POST /api/v1/chat/reply
func (h *ChatHandler) Reply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := middleware.GetUserEmail(ctx)

	var req ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.Must(uuid.NewV7()).String()
	} else if err := middleware.ValidateThreadID(threadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cal, err := h.authService.Authorize(ctx, email)
	if err != nil {
		if errors.Is(err, google.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "not authenticated with Google Calendar")
			return
		}
		h.logger.Error("failed to authorize calendar access", zap.String("user", email), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to authorize calendar access")
		return
	}

	result, err := h.chatService.SubmitMessage(ctx, threadID, req.Message, cal)
	if err != nil && result == nil {
		h.logger.Error("failed to submit message", zap.String("thread_id", threadID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to handle message")
		return
	}

	writeJSON(w, http.StatusOK, &ReplyResponse{
		ThreadID: threadID,
		Reply:    result.ResponseForUser,
		Failed:   result.Failed,
		Messages: result.State.Log.Messages(),
	})
}
