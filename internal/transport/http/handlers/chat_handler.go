package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/amora-app/amora/backend/internal/domain/model"
	authsvc "github.com/amora-app/amora/backend/internal/services/auth"
	chatsvc "github.com/amora-app/amora/backend/internal/services/chat"
	matchsvc "github.com/amora-app/amora/backend/internal/services/matches"
	"github.com/amora-app/amora/backend/internal/transport/http/dto"
	httperrors "github.com/amora-app/amora/backend/internal/transport/http/errors"
)

type ChatHandler struct {
	service *chatsvc.Service
}

func NewChatHandler(service *chatsvc.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	matchID, ok := matchIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	messages, err := h.service.History(r.Context(), matchID, identity.UserID)
	if err != nil {
		handleChatError(w, err)
		return
	}

	items := make([]dto.MessageResponse, 0, len(messages))
	for _, msg := range messages {
		items = append(items, messageResponse(msg))
	}

	httperrors.Write(w, http.StatusOK, dto.MessagesResponse{Items: items})
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	matchID, ok := matchIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	msg, err := h.service.Send(r.Context(), matchID, identity.UserID, req.Content)
	if err != nil {
		handleChatError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, messageResponse(msg))
}

func messageResponse(msg model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        msg.ID,
		MatchID:   msg.MatchID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func handleChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatsvc.ErrValidation), errors.Is(err, matchsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "chat request validation failed")
	case errors.Is(err, matchsvc.ErrNotFound):
		writeNotFound(w, "MATCH_NOT_FOUND", "match not found")
	case errors.Is(err, matchsvc.ErrNotParticipant):
		writeForbidden(w, "FORBIDDEN", "caller is not a match participant")
	case errors.Is(err, chatsvc.ErrRateLimited):
		writeTooManyRequests(w, "too many messages, slow down")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func matchIDFromRequest(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "match_id")
	matchID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || matchID <= 0 {
		return 0, false
	}
	return matchID, true
}
