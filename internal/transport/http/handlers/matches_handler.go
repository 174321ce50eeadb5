package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/amora-app/amora/backend/internal/services/auth"
	matchsvc "github.com/amora-app/amora/backend/internal/services/matches"
	mediasvc "github.com/amora-app/amora/backend/internal/services/media"
	"github.com/amora-app/amora/backend/internal/transport/http/dto"
	httperrors "github.com/amora-app/amora/backend/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchsvc.Service
	media   *mediasvc.Service
}

func NewMatchesHandler(service *matchsvc.Service, media *mediasvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service, media: media}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 50)
	if limit > 200 {
		limit = 200
	}

	matches, err := h.service.List(r.Context(), identity.UserID, limit)
	if err != nil {
		handleMatchError(w, err)
		return
	}

	items := make([]dto.MatchItemResponse, 0, len(matches))
	for _, m := range matches {
		avatarURL := ""
		if h.media != nil {
			if url, err := h.media.ResolveURL(r.Context(), m.AvatarRef); err == nil {
				avatarURL = url
			}
		}
		items = append(items, dto.MatchItemResponse{
			ID:           m.ID,
			TargetUserID: m.TargetUserID,
			DisplayName:  m.DisplayName,
			AvatarURL:    avatarURL,
			CreatedAt:    m.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Items: items})
}

func handleMatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, matchsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "match request validation failed")
	case errors.Is(err, matchsvc.ErrNotFound):
		writeNotFound(w, "MATCH_NOT_FOUND", "match not found")
	case errors.Is(err, matchsvc.ErrNotParticipant):
		writeForbidden(w, "FORBIDDEN", "caller is not a match participant")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
