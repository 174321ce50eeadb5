package handlers

import (
	"errors"
	"net/http"
	"strconv"

	authsvc "github.com/amora-app/amora/backend/internal/services/auth"
	mediasvc "github.com/amora-app/amora/backend/internal/services/media"
	swipesvc "github.com/amora-app/amora/backend/internal/services/swipes"
	"github.com/amora-app/amora/backend/internal/transport/http/dto"
	httperrors "github.com/amora-app/amora/backend/internal/transport/http/errors"
)

type SwipeHandler struct {
	service      *swipesvc.Service
	media        *mediasvc.Service
	deckPageSize int
}

func NewSwipeHandler(service *swipesvc.Service, media *mediasvc.Service, deckPageSize int) *SwipeHandler {
	if deckPageSize <= 0 {
		deckPageSize = 20
	}
	return &SwipeHandler{service: service, media: media, deckPageSize: deckPageSize}
}

// Candidates returns the viewer's deck: profiles they have not decided on
// yet. An exhausted deck is an empty list, not an error.
func (h *SwipeHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), h.deckPageSize)
	if limit > 100 {
		limit = 100
	}

	profiles, err := h.service.Candidates(r.Context(), identity.UserID, limit)
	if err != nil {
		handleSwipeError(w, err)
		return
	}

	items := make([]dto.CandidateResponse, 0, len(profiles))
	for _, p := range profiles {
		avatarURL := ""
		if h.media != nil {
			if url, err := h.media.ResolveURL(r.Context(), p.AvatarRef); err == nil {
				avatarURL = url
			}
		}
		items = append(items, dto.CandidateResponse{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Bio:         p.Bio,
			AvatarURL:   avatarURL,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.CandidatesResponse{Items: items})
}

func (h *SwipeHandler) Decide(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	var liked bool
	switch req.Direction {
	case "like":
		liked = true
	case "pass":
		liked = false
	default:
		writeBadRequest(w, "VALIDATION_ERROR", "direction must be like or pass")
		return
	}

	res, err := h.service.Decide(r.Context(), identity.UserID, req.TargetUserID, liked)
	if err != nil {
		handleSwipeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{
		Recorded:     res.Recorded,
		MatchCreated: res.MatchCreated,
		MatchID:      res.MatchID,
	})
}

func handleSwipeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, swipesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "swipe validation failed")
	case errors.Is(err, swipesvc.ErrRateLimited):
		writeTooManyRequests(w, "too many likes, slow down")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func parseIntOrDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
