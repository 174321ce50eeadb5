package handlers

import (
	"errors"
	"net/http"

	"github.com/amora-app/amora/backend/internal/domain/model"
	authsvc "github.com/amora-app/amora/backend/internal/services/auth"
	mediasvc "github.com/amora-app/amora/backend/internal/services/media"
	profilesvc "github.com/amora-app/amora/backend/internal/services/profiles"
	"github.com/amora-app/amora/backend/internal/transport/http/dto"
	httperrors "github.com/amora-app/amora/backend/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *profilesvc.Service
	media   *mediasvc.Service
}

func NewProfileHandler(service *profilesvc.Service, media *mediasvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service, media: media}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	profile, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, h.profileResponse(r, profile))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.ProfileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	profile, err := h.service.Update(r.Context(), identity.UserID, profilesvc.UpdateInput{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
	})
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, h.profileResponse(r, profile))
}

func (h *ProfileHandler) profileResponse(r *http.Request, profile model.Profile) dto.ProfileResponse {
	avatarURL := ""
	if h.media != nil {
		if url, err := h.media.ResolveURL(r.Context(), profile.AvatarRef); err == nil {
			avatarURL = url
		}
	}

	return dto.ProfileResponse{
		UserID:      profile.UserID,
		DisplayName: profile.DisplayName,
		Bio:         profile.Bio,
		AvatarURL:   avatarURL,
		CreatedAt:   profile.CreatedAt,
		UpdatedAt:   profile.UpdatedAt,
	}
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "profile validation failed")
	case errors.Is(err, profilesvc.ErrNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
