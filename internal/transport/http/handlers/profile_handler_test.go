package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amora-app/amora/backend/internal/domain/model"
	pgrepo "github.com/amora-app/amora/backend/internal/repo/postgres"
	authsvc "github.com/amora-app/amora/backend/internal/services/auth"
	profilesvc "github.com/amora-app/amora/backend/internal/services/profiles"
)

func TestProfileUpdateAndMe(t *testing.T) {
	svc := profilesvc.NewService(newProfileStoreStub(), profilesvc.Config{})
	h := NewProfileHandler(svc, nil)

	body, _ := json.Marshal(map[string]string{"display_name": "Dana", "bio": "hello"})
	req := httptest.NewRequest(http.MethodPut, "/v1/profile", bytes.NewReader(body))
	req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: 1, SID: "sid"}))
	rr := httptest.NewRecorder()
	h.Update(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("update status: got %d want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: 1, SID: "sid"}))
	rr = httptest.NewRecorder()
	h.Me(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("me status: got %d want %d", rr.Code, http.StatusOK)
	}

	var payload struct {
		UserID      int64  `json:"user_id"`
		DisplayName string `json:"display_name"`
		Bio         string `json:"bio"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.UserID != 1 || payload.DisplayName != "Dana" || payload.Bio != "hello" {
		t.Fatalf("unexpected profile: %+v", payload)
	}
}

func TestProfileUpdateValidationError(t *testing.T) {
	svc := profilesvc.NewService(newProfileStoreStub(), profilesvc.Config{})
	h := NewProfileHandler(svc, nil)

	body, _ := json.Marshal(map[string]string{"display_name": "   "})
	req := httptest.NewRequest(http.MethodPut, "/v1/profile", bytes.NewReader(body))
	req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: 1, SID: "sid"}))
	rr := httptest.NewRecorder()
	h.Update(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestProfileMeNotFound(t *testing.T) {
	svc := profilesvc.NewService(newProfileStoreStub(), profilesvc.Config{})
	h := NewProfileHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: 404, SID: "sid"}))
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d want %d", rr.Code, http.StatusNotFound)
	}
}

type profileStoreStub struct {
	profiles map[int64]model.Profile
}

func newProfileStoreStub() *profileStoreStub {
	return &profileStoreStub{profiles: make(map[int64]model.Profile)}
}

func (s *profileStoreStub) Get(_ context.Context, userID int64) (model.Profile, error) {
	profile, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return profile, nil
}

func (s *profileStoreStub) EnsureExists(_ context.Context, userID int64, displayName, bio string) error {
	if _, ok := s.profiles[userID]; ok {
		return nil
	}
	now := time.Now().UTC()
	s.profiles[userID] = model.Profile{UserID: userID, DisplayName: displayName, Bio: bio, CreatedAt: now, UpdatedAt: now}
	return nil
}

func (s *profileStoreStub) Save(_ context.Context, userID int64, displayName, bio, avatarRef string, at time.Time) error {
	existing, ok := s.profiles[userID]
	if !ok {
		existing = model.Profile{UserID: userID, CreatedAt: at}
	}
	existing.DisplayName = displayName
	existing.Bio = bio
	existing.AvatarRef = avatarRef
	existing.UpdatedAt = at
	s.profiles[userID] = existing
	return nil
}
