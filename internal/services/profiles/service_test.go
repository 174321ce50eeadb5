package profiles

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amora-app/amora/backend/internal/domain/model"
	pgrepo "github.com/amora-app/amora/backend/internal/repo/postgres"
)

func TestEnsureExistsProvisionsPlaceholder(t *testing.T) {
	store := newMemProfileStore()
	svc := NewService(store, Config{})

	if err := svc.EnsureExists(context.Background(), 42); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	profile, err := svc.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if profile.DisplayName != "user_42" {
		t.Fatalf("got display name %q want %q", profile.DisplayName, "user_42")
	}
	if profile.Bio != "Tell us about yourself!" {
		t.Fatalf("got bio %q want placeholder", profile.Bio)
	}
}

func TestEnsureExistsKeepsExistingProfile(t *testing.T) {
	store := newMemProfileStore()
	svc := NewService(store, Config{})

	ctx := context.Background()
	if _, err := svc.Update(ctx, 42, UpdateInput{DisplayName: "Dana", Bio: "hello"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := svc.EnsureExists(ctx, 42); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	profile, err := svc.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if profile.DisplayName != "Dana" {
		t.Fatalf("placeholder overwrote profile: got %q", profile.DisplayName)
	}
}

func TestUpdateTrimsAndValidates(t *testing.T) {
	store := newMemProfileStore()
	svc := NewService(store, Config{})

	profile, err := svc.Update(context.Background(), 1, UpdateInput{
		DisplayName: "  Dana  ",
		Bio:         "  likes hiking  ",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if profile.DisplayName != "Dana" || profile.Bio != "likes hiking" {
		t.Fatalf("fields not trimmed: %+v", profile)
	}
}

func TestUpdateRejectsEmptyDisplayName(t *testing.T) {
	svc := NewService(newMemProfileStore(), Config{})

	_, err := svc.Update(context.Background(), 1, UpdateInput{DisplayName: "   "})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v want ErrValidation", err)
	}
}

func TestUpdateRejectsOverlongBio(t *testing.T) {
	svc := NewService(newMemProfileStore(), Config{})

	_, err := svc.Update(context.Background(), 1, UpdateInput{
		DisplayName: "Dana",
		Bio:         strings.Repeat("x", maxBioLength+1),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v want ErrValidation", err)
	}
}

func TestGetMissingProfile(t *testing.T) {
	svc := NewService(newMemProfileStore(), Config{})

	_, err := svc.Get(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v want ErrNotFound", err)
	}
}

type memProfileStore struct {
	profiles map[int64]model.Profile
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{profiles: make(map[int64]model.Profile)}
}

func (s *memProfileStore) Get(_ context.Context, userID int64) (model.Profile, error) {
	profile, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return profile, nil
}

func (s *memProfileStore) EnsureExists(_ context.Context, userID int64, displayName, bio string) error {
	if _, ok := s.profiles[userID]; ok {
		return nil
	}
	now := time.Now().UTC()
	s.profiles[userID] = model.Profile{
		UserID:      userID,
		DisplayName: displayName,
		Bio:         bio,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return nil
}

func (s *memProfileStore) Save(_ context.Context, userID int64, displayName, bio, avatarRef string, at time.Time) error {
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
