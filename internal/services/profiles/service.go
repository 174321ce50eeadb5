package profiles

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	pgrepo "github.com/amora-app/amora/backend/internal/repo/postgres"

	"github.com/amora-app/amora/backend/internal/domain/model"
)

const maxBioLength = 1000

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

type ProfileStore interface {
	Get(ctx context.Context, userID int64) (model.Profile, error)
	EnsureExists(ctx context.Context, userID int64, displayName, bio string) error
	Save(ctx context.Context, userID int64, displayName, bio, avatarRef string, at time.Time) error
}

type Config struct {
	PlaceholderNamePrefix string
	PlaceholderBio        string
}

type Service struct {
	store ProfileStore
	cfg   Config
	now   func() time.Time
}

type UpdateInput struct {
	DisplayName string
	Bio         string
	AvatarRef   string
}

func NewService(store ProfileStore, cfg Config) *Service {
	if strings.TrimSpace(cfg.PlaceholderNamePrefix) == "" {
		cfg.PlaceholderNamePrefix = "user_"
	}
	if strings.TrimSpace(cfg.PlaceholderBio) == "" {
		cfg.PlaceholderBio = "Tell us about yourself!"
	}

	return &Service{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID int64) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, ErrValidation
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, err
	}

	return profile, nil
}

// EnsureExists provisions the placeholder profile used on first login.
func (s *Service) EnsureExists(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("profile store is nil")
	}

	placeholderName := s.cfg.PlaceholderNamePrefix + strconv.FormatInt(userID, 10)
	return s.store.EnsureExists(ctx, userID, placeholderName, s.cfg.PlaceholderBio)
}

// Update writes the caller's own profile. Ownership is enforced upstream by
// the auth middleware: userID always comes from the request identity.
func (s *Service) Update(ctx context.Context, userID int64, in UpdateInput) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, ErrValidation
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}

	displayName := strings.TrimSpace(in.DisplayName)
	bio := strings.TrimSpace(in.Bio)
	avatarRef := strings.TrimSpace(in.AvatarRef)
	if displayName == "" {
		return model.Profile{}, ErrValidation
	}
	if len(bio) > maxBioLength {
		return model.Profile{}, ErrValidation
	}

	now := s.now().UTC()
	if err := s.store.Save(ctx, userID, displayName, bio, avatarRef, now); err != nil {
		return model.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("read back profile: %w", err)
	}

	return profile, nil
}
