package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var ErrValidation = errors.New("validation error")

const (
	signedURLTTL  = 5 * time.Minute
	maxAvatarSize = 5 << 20
)

// AvatarStore persists the avatar object key on the owner's profile row.
type AvatarStore interface {
	SetAvatarRef(ctx context.Context, userID int64, avatarRef string, at time.Time) error
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	store   AvatarStore
	storage ObjectStorage
	now     func() time.Time
}

type Avatar struct {
	ObjectKey string
	URL       string
}

func NewService(store AvatarStore, storage ObjectStorage) *Service {
	return &Service{
		store:   store,
		storage: storage,
		now:     time.Now,
	}
}

// UploadAvatar stores the image object and records its key on the profile.
// On a failed profile update the stored object is removed again.
func (s *Service) UploadAvatar(ctx context.Context, userID int64, fileName, contentType string, body io.Reader, size int64) (Avatar, error) {
	if userID <= 0 || body == nil || size <= 0 || size > maxAvatarSize {
		return Avatar{}, ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return Avatar{}, fmt.Errorf("media dependencies are not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Avatar{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := buildAvatarObjectKey(userID, fileName)
	if err != nil {
		return Avatar{}, fmt.Errorf("build object key: %w", err)
	}

	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.PutObject(ctx, objectKey, body, size, contentType); err != nil {
		return Avatar{}, fmt.Errorf("put object: %w", err)
	}

	if err := s.store.SetAvatarRef(ctx, userID, objectKey, s.now().UTC()); err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return Avatar{}, fmt.Errorf("record avatar ref: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, objectKey, signedURLTTL)
	if err != nil {
		return Avatar{}, fmt.Errorf("presign avatar url: %w", err)
	}

	return Avatar{ObjectKey: objectKey, URL: url}, nil
}

// ResolveURL turns a stored avatar key into a short-lived fetch URL. An empty
// key resolves to an empty URL so callers can pass profile fields through
// unconditionally.
func (s *Service) ResolveURL(ctx context.Context, objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", nil
	}
	if s.storage == nil {
		return "", fmt.Errorf("media dependencies are not configured")
	}

	url, err := s.storage.PresignGet(ctx, objectKey, signedURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign avatar url: %w", err)
	}
	return url, nil
}

func buildAvatarObjectKey(userID int64, fileName string) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}

	stamp := time.Now().UTC().Format("20060102T150405")
	return fmt.Sprintf("avatars/%d/%s_%s%s", userID, stamp, hex.EncodeToString(rnd), ext), nil
}
