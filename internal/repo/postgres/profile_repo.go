package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amora-app/amora/backend/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Get(ctx context.Context, userID int64) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.Profile{}, ErrProfileNotFound
	}

	var p model.Profile
	err := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	display_name,
	bio,
	COALESCE(avatar_ref, ''),
	created_at,
	updated_at
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID).Scan(
		&p.UserID,
		&p.DisplayName,
		&p.Bio,
		&p.AvatarRef,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return p, nil
}

// EnsureExists provisions a placeholder profile on first login. An existing
// row is left untouched.
func (r *ProfileRepo) EnsureExists(ctx context.Context, userID int64, displayName, bio string) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO profiles (
	user_id,
	display_name,
	bio,
	created_at,
	updated_at
) VALUES ($1, $2, $3, NOW(), NOW())
ON CONFLICT (user_id) DO NOTHING
`, userID, displayName, bio); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}

	return nil
}

func (r *ProfileRepo) SetAvatarRef(ctx context.Context, userID int64, avatarRef string, at time.Time) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE profiles
SET avatar_ref = NULLIF($2, ''), updated_at = $3
WHERE user_id = $1
`, userID, avatarRef, at.UTC())
	if err != nil {
		return fmt.Errorf("set avatar ref: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *ProfileRepo) Save(ctx context.Context, userID int64, displayName, bio, avatarRef string, at time.Time) error {
	if userID <= 0 {
		return fmt.Errorf("invalid profile payload")
	}
	if r.pool == nil {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO profiles (
	user_id,
	display_name,
	bio,
	avatar_ref,
	created_at,
	updated_at
) VALUES ($1, $2, $3, NULLIF($4, ''), $5, $5)
ON CONFLICT (user_id) DO UPDATE SET
	display_name = EXCLUDED.display_name,
	bio = EXCLUDED.bio,
	avatar_ref = EXCLUDED.avatar_ref,
	updated_at = EXCLUDED.updated_at
`, userID, displayName, bio, avatarRef, at.UTC()); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	return nil
}
