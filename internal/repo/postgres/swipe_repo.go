package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amora-app/amora/backend/internal/domain/model"
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

// Record stores a swipe decision. A decision for a (actor, target) pair is
// recorded at most once: the session cursor never rewinds, so a repeat is a
// no-op and reports created=false.
func (r *SwipeRepo) Record(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, liked bool, now time.Time) (bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return false, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
INSERT INTO swipes (
	actor_user_id,
	target_user_id,
	liked,
	created_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (actor_user_id, target_user_id) DO NOTHING
`, actorUserID, targetUserID, liked, now.UTC())
	if err != nil {
		return false, fmt.Errorf("record swipe: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// ListUnseen returns candidate profiles for the viewer: everyone except the
// viewer and anyone the viewer has already decided on, oldest profile first
// so the deck order is stable between fetches.
func (r *SwipeRepo) ListUnseen(ctx context.Context, viewerUserID int64, limit int) ([]model.Profile, error) {
	if viewerUserID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if limit <= 0 {
		limit = 20
	}
	if r.pool == nil {
		return []model.Profile{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	p.user_id,
	p.display_name,
	p.bio,
	COALESCE(p.avatar_ref, ''),
	p.created_at,
	p.updated_at
FROM profiles p
WHERE
	p.user_id <> $1
	AND NOT EXISTS (
		SELECT 1
		FROM swipes s
		WHERE s.actor_user_id = $1
			AND s.target_user_id = p.user_id
	)
ORDER BY p.created_at ASC, p.user_id ASC
LIMIT $2
`, viewerUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	items := make([]model.Profile, 0, limit)
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(
			&p.UserID,
			&p.DisplayName,
			&p.Bio,
			&p.AvatarRef,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		items = append(items, p)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate candidates: %w", rows.Err())
	}

	return items, nil
}
