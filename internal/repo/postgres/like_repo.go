package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amora-app/amora/backend/internal/domain/model"
)

type LikeRepo struct {
	pool *pgxpool.Pool
}

func NewLikeRepo(pool *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{pool: pool}
}

// Insert records a directed like edge. The (from_user_id, to_user_id) pair is
// unique, so a repeated like returns the already-committed row instead of
// duplicating it.
func (r *LikeRepo) Insert(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (model.Like, error) {
	if fromUserID <= 0 || toUserID <= 0 {
		return model.Like{}, fmt.Errorf("invalid like payload")
	}
	if tx == nil {
		return model.Like{}, fmt.Errorf("transaction is required")
	}

	var like model.Like
	err := tx.QueryRow(ctx, `
INSERT INTO likes (
	from_user_id,
	to_user_id,
	created_at
) VALUES ($1, $2, NOW())
ON CONFLICT (from_user_id, to_user_id) DO NOTHING
RETURNING id, from_user_id, to_user_id, created_at
`, fromUserID, toUserID).Scan(
		&like.ID,
		&like.FromUserID,
		&like.ToUserID,
		&like.CreatedAt,
	)
	if err == nil {
		return like, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Like{}, fmt.Errorf("insert like: %w", err)
	}

	// Conflict path: the edge already exists, read it back.
	err = tx.QueryRow(ctx, `
SELECT id, from_user_id, to_user_id, created_at
FROM likes
WHERE from_user_id = $1 AND to_user_id = $2
LIMIT 1
`, fromUserID, toUserID).Scan(
		&like.ID,
		&like.FromUserID,
		&like.ToUserID,
		&like.CreatedAt,
	)
	if err != nil {
		return model.Like{}, fmt.Errorf("read back like: %w", err)
	}

	return like, nil
}

func (r *LikeRepo) Exists(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (bool, error) {
	if fromUserID <= 0 || toUserID <= 0 {
		return false, fmt.Errorf("invalid like lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM likes
WHERE from_user_id = $1 AND to_user_id = $2
LIMIT 1
`, fromUserID, toUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup like: %w", err)
	}

	return true, nil
}
