package rate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidInput = errors.New("invalid input")

// WindowStore counts hits within a fixed window keyed by a caller-chosen
// string. The first hit of a window starts its TTL.
type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Config struct {
	LikesPerMinute    int64
	MessagesPerMinute int64
}

func (c Config) withDefaults() Config {
	if c.LikesPerMinute <= 0 {
		c.LikesPerMinute = 60
	}
	if c.MessagesPerMinute <= 0 {
		c.MessagesPerMinute = 30
	}
	return c
}

// Limiter applies fixed-window counters to the write-heavy user actions.
// A nil store disables limiting entirely; every action is allowed.
type Limiter struct {
	store WindowStore
	cfg   Config
}

func NewLimiter(store WindowStore, cfg Config) *Limiter {
	return &Limiter{store: store, cfg: cfg.withDefaults()}
}

func (l *Limiter) AllowLike(ctx context.Context, userID int64) (int64, bool, error) {
	return l.allow(ctx, "likes", userID, l.cfg.LikesPerMinute)
}

func (l *Limiter) AllowMessage(ctx context.Context, userID int64) (int64, bool, error) {
	return l.allow(ctx, "messages", userID, l.cfg.MessagesPerMinute)
}

func (l *Limiter) allow(ctx context.Context, action string, userID int64, limit int64) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, ErrInvalidInput
	}
	if l == nil || l.store == nil {
		return 0, true, nil
	}

	key := fmt.Sprintf("rate:%s:%d", action, userID)
	count, _, err := l.store.IncrementWindow(ctx, key, time.Minute)
	if err != nil {
		return 0, false, fmt.Errorf("increment %s window: %w", action, err)
	}
	return count, count <= limit, nil
}
