package swipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amora-app/amora/backend/internal/domain/model"
	pgrepo "github.com/amora-app/amora/backend/internal/repo/postgres"
	likessvc "github.com/amora-app/amora/backend/internal/services/likes"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrRateLimited     = errors.New("too many swipes")
	ErrDependenciesNil = errors.New("swipe dependencies are not configured")
)

type SwipeStore interface {
	Record(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, liked bool, now time.Time) (bool, error)
}

type CandidateStore interface {
	ListUnseen(ctx context.Context, viewerUserID int64, limit int) ([]model.Profile, error)
}

type LikeRecorder interface {
	RecordWithTx(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (likessvc.Result, error)
}

type RateLimiter interface {
	AllowLike(ctx context.Context, userID int64) (int64, bool, error)
}

type Service struct {
	pool        *pgxpool.Pool
	swipeStore  SwipeStore
	candidates  CandidateStore
	likes       LikeRecorder
	rateLimiter RateLimiter
	now         func() time.Time
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	SwipeStore  SwipeStore
	Candidates  CandidateStore
	Likes       LikeRecorder
	RateLimiter RateLimiter
}

type DecideResult struct {
	Recorded     bool
	MatchCreated bool
	MatchID      int64
}

func NewService(deps Dependencies) *Service {
	return &Service{
		pool:        deps.Pool,
		swipeStore:  deps.SwipeStore,
		candidates:  deps.Candidates,
		likes:       deps.Likes,
		rateLimiter: deps.RateLimiter,
		now:         time.Now,
	}
}

// Candidates returns the viewer's remaining deck: every profile except the
// viewer's own and those already decided on. An exhausted deck is an empty
// slice, not an error.
func (s *Service) Candidates(ctx context.Context, viewerUserID int64, limit int) ([]model.Profile, error) {
	if viewerUserID <= 0 {
		return nil, ErrValidation
	}
	if s.candidates == nil {
		return nil, ErrDependenciesNil
	}

	items, err := s.candidates.ListUnseen(ctx, viewerUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	return items, nil
}

// Decide records one swipe decision. Like and reject advance the deck the
// same way; only a like feeds the ledger and may form a match. A repeated
// decision for the same target is a no-op (the cursor never rewinds).
func (s *Service) Decide(ctx context.Context, actorUserID, targetUserID int64, liked bool) (DecideResult, error) {
	if actorUserID <= 0 || targetUserID <= 0 || actorUserID == targetUserID {
		return DecideResult{}, ErrValidation
	}
	if s.pool == nil || s.swipeStore == nil || s.likes == nil {
		return DecideResult{}, ErrDependenciesNil
	}

	if err := s.applyLikeGate(ctx, actorUserID, liked); err != nil {
		return DecideResult{}, err
	}

	var result DecideResult
	if err := pgrepo.WithTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		res, err := s.decide(txCtx, tx, actorUserID, targetUserID, liked)
		if err != nil {
			return err
		}
		result = res
		return nil
	}); err != nil {
		return DecideResult{}, err
	}

	return result, nil
}

func (s *Service) applyLikeGate(ctx context.Context, actorUserID int64, liked bool) error {
	if !liked || s.rateLimiter == nil {
		return nil
	}

	_, allowed, err := s.rateLimiter.AllowLike(ctx, actorUserID)
	if err != nil {
		return fmt.Errorf("apply like rate limiter: %w", err)
	}
	if !allowed {
		return ErrRateLimited
	}
	return nil
}

func (s *Service) decide(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, liked bool) (DecideResult, error) {
	recorded, err := s.swipeStore.Record(ctx, tx, actorUserID, targetUserID, liked, s.now().UTC())
	if err != nil {
		return DecideResult{}, err
	}

	result := DecideResult{Recorded: recorded}
	if !liked {
		return result, nil
	}

	likeResult, err := s.likes.RecordWithTx(ctx, tx, actorUserID, targetUserID)
	if err != nil {
		return DecideResult{}, err
	}
	result.MatchCreated = likeResult.MatchCreated
	if likeResult.Matched {
		result.MatchID = likeResult.Match.ID
	}
	return result, nil
}
