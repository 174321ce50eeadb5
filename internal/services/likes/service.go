package likes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amora-app/amora/backend/internal/domain/model"
	pgrepo "github.com/amora-app/amora/backend/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("likes dependencies are not configured")
)

type LikeStore interface {
	Insert(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (model.Like, error)
	Exists(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (bool, error)
}

type MatchStore interface {
	CreateIfAbsent(ctx context.Context, tx pgx.Tx, userID, targetID int64) (model.Match, bool, error)
}

type Service struct {
	pool       *pgxpool.Pool
	likeStore  LikeStore
	matchStore MatchStore
}

type Dependencies struct {
	Pool       *pgxpool.Pool
	LikeStore  LikeStore
	MatchStore MatchStore
}

// Result reports the outcome of recording one like edge: the (possibly
// pre-existing) edge itself and, when the reverse edge was already present,
// the match that reconciliation produced or found.
type Result struct {
	Like         model.Like
	Matched      bool
	MatchCreated bool
	Match        model.Match
}

func NewService(deps Dependencies) *Service {
	return &Service{
		pool:       deps.Pool,
		likeStore:  deps.LikeStore,
		matchStore: deps.MatchStore,
	}
}

// Record appends a like edge and reconciles it against the reverse edge.
// Recording is idempotent: a repeated like returns the already-committed row.
// When both directions exist, the match registry's CreateIfAbsent guarantees
// one row per unordered pair even when both users' reconciliations race.
func (s *Service) Record(ctx context.Context, fromUserID, toUserID int64) (Result, error) {
	if fromUserID <= 0 || toUserID <= 0 || fromUserID == toUserID {
		return Result{}, ErrValidation
	}
	if s.pool == nil || s.likeStore == nil || s.matchStore == nil {
		return Result{}, ErrDependenciesNil
	}

	var result Result
	if err := pgrepo.WithTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		res, err := s.reconcile(txCtx, tx, fromUserID, toUserID)
		if err != nil {
			return err
		}
		result = res
		return nil
	}); err != nil {
		return Result{}, err
	}

	return result, nil
}

// RecordWithTx runs the like + reconcile flow inside an existing transaction,
// for callers that bundle the like with other writes (the swipe flow).
func (s *Service) RecordWithTx(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (Result, error) {
	if fromUserID <= 0 || toUserID <= 0 || fromUserID == toUserID {
		return Result{}, ErrValidation
	}
	if s.likeStore == nil || s.matchStore == nil {
		return Result{}, ErrDependenciesNil
	}

	return s.reconcile(ctx, tx, fromUserID, toUserID)
}

// Has reports whether the directed edge exists, reflecting the most recently
// committed write visible to this connection.
func (s *Service) Has(ctx context.Context, fromUserID, toUserID int64) (bool, error) {
	if fromUserID <= 0 || toUserID <= 0 {
		return false, ErrValidation
	}
	if s.pool == nil || s.likeStore == nil {
		return false, ErrDependenciesNil
	}

	var exists bool
	if err := pgrepo.WithTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		ok, err := s.likeStore.Exists(txCtx, tx, fromUserID, toUserID)
		if err != nil {
			return err
		}
		exists = ok
		return nil
	}); err != nil {
		return false, err
	}

	return exists, nil
}

func (s *Service) reconcile(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (Result, error) {
	like, err := s.likeStore.Insert(ctx, tx, fromUserID, toUserID)
	if err != nil {
		return Result{}, fmt.Errorf("record like: %w", err)
	}

	reverse, err := s.likeStore.Exists(ctx, tx, toUserID, fromUserID)
	if err != nil {
		return Result{}, fmt.Errorf("check reverse like: %w", err)
	}
	if !reverse {
		return Result{Like: like}, nil
	}

	match, created, err := s.matchStore.CreateIfAbsent(ctx, tx, fromUserID, toUserID)
	if err != nil {
		return Result{}, fmt.Errorf("materialize match: %w", err)
	}

	return Result{
		Like:         like,
		Matched:      true,
		MatchCreated: created,
		Match:        match,
	}, nil
}
