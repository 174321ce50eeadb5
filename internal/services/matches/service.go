package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amora-app/amora/backend/internal/domain/model"
	pgrepo "github.com/amora-app/amora/backend/internal/repo/postgres"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("match not found")
	ErrNotParticipant = errors.New("caller is not a participant of the match")
)

type MatchStore interface {
	GetByID(ctx context.Context, matchID int64) (model.Match, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.MatchListRecord, error)
}

type Service struct {
	store MatchStore
}

type MatchItem struct {
	ID           int64
	TargetUserID int64
	DisplayName  string
	AvatarRef    string
	CreatedAt    time.Time
}

func NewService(store MatchStore) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]MatchItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	rows, err := s.store.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, MatchItem{
			ID:           row.ID,
			TargetUserID: row.TargetUserID,
			DisplayName:  row.DisplayName,
			AvatarRef:    row.AvatarRef,
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

// GetForParticipant loads a match and verifies the caller is one of its two
// participants. It is the authorization gate for the chat channel.
func (s *Service) GetForParticipant(ctx context.Context, matchID, callerID int64) (model.Match, error) {
	if matchID <= 0 || callerID <= 0 {
		return model.Match{}, ErrValidation
	}
	if s.store == nil {
		return model.Match{}, fmt.Errorf("match store is nil")
	}

	match, err := s.store.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return model.Match{}, ErrNotFound
		}
		return model.Match{}, err
	}
	if !match.HasParticipant(callerID) {
		return model.Match{}, ErrNotParticipant
	}

	return match, nil
}
