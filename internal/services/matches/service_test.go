package matches

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amora-app/amora/backend/internal/domain/model"
	pgrepo "github.com/amora-app/amora/backend/internal/repo/postgres"
)

func TestGetForParticipantAllowsBothSides(t *testing.T) {
	store := &matchStoreStub{
		byID: map[int64]model.Match{
			7: {ID: 7, UserAID: 1, UserBID: 2, CreatedAt: time.Now().UTC()},
		},
	}
	svc := NewService(store)

	for _, caller := range []int64{1, 2} {
		match, err := svc.GetForParticipant(context.Background(), 7, caller)
		if err != nil {
			t.Fatalf("caller %d: %v", caller, err)
		}
		if match.ID != 7 {
			t.Fatalf("caller %d: got match %d want 7", caller, match.ID)
		}
	}
}

func TestGetForParticipantRejectsOutsider(t *testing.T) {
	store := &matchStoreStub{
		byID: map[int64]model.Match{
			7: {ID: 7, UserAID: 1, UserBID: 2},
		},
	}
	svc := NewService(store)

	_, err := svc.GetForParticipant(context.Background(), 7, 3)
	if !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("got %v want ErrNotParticipant", err)
	}
}

func TestGetForParticipantMissingMatch(t *testing.T) {
	svc := NewService(&matchStoreStub{byID: map[int64]model.Match{}})

	_, err := svc.GetForParticipant(context.Background(), 99, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v want ErrNotFound", err)
	}
}

func TestListMapsCounterpartRows(t *testing.T) {
	now := time.Now().UTC()
	store := &matchStoreStub{
		lists: map[int64][]pgrepo.MatchListRecord{
			1: {
				{ID: 9, TargetUserID: 3, DisplayName: "Sam", AvatarRef: "avatars/3/a.jpg", CreatedAt: now},
				{ID: 8, TargetUserID: 2, DisplayName: "Alex", CreatedAt: now.Add(-time.Hour)},
			},
		},
	}
	svc := NewService(store)

	items, err := svc.List(context.Background(), 1, 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items want 2", len(items))
	}
	if items[0].TargetUserID != 3 || items[0].DisplayName != "Sam" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
}

func TestListRejectsInvalidUser(t *testing.T) {
	svc := NewService(&matchStoreStub{})
	if _, err := svc.List(context.Background(), 0, 10); !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v want ErrValidation", err)
	}
}

type matchStoreStub struct {
	byID  map[int64]model.Match
	lists map[int64][]pgrepo.MatchListRecord
}

func (s *matchStoreStub) GetByID(_ context.Context, matchID int64) (model.Match, error) {
	match, ok := s.byID[matchID]
	if !ok {
		return model.Match{}, pgrepo.ErrMatchNotFound
	}
	return match, nil
}

func (s *matchStoreStub) ListForUser(_ context.Context, userID int64, _ int) ([]pgrepo.MatchListRecord, error) {
	return s.lists[userID], nil
}
