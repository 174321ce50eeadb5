package likes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/amora-app/amora/backend/internal/domain/model"
)

func TestRecordWithTxIsIdempotent(t *testing.T) {
	likeStore := newMemLikeStore()
	matchStore := newMemMatchStore()
	svc := NewService(Dependencies{LikeStore: likeStore, MatchStore: matchStore})

	ctx := context.Background()

	first, err := svc.RecordWithTx(ctx, nil, 1, 2)
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	second, err := svc.RecordWithTx(ctx, nil, 1, 2)
	if err != nil {
		t.Fatalf("second record: %v", err)
	}

	if first.Like.ID != second.Like.ID {
		t.Fatalf("repeated like changed identity: got %d want %d", second.Like.ID, first.Like.ID)
	}
	if likeStore.count() != 1 {
		t.Fatalf("unexpected like rows: got %d want 1", likeStore.count())
	}
	if first.Matched || second.Matched {
		t.Fatalf("one-sided like must not match")
	}
}

func TestMutualLikesCreateSingleMatchEitherOrder(t *testing.T) {
	ctx := context.Background()

	orders := [][2][2]int64{
		{{1, 2}, {2, 1}},
		{{2, 1}, {1, 2}},
	}

	for _, order := range orders {
		likeStore := newMemLikeStore()
		matchStore := newMemMatchStore()
		svc := NewService(Dependencies{LikeStore: likeStore, MatchStore: matchStore})

		first, err := svc.RecordWithTx(ctx, nil, order[0][0], order[0][1])
		if err != nil {
			t.Fatalf("first like: %v", err)
		}
		if first.Matched {
			t.Fatalf("match appeared before reciprocity")
		}

		second, err := svc.RecordWithTx(ctx, nil, order[1][0], order[1][1])
		if err != nil {
			t.Fatalf("second like: %v", err)
		}
		if !second.Matched || !second.MatchCreated {
			t.Fatalf("mutual likes did not create a match: %+v", second)
		}
		if second.Match.UserAID != 1 || second.Match.UserBID != 2 {
			t.Fatalf("match pair not normalized: got (%d,%d)", second.Match.UserAID, second.Match.UserBID)
		}
		if matchStore.count() != 1 {
			t.Fatalf("unexpected match rows: got %d want 1", matchStore.count())
		}
	}
}

func TestRepeatedMutualLikeFindsExistingMatch(t *testing.T) {
	likeStore := newMemLikeStore()
	matchStore := newMemMatchStore()
	svc := NewService(Dependencies{LikeStore: likeStore, MatchStore: matchStore})

	ctx := context.Background()
	if _, err := svc.RecordWithTx(ctx, nil, 1, 2); err != nil {
		t.Fatalf("like 1->2: %v", err)
	}
	created, err := svc.RecordWithTx(ctx, nil, 2, 1)
	if err != nil {
		t.Fatalf("like 2->1: %v", err)
	}

	again, err := svc.RecordWithTx(ctx, nil, 2, 1)
	if err != nil {
		t.Fatalf("repeat like 2->1: %v", err)
	}
	if !again.Matched || again.MatchCreated {
		t.Fatalf("expected existing match readback, got %+v", again)
	}
	if again.Match.ID != created.Match.ID {
		t.Fatalf("match identity changed: got %d want %d", again.Match.ID, created.Match.ID)
	}
}

func TestConcurrentReconcileKeepsOneMatch(t *testing.T) {
	likeStore := newMemLikeStore()
	matchStore := newMemMatchStore()
	svc := NewService(Dependencies{LikeStore: likeStore, MatchStore: matchStore})

	ctx := context.Background()
	// Both edges committed up front so every reconcile sees reciprocity.
	if _, err := svc.RecordWithTx(ctx, nil, 1, 2); err != nil {
		t.Fatalf("seed like 1->2: %v", err)
	}
	likeStore.seed(2, 1)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		from, to := int64(1), int64(2)
		if i%2 == 1 {
			from, to = to, from
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordWithTx(ctx, nil, from, to); err != nil {
				t.Errorf("concurrent record: %v", err)
			}
		}()
	}
	wg.Wait()

	if matchStore.count() != 1 {
		t.Fatalf("unexpected match rows: got %d want 1", matchStore.count())
	}
	if matchStore.createdCount() != 1 {
		t.Fatalf("match created more than once: got %d", matchStore.createdCount())
	}
}

func TestRecordRejectsInvalidEdges(t *testing.T) {
	svc := NewService(Dependencies{LikeStore: newMemLikeStore(), MatchStore: newMemMatchStore()})

	cases := [][2]int64{{0, 2}, {1, 0}, {5, 5}, {-1, 2}}
	for _, c := range cases {
		if _, err := svc.RecordWithTx(context.Background(), nil, c[0], c[1]); !errors.Is(err, ErrValidation) {
			t.Fatalf("edge (%d,%d): got %v want ErrValidation", c[0], c[1], err)
		}
	}
}

type memLikeStore struct {
	mu     sync.Mutex
	edges  map[[2]int64]model.Like
	nextID int64
}

func newMemLikeStore() *memLikeStore {
	return &memLikeStore{edges: make(map[[2]int64]model.Like)}
}

func (s *memLikeStore) Insert(_ context.Context, _ pgx.Tx, fromUserID, toUserID int64) (model.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]int64{fromUserID, toUserID}
	if existing, ok := s.edges[key]; ok {
		return existing, nil
	}
	s.nextID++
	like := model.Like{
		ID:         s.nextID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		CreatedAt:  time.Now().UTC(),
	}
	s.edges[key] = like
	return like, nil
}

func (s *memLikeStore) Exists(_ context.Context, _ pgx.Tx, fromUserID, toUserID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.edges[[2]int64{fromUserID, toUserID}]
	return ok, nil
}

func (s *memLikeStore) seed(fromUserID, toUserID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.edges[[2]int64{fromUserID, toUserID}] = model.Like{
		ID:         s.nextID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		CreatedAt:  time.Now().UTC(),
	}
}

func (s *memLikeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edges)
}

type memMatchStore struct {
	mu      sync.Mutex
	pairs   map[[2]int64]model.Match
	nextID  int64
	created int
}

func newMemMatchStore() *memMatchStore {
	return &memMatchStore{pairs: make(map[[2]int64]model.Match)}
}

func (s *memMatchStore) CreateIfAbsent(_ context.Context, _ pgx.Tx, userID, targetID int64) (model.Match, bool, error) {
	a, b := userID, targetID
	if a > b {
		a, b = b, a
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]int64{a, b}
	if existing, ok := s.pairs[key]; ok {
		return existing, false, nil
	}
	s.nextID++
	s.created++
	match := model.Match{
		ID:        s.nextID,
		UserAID:   a,
		UserBID:   b,
		CreatedAt: time.Now().UTC(),
	}
	s.pairs[key] = match
	return match, true, nil
}

func (s *memMatchStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pairs)
}

func (s *memMatchStore) createdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}
