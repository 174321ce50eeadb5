package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/amora-app/amora/backend/internal/domain/model"
	redrepo "github.com/amora-app/amora/backend/internal/repo/redis"
	matchessvc "github.com/amora-app/amora/backend/internal/services/matches"
)

func TestSendRejectsBlankContent(t *testing.T) {
	svc := NewService(Dependencies{
		Messages: newMemMessageStore(),
		Gate:     allowGate{},
	})

	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Send(context.Background(), 1, 1, content); !errors.Is(err, ErrValidation) {
			t.Fatalf("content %q: got %v want ErrValidation", content, err)
		}
	}
}

func TestSendTrimsContent(t *testing.T) {
	store := newMemMessageStore()
	svc := NewService(Dependencies{Messages: store, Gate: allowGate{}})

	msg, err := svc.Send(context.Background(), 1, 2, "  hello there  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Content != "hello there" {
		t.Fatalf("got %q want %q", msg.Content, "hello there")
	}
}

func TestSendRequiresParticipant(t *testing.T) {
	store := newMemMessageStore()
	svc := NewService(Dependencies{
		Messages: store,
		Gate:     denyGate{err: matchessvc.ErrNotParticipant},
	})

	_, err := svc.Send(context.Background(), 1, 3, "hi")
	if !errors.Is(err, matchessvc.ErrNotParticipant) {
		t.Fatalf("got %v want ErrNotParticipant", err)
	}
	if store.count() != 0 {
		t.Fatalf("rejected send wrote %d messages", store.count())
	}
}

func TestSendPublishesAfterInsert(t *testing.T) {
	store := newMemMessageStore()
	feed := &recordingFeed{}
	svc := NewService(Dependencies{Messages: store, Gate: allowGate{}, Feed: feed})

	msg, err := svc.Send(context.Background(), 5, 1, "first")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(feed.published) != 1 || feed.published[0].ID != msg.ID {
		t.Fatalf("published payload mismatch: %+v", feed.published)
	}
}

func TestSendOverLongContentRejected(t *testing.T) {
	svc := NewService(Dependencies{Messages: newMemMessageStore(), Gate: allowGate{}})

	long := strings.Repeat("x", maxContentLength+1)
	if _, err := svc.Send(context.Background(), 1, 1, long); !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v want ErrValidation", err)
	}
}

func TestHistoryKeepsStoreOrder(t *testing.T) {
	store := newMemMessageStore()
	svc := NewService(Dependencies{Messages: store, Gate: allowGate{}})

	ctx := context.Background()
	for _, content := range []string{"a", "b", "c"} {
		if _, err := svc.Send(ctx, 9, 1, content); err != nil {
			t.Fatalf("send %q: %v", content, err)
		}
	}

	history, err := svc.History(ctx, 9, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("got %d messages want 3", len(history))
	}
	for i, want := range []string{"a", "b", "c"} {
		if history[i].Content != want {
			t.Fatalf("position %d: got %q want %q", i, history[i].Content, want)
		}
	}
	if history[0].ID >= history[1].ID || history[1].ID >= history[2].ID {
		t.Fatalf("history ids not ascending: %d %d %d", history[0].ID, history[1].ID, history[2].ID)
	}
}

func TestHistoryRequiresParticipant(t *testing.T) {
	svc := NewService(Dependencies{
		Messages: newMemMessageStore(),
		Gate:     denyGate{err: matchessvc.ErrNotParticipant},
	})

	if _, err := svc.History(context.Background(), 9, 3); !errors.Is(err, matchessvc.ErrNotParticipant) {
		t.Fatalf("got %v want ErrNotParticipant", err)
	}
}

func TestSubscribeDeliversPublishedMessagesInOrder(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	feed := redrepo.NewChatFeedRepo(client)
	store := newMemMessageStore()
	svc := NewService(Dependencies{Messages: store, Gate: allowGate{}, Feed: feed})

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	stream, cancel, err := svc.Subscribe(ctx, 4, 1)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	for _, content := range []string{"one", "two", "three"} {
		if _, err := svc.Send(ctx, 4, 1, content); err != nil {
			t.Fatalf("send %q: %v", content, err)
		}
	}

	for _, want := range []string{"one", "two", "three"} {
		select {
		case msg := <-stream:
			if msg.Content != want {
				t.Fatalf("got %q want %q", msg.Content, want)
			}
			if msg.MatchID != 4 {
				t.Fatalf("wrong channel: match %d", msg.MatchID)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestSubscribeRequiresParticipant(t *testing.T) {
	svc := NewService(Dependencies{
		Messages: newMemMessageStore(),
		Gate:     denyGate{err: matchessvc.ErrNotParticipant},
		Feed:     &recordingFeed{},
	})

	_, _, err := svc.Subscribe(context.Background(), 4, 3)
	if !errors.Is(err, matchessvc.ErrNotParticipant) {
		t.Fatalf("got %v want ErrNotParticipant", err)
	}
}

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})

	return mr, client
}

type allowGate struct{}

func (allowGate) GetForParticipant(_ context.Context, matchID, _ int64) (model.Match, error) {
	return model.Match{ID: matchID, UserAID: 1, UserBID: 2}, nil
}

type denyGate struct {
	err error
}

func (g denyGate) GetForParticipant(context.Context, int64, int64) (model.Match, error) {
	return model.Match{}, g.err
}

type memMessageStore struct {
	messages []model.Message
	nextID   int64
}

func newMemMessageStore() *memMessageStore {
	return &memMessageStore{}
}

func (s *memMessageStore) Insert(_ context.Context, matchID, senderID int64, content string) (model.Message, error) {
	s.nextID++
	msg := model.Message{
		ID:        s.nextID,
		MatchID:   matchID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *memMessageStore) ListByMatch(_ context.Context, matchID int64, limit int) ([]model.Message, error) {
	out := make([]model.Message, 0)
	for _, msg := range s.messages {
		if msg.MatchID == matchID {
			out = append(out, msg)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memMessageStore) count() int {
	return len(s.messages)
}

type recordingFeed struct {
	published []model.Message
}

func (f *recordingFeed) Publish(_ context.Context, msg model.Message) error {
	f.published = append(f.published, msg)
	return nil
}

func (f *recordingFeed) Subscribe(context.Context, int64) (<-chan model.Message, func(), error) {
	ch := make(chan model.Message)
	return ch, func() { close(ch) }, nil
}
