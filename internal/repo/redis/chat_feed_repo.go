package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/amora-app/amora/backend/internal/domain/model"
)

const chatChannelPrefix = "chat:match:"

// ChatFeedRepo is the change feed for chat messages: every committed message
// is published to its match's channel and delivered to live subscribers in
// publish order.
type ChatFeedRepo struct {
	client *goredis.Client
}

func NewChatFeedRepo(client *goredis.Client) *ChatFeedRepo {
	return &ChatFeedRepo{client: client}
}

func (r *ChatFeedRepo) Publish(ctx context.Context, msg model.Message) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if msg.MatchID <= 0 {
		return fmt.Errorf("invalid feed payload")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal feed payload: %w", err)
	}

	if err := r.client.Publish(ctx, chatChannel(msg.MatchID), payload).Err(); err != nil {
		return fmt.Errorf("publish chat message: %w", err)
	}

	return nil
}

// Subscribe tails the match's channel until cancel is called or ctx is done.
// Messages that fail to decode are dropped rather than breaking the stream.
func (r *ChatFeedRepo) Subscribe(ctx context.Context, matchID int64) (<-chan model.Message, func(), error) {
	if r.client == nil {
		return nil, nil, fmt.Errorf("redis client is nil")
	}
	if matchID <= 0 {
		return nil, nil, fmt.Errorf("invalid match id")
	}

	pubsub := r.client.Subscribe(ctx, chatChannel(matchID))
	// Force the SUBSCRIBE round trip so the caller observes an active
	// subscription once this returns.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe chat channel: %w", err)
	}

	out := make(chan model.Message, 16)
	go func() {
		defer close(out)
		for raw := range pubsub.Channel() {
			var msg model.Message
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		_ = pubsub.Close()
	}

	return out, cancel, nil
}

func chatChannel(matchID int64) string {
	return chatChannelPrefix + strconv.FormatInt(matchID, 10)
}
