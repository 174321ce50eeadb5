package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amora-app/amora/backend/internal/domain/model"
)

const maxContentLength = 4000

var (
	ErrValidation      = errors.New("validation error")
	ErrRateLimited     = errors.New("too many messages")
	ErrDependenciesNil = errors.New("chat dependencies are not configured")
)

type MessageStore interface {
	Insert(ctx context.Context, matchID, senderID int64, content string) (model.Message, error)
	ListByMatch(ctx context.Context, matchID int64, limit int) ([]model.Message, error)
}

// MatchGate authorizes channel access: it fails for missing matches and for
// callers that are not participants.
type MatchGate interface {
	GetForParticipant(ctx context.Context, matchID, callerID int64) (model.Match, error)
}

// Feed is the change-feed capability: committed messages go in via Publish
// and reach live subscribers of the same match in publish order.
type Feed interface {
	Publish(ctx context.Context, msg model.Message) error
	Subscribe(ctx context.Context, matchID int64) (<-chan model.Message, func(), error)
}

type RateLimiter interface {
	AllowMessage(ctx context.Context, userID int64) (int64, bool, error)
}

type Service struct {
	messages    MessageStore
	gate        MatchGate
	feed        Feed
	rateLimiter RateLimiter
	historyMax  int
}

type Dependencies struct {
	Messages    MessageStore
	Gate        MatchGate
	Feed        Feed
	RateLimiter RateLimiter
	HistoryMax  int
}

func NewService(deps Dependencies) *Service {
	historyMax := deps.HistoryMax
	if historyMax <= 0 {
		historyMax = 200
	}

	return &Service{
		messages:    deps.Messages,
		gate:        deps.Gate,
		feed:        deps.Feed,
		rateLimiter: deps.RateLimiter,
		historyMax:  historyMax,
	}
}

// History returns the channel's messages in commit order, oldest first.
// Only match participants may read it.
func (s *Service) History(ctx context.Context, matchID, callerID int64) ([]model.Message, error) {
	if matchID <= 0 || callerID <= 0 {
		return nil, ErrValidation
	}
	if s.messages == nil || s.gate == nil {
		return nil, ErrDependenciesNil
	}

	if _, err := s.gate.GetForParticipant(ctx, matchID, callerID); err != nil {
		return nil, err
	}

	items, err := s.messages.ListByMatch(ctx, matchID, s.historyMax)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return items, nil
}

// Send appends a message to the channel and publishes it to the feed.
// Content must be non-empty after trimming; the sender must be a participant.
// Nothing is written when either check fails.
func (s *Service) Send(ctx context.Context, matchID, senderID int64, content string) (model.Message, error) {
	if matchID <= 0 || senderID <= 0 {
		return model.Message{}, ErrValidation
	}
	if s.messages == nil || s.gate == nil {
		return model.Message{}, ErrDependenciesNil
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" || len(trimmed) > maxContentLength {
		return model.Message{}, ErrValidation
	}

	if _, err := s.gate.GetForParticipant(ctx, matchID, senderID); err != nil {
		return model.Message{}, err
	}

	if s.rateLimiter != nil {
		_, allowed, err := s.rateLimiter.AllowMessage(ctx, senderID)
		if err != nil {
			return model.Message{}, fmt.Errorf("apply message rate limiter: %w", err)
		}
		if !allowed {
			return model.Message{}, ErrRateLimited
		}
	}

	msg, err := s.messages.Insert(ctx, matchID, senderID, trimmed)
	if err != nil {
		return model.Message{}, fmt.Errorf("append message: %w", err)
	}

	// Publish after the insert committed so feed order follows commit
	// order. A failed publish is not fatal: subscribers catch up from
	// history on their next open.
	if s.feed != nil {
		_ = s.feed.Publish(ctx, msg)
	}

	return msg, nil
}

// Subscribe opens the live tail of the channel. Messages appended after the
// subscription is active are delivered once each, in commit order; history is
// not replayed. Callers read history first and tolerate the one-message
// overlap window between the two calls.
func (s *Service) Subscribe(ctx context.Context, matchID, callerID int64) (<-chan model.Message, func(), error) {
	if matchID <= 0 || callerID <= 0 {
		return nil, nil, ErrValidation
	}
	if s.gate == nil || s.feed == nil {
		return nil, nil, ErrDependenciesNil
	}

	if _, err := s.gate.GetForParticipant(ctx, matchID, callerID); err != nil {
		return nil, nil, err
	}

	return s.feed.Subscribe(ctx, matchID)
}
