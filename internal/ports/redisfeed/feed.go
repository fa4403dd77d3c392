// Package redisfeed publishes accepted moves to Redis so spectators can follow a match.
package redisfeed

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"roevhul/internal/ports"
)

const (
	keyPrefix          = "roevhul:match:"
	defaultHistorySize = 200
	defaultHistoryTTL  = 24 * time.Hour
)

// Channel is the pub/sub channel carrying a match's moves.
func Channel(matchID string) string {
	return keyPrefix + matchID + ":moves"
}

func historyKey(matchID string) string {
	return keyPrefix + matchID + ":history"
}

// Publisher implements ports.MoveFeed on Redis pub/sub plus a capped history list.
type Publisher struct {
	rdb         redis.UniversalClient
	historySize int64
	historyTTL  time.Duration
}

var _ ports.MoveFeed = (*Publisher)(nil)

// Option configures a Publisher.
type Option func(*Publisher)

// WithHistory keeps the last size moves for at most ttl. A size of 0 disables history.
func WithHistory(size int64, ttl time.Duration) Option {
	return func(p *Publisher) {
		if size >= 0 {
			p.historySize = size
		}
		if ttl > 0 {
			p.historyTTL = ttl
		}
	}
}

// New returns a Publisher writing to rdb.
func New(rdb redis.UniversalClient, opts ...Option) *Publisher {
	p := &Publisher{rdb: rdb, historySize: defaultHistorySize, historyTTL: defaultHistoryTTL}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishMove broadcasts msg and appends it to the match history.
func (p *Publisher) PublishMove(ctx context.Context, msg ports.MoveMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal move: %w", err)
	}

	pipe := p.rdb.TxPipeline()
	pipe.Publish(ctx, Channel(msg.MatchID), data)
	if p.historySize > 0 {
		key := historyKey(msg.MatchID)
		pipe.RPush(ctx, key, data)
		pipe.LTrim(ctx, key, -p.historySize, -1)
		pipe.Expire(ctx, key, p.historyTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish move %s/%d: %w", msg.MatchID, msg.TurnID, err)
	}
	return nil
}

// History returns the retained moves of a match, oldest first.
func (p *Publisher) History(ctx context.Context, matchID string) ([]ports.MoveMessage, error) {
	raw, err := p.rdb.LRange(ctx, historyKey(matchID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", matchID, err)
	}
	out := make([]ports.MoveMessage, 0, len(raw))
	for _, item := range raw {
		var msg ports.MoveMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			log.Warn().Err(err).Str("match", matchID).Msg("skipping undecodable history entry")
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// Subscription follows one match's moves.
type Subscription struct {
	ps *redis.PubSub
}

// Subscribe starts following matchID. The subscription is active when Subscribe returns.
func (p *Publisher) Subscribe(ctx context.Context, matchID string) (*Subscription, error) {
	ps := p.rdb.Subscribe(ctx, Channel(matchID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", matchID, err)
	}
	return &Subscription{ps: ps}, nil
}

// Next blocks until the next move arrives or ctx ends.
func (s *Subscription) Next(ctx context.Context) (ports.MoveMessage, error) {
	for {
		m, err := s.ps.ReceiveMessage(ctx)
		if err != nil {
			return ports.MoveMessage{}, err
		}
		var msg ports.MoveMessage
		if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
			log.Warn().Err(err).Str("channel", m.Channel).Msg("skipping undecodable move")
			continue
		}
		return msg, nil
	}
}

// Close ends the subscription.
func (s *Subscription) Close() error {
	return s.ps.Close()
}
