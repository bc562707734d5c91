package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ErrSessionNotFound is returned when no snapshot exists for a session.
var ErrSessionNotFound = errors.New("chat: session not found")

const defaultSessionTTL = 24 * time.Hour

// SessionStore persists conversation state snapshots to Redis so a session
// survives process restarts. This is the explicit serialize/deserialize
// boundary for conversation state.
type SessionStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

// NewSessionStore creates a Redis-backed snapshot store.
func NewSessionStore(rdb *redis.Client, ttl time.Duration, tracer trace.Tracer) *SessionStore {
	if rdb == nil {
		panic("chat: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("helptech.internal.chat.sessions")
	}
	return &SessionStore{redis: rdb, tracer: tracer, ttl: ttl}
}

// Save snapshots the conversation state.
func (s *SessionStore) Save(ctx context.Context, sessionID string, state *State) error {
	ctx, span := s.tracer.Start(ctx, "chat.save_session")
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: failed to marshal session state: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: failed to persist session state: %w", err)
	}
	return nil
}

// Load restores a conversation state snapshot.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*State, error) {
	ctx, span := s.tracer.Start(ctx, "chat.load_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("chat: failed to load session state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chat: failed to decode session state: %w", err)
	}
	return &state, nil
}

// Delete removes a session snapshot.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "chat.delete_session")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: failed to delete session state: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("chat_session:%s", id)
}
