package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/types"
)

// ConversationStore keeps per-view chat histories. Histories are append-only,
// ordered, and ephemeral: they expire after the TTL and are never written to
// Postgres.
type ConversationStore interface {
	Append(ctx context.Context, key string, msg types.ChatMessage) error
	History(ctx context.Context, key string) ([]types.ChatMessage, error)
	Clear(ctx context.Context, key string) error
}

type memoryConversation struct {
	messages  []types.ChatMessage
	expiresAt time.Time
}

type memoryConversationStore struct {
	mu            sync.Mutex
	log           *logger.Logger
	ttl           time.Duration
	conversations map[string]*memoryConversation
}

func NewMemoryConversationStore(log *logger.Logger, ttl time.Duration) ConversationStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &memoryConversationStore{
		log:           log.With("service", "ConversationStore", "backend", "memory"),
		ttl:           ttl,
		conversations: make(map[string]*memoryConversation),
	}
}

func (s *memoryConversationStore) Append(ctx context.Context, key string, msg types.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked()
	conv, ok := s.conversations[key]
	if !ok {
		conv = &memoryConversation{}
		s.conversations[key] = conv
	}
	conv.messages = append(conv.messages, msg)
	conv.expiresAt = time.Now().Add(s.ttl)
	return nil
}

func (s *memoryConversationStore) History(ctx context.Context, key string) ([]types.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked()
	conv, ok := s.conversations[key]
	if !ok {
		return []types.ChatMessage{}, nil
	}
	out := make([]types.ChatMessage, len(conv.messages))
	copy(out, conv.messages)
	return out, nil
}

func (s *memoryConversationStore) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, key)
	return nil
}

func (s *memoryConversationStore) evictExpiredLocked() {
	now := time.Now()
	for key, conv := range s.conversations {
		if now.After(conv.expiresAt) {
			delete(s.conversations, key)
		}
	}
}

type redisConversationStore struct {
	log    *logger.Logger
	client *redis.Client
	ttl    time.Duration
}

// NewRedisConversationStore keeps histories in Redis so chat survives a
// process restart while staying ephemeral through the TTL.
func NewRedisConversationStore(log *logger.Logger, client *redis.Client, ttl time.Duration) ConversationStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisConversationStore{
		log:    log.With("service", "ConversationStore", "backend", "redis"),
		client: client,
		ttl:    ttl,
	}
}

func (s *redisConversationStore) redisKey(key string) string {
	return "conversation:" + key
}

func (s *redisConversationStore) Append(ctx context.Context, key string, msg types.ChatMessage) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.redisKey(key), raw)
	pipe.Expire(ctx, s.redisKey(key), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("Failed to append conversation message: %w", err)
	}
	return nil
}

func (s *redisConversationStore) History(ctx context.Context, key string) ([]types.ChatMessage, error) {
	rawMessages, err := s.client.LRange(ctx, s.redisKey(key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("Failed to read conversation history: %w", err)
	}
	out := make([]types.ChatMessage, 0, len(rawMessages))
	for _, raw := range rawMessages {
		var msg types.ChatMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			s.log.Warn("Skipping undecodable conversation message", "key", key, "error", err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *redisConversationStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.redisKey(key)).Err()
}
