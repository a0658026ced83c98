// FILE: pkg/rag/memory/store.go
// PURPOSE: Session-scoped chat memory on a bounded Redis list with TTL

package memory

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ai-kbchat-be/internal/constant"
	"ai-kbchat-be/internal/pkg/logger"
)

const keyPrefix = "chat:memory:"

const (
	// MaxMessagesPerSession caps the stored window (user + assistant).
	MaxMessagesPerSession = 10

	// MaxMessagesInPrompt caps how many stored messages reach the LLM prompt.
	// Must stay <= MaxMessagesPerSession.
	MaxMessagesInPrompt = 8
)

const (
	// TemporaryTTL applies to sessions minted for anonymous requests.
	TemporaryTTL = 1 * time.Minute

	// PersistentTTL applies to named sessions and is refreshed on every
	// appended turn (rolling window).
	PersistentTTL = 7 * 24 * time.Hour
)

// StoredMessage is one chat message as serialized into the session list.
// Immutable once written.
type StoredMessage struct {
	Role      string `json:"role"` // "user" | "assistant"
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

// ListStore is the narrow key-value list contract the memory store needs.
// Satisfied by RedisListStore in production and by fakes in tests.
type ListStore interface {
	Append(ctx context.Context, key string, value string) error
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)
	Trim(ctx context.Context, key string, start, stop int64) error
	Size(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Store is the session-scoped chat memory. AppendTurn is the only mutator;
// reads never mutate.
type Store struct {
	list   ListStore
	logger logger.ILogger
}

func NewStore(list ListStore, log logger.ILogger) *Store {
	return &Store{
		list:   list,
		logger: log,
	}
}

// LoadHistory returns at most the last MaxMessagesPerSession messages for
// the session, oldest first. A missing or empty key yields an empty slice.
// Malformed entries are skipped individually instead of failing the load.
func (s *Store) LoadHistory(ctx context.Context, sessionId string) ([]StoredMessage, error) {
	key := buildKey(sessionId)

	size, err := s.list.Size(ctx, key)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}

	start := size - MaxMessagesPerSession
	if start < 0 {
		start = 0
	}

	raw, err := s.list.Range(ctx, key, start, size-1)
	if err != nil {
		return nil, err
	}

	messages := make([]StoredMessage, 0, len(raw))
	for _, entry := range raw {
		var msg StoredMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			s.logger.Warn("ChatMemory", "Skipping malformed history entry", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// AppendTurn appends one full conversation turn (user then assistant), trims
// the list to the stored window and refreshes the key TTL. Temporary sessions
// get the short TTL, named sessions the rolling persistent TTL.
func (s *Store) AppendTurn(ctx context.Context, sessionId, userMessage, assistantMessage string, temporary bool) error {
	key := buildKey(sessionId)
	now := time.Now().UnixMilli()

	turn := []StoredMessage{
		{Role: "user", Content: userMessage, Timestamp: now},
		{Role: "assistant", Content: assistantMessage, Timestamp: now},
	}

	for _, msg := range turn {
		payload, err := json.Marshal(msg)
		if err != nil {
			// Drop this message rather than aborting the whole turn.
			s.logger.Warn("ChatMemory", "Dropping unserializable message", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
			continue
		}
		if err := s.list.Append(ctx, key, string(payload)); err != nil {
			return err
		}
	}

	size, err := s.list.Size(ctx, key)
	if err != nil {
		return err
	}
	if size > MaxMessagesPerSession {
		if err := s.list.Trim(ctx, key, size-MaxMessagesPerSession, size-1); err != nil {
			return err
		}
	}

	ttl := PersistentTTL
	if temporary {
		ttl = TemporaryTTL
	}
	return s.list.Expire(ctx, key, ttl)
}

// RenderHistory joins the last MaxMessagesInPrompt messages into
// "role: content" lines for prompt injection.
func RenderHistory(messages []StoredMessage) string {
	if len(messages) == 0 {
		return constant.NoPriorConversation
	}

	start := len(messages) - MaxMessagesInPrompt
	if start < 0 {
		start = 0
	}
	window := messages[start:]

	lines := make([]string, len(window))
	for i, msg := range window {
		lines[i] = msg.Role + ": " + msg.Content
	}
	return strings.Join(lines, "\n")
}

func buildKey(sessionId string) string {
	return keyPrefix + sessionId
}
