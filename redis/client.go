package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	keyPrefix = "chat_history:"
	// maxMessages caps a transcript; older entries are trimmed on write.
	maxMessages = 200
)

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewClient connects to Redis. A failed ping is logged but not fatal: the
// transcript is best-effort and the chat keeps working without it.
func NewClient(ctx context.Context, addr, password string, db int, ttl time.Duration) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	client := &Client{rdb: rdb, ttl: ttl}

	if err := client.Ping(ctx); err != nil {
		log.Warn().Err(err).
			Str("addr", addr).
			Int("db", db).
			Msg("Redis connection failed, transcripts may be lost")
	} else {
		log.Info().
			Str("addr", addr).
			Int("db", db).
			Msg("Redis connected successfully")
	}

	return client
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) AddUserMessage(ctx context.Context, sessionID, message string) error {
	return c.addMessage(ctx, sessionID, ChatMessage{
		Role:      "user",
		Content:   message,
		Timestamp: time.Now(),
	})
}

func (c *Client) AddBotMessage(ctx context.Context, sessionID, message string) error {
	return c.addMessage(ctx, sessionID, ChatMessage{
		Role:      "assistant",
		Content:   message,
		Timestamp: time.Now(),
	})
}

func (c *Client) addMessage(ctx context.Context, sessionID string, message ChatMessage) error {
	messageJSON, err := json.Marshal(message)
	if err != nil {
		return err
	}

	key := historyKey(sessionID)
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, messageJSON)
		pipe.LTrim(ctx, key, -maxMessages, -1)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: append to %s: %w", key, err)
	}
	return nil
}

// GetChatHistory returns the whole transcript of a session, oldest first.
func (c *Client) GetChatHistory(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	return c.GetRecentHistory(ctx, sessionID, 0)
}

// GetRecentHistory returns at most limit of the latest messages, oldest
// first. A limit of zero or less returns everything.
func (c *Client) GetRecentHistory(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	messages, err := c.rdb.LRange(ctx, historyKey(sessionID), start, -1).Result()
	if err != nil {
		return nil, err
	}

	chatHistory := make([]ChatMessage, 0, len(messages))
	for _, message := range messages {
		var msg ChatMessage
		if err := json.Unmarshal([]byte(message), &msg); err != nil {
			continue
		}
		chatHistory = append(chatHistory, msg)
	}

	return chatHistory, nil
}

func (c *Client) ClearChatHistory(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, historyKey(sessionID)).Err()
}

func historyKey(sessionID string) string {
	return keyPrefix + sessionID
}
