package message

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/KirkDiggler/blacksheep/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefix for Redis
	roomKeyPrefix = "room:"

	// DefaultTTL is how long an untouched log is kept
	DefaultTTL = 24 * time.Hour
)

// Config holds configuration for the Redis message repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// TTL of a log, refreshed on every append
	TTL time.Duration
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a new Redis-backed message repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &redisRepository{
		client: cfg.RedisClient,
		ttl:    ttl,
	}, nil
}

func logKey(code string) string {
	return roomKeyPrefix + code + ":messages"
}

// ChangesChannel is the pub/sub channel notified when a room's log changes
func ChangesChannel(code string) string {
	return roomKeyPrefix + code + ":messages:changes"
}

// AppendMessage adds a message scored by its creation time
func (r *redisRepository) AppendMessage(ctx context.Context, input *AppendMessageInput) error {
	if input == nil || input.Message == nil {
		return errors.New("input and message cannot be nil")
	}
	if input.RoomCode == "" {
		return errors.New("room code cannot be empty")
	}
	if input.Message.ID == "" {
		return errors.New("message ID cannot be empty")
	}

	messageJSON, err := json.Marshal(input.Message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := logKey(input.RoomCode)
	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(input.Message.CreatedAt.UnixMicro()),
		Member: messageJSON,
	})
	pipe.Expire(ctx, key, r.ttl)
	pipe.Publish(ctx, ChangesChannel(input.RoomCode), input.Message.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	return nil
}

// ListMessages returns a room's log, oldest first
func (r *redisRepository) ListMessages(ctx context.Context, input *ListMessagesInput) (*ListMessagesOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, errors.New("input and room code cannot be empty")
	}

	members, err := r.client.ZRange(ctx, logKey(input.RoomCode), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]*models.Message, 0, len(members))
	for _, member := range members {
		var msg models.Message
		if err := json.Unmarshal([]byte(member), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		messages = append(messages, &msg)
	}

	// Members sharing a score come back in lexical order
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	return &ListMessagesOutput{
		Messages: messages,
	}, nil
}

// ClearMessages removes a room's log or the entries of one round
func (r *redisRepository) ClearMessages(ctx context.Context, input *ClearMessagesInput) error {
	if input == nil || input.RoomCode == "" {
		return errors.New("input and room code cannot be empty")
	}

	key := logKey(input.RoomCode)

	if input.Round == 0 {
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, key)
		pipe.Publish(ctx, ChangesChannel(input.RoomCode), "clear")
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear messages: %w", err)
		}
		return nil
	}

	members, err := r.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	var remove []interface{}
	for _, member := range members {
		var msg models.Message
		if err := json.Unmarshal([]byte(member), &msg); err != nil {
			return fmt.Errorf("failed to unmarshal message: %w", err)
		}
		if msg.Round == input.Round {
			remove = append(remove, member)
		}
	}
	if len(remove) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	pipe.ZRem(ctx, key, remove...)
	pipe.Publish(ctx, ChangesChannel(input.RoomCode), "clear")
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}

	return nil
}

// SubscribeMessages sends the current log and then a fresh snapshot after
// every change notification
func (r *redisRepository) SubscribeMessages(ctx context.Context, input *SubscribeMessagesInput) (*SubscribeMessagesOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, errors.New("input and room code cannot be empty")
	}

	pubsub := r.client.Subscribe(ctx, ChangesChannel(input.RoomCode))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to messages: %w", err)
	}

	list := &ListMessagesInput{RoomCode: input.RoomCode}
	initial, err := r.ListMessages(ctx, list)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	snapshots := make(chan []*models.Message, 16)
	snapshots <- initial.Messages

	go func() {
		defer close(snapshots)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = pubsub.Close()
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				out, err := r.ListMessages(ctx, list)
				if err != nil {
					continue
				}
				select {
				case snapshots <- out.Messages:
				case <-ctx.Done():
					_ = pubsub.Close()
					return
				}
			}
		}
	}()

	return &SubscribeMessagesOutput{
		Snapshots: snapshots,
		Close:     pubsub.Close,
	}, nil
}
