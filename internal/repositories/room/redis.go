package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/blacksheep/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	roomKeyPrefix  = "room:"
	activeRoomsKey = "active_rooms"

	// DefaultTTL is how long an untouched room is kept
	DefaultTTL = 24 * time.Hour

	// DefaultMaxRetries bounds optimistic update attempts
	DefaultMaxRetries = 8
)

var (
	// ErrRoomNotFound is returned when a room is not found
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomExists is returned when creating a room with a code in use
	ErrRoomExists = errors.New("room already exists")

	// ErrTooManyRetries is returned when concurrent writers kept winning
	ErrTooManyRetries = errors.New("room update retries exhausted")
)

// Config holds configuration for the Redis room repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// TTL of a room key, refreshed on every write
	TTL time.Duration

	// MaxRetries of an update that lost a race
	MaxRetries int
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client     *redis.Client
	ttl        time.Duration
	maxRetries int
}

// NewRedis creates a new Redis-backed room repository
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
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	return &redisRepository{
		client:     cfg.RedisClient,
		ttl:        ttl,
		maxRetries: maxRetries,
	}, nil
}

func roomKey(code string) string {
	return roomKeyPrefix + code
}

// UpdatesChannel is the pub/sub channel carrying a room's committed versions
func UpdatesChannel(code string) string {
	return roomKeyPrefix + code + ":updates"
}

// CreateRoom stores a new room
func (r *redisRepository) CreateRoom(ctx context.Context, input *CreateRoomInput) error {
	if input == nil || input.Room == nil {
		return errors.New("input and room cannot be nil")
	}
	if input.Room.Code == "" {
		return errors.New("room code cannot be empty")
	}

	room := input.Room
	room.Version = 1

	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	created, err := r.client.SetNX(ctx, roomKey(room.Code), roomJSON, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	if !created {
		return ErrRoomExists
	}

	return nil
}

// GetRoom retrieves a room by code
func (r *redisRepository) GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error) {
	if input == nil || input.Code == "" {
		return nil, errors.New("input and room code cannot be empty")
	}

	roomJSON, err := r.client.Get(ctx, roomKey(input.Code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return decodeRoom(roomJSON)
}

// UpdateRoom reads the room under WATCH, applies the mutation and writes it
// back in a MULTI block. A concurrent write to the same room makes EXEC fail
// and the whole read-mutate-write is retried against the newer version.
func (r *redisRepository) UpdateRoom(ctx context.Context, input *UpdateRoomInput) (*models.Room, error) {
	if input == nil || input.Code == "" {
		return nil, errors.New("input and room code cannot be empty")
	}
	if input.Mutate == nil {
		return nil, errors.New("mutate function cannot be nil")
	}

	key := roomKey(input.Code)
	var updated *models.Room

	txf := func(tx *redis.Tx) error {
		roomJSON, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("failed to get room: %w", err)
		}

		room, err := decodeRoom(roomJSON)
		if err != nil {
			return err
		}

		if err := input.Mutate(room); err != nil {
			return err
		}
		room.Version++

		newJSON, err := json.Marshal(room)
		if err != nil {
			return fmt.Errorf("failed to marshal room: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newJSON, r.ttl)
			if room.State.IsActive() {
				pipe.SAdd(ctx, activeRoomsKey, room.Code)
			} else {
				pipe.SRem(ctx, activeRoomsKey, room.Code)
			}
			pipe.Publish(ctx, UpdatesChannel(room.Code), newJSON)
			return nil
		})
		if err != nil {
			return err
		}

		updated = room
		return nil
	}

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}

	return nil, ErrTooManyRetries
}

// Subscribe streams committed versions of a room until Close is called or
// ctx is done
func (r *redisRepository) Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error) {
	if input == nil || input.Code == "" {
		return nil, errors.New("input and room code cannot be empty")
	}

	pubsub := r.client.Subscribe(ctx, UpdatesChannel(input.Code))

	// Wait for the subscription to be confirmed so no update is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to room: %w", err)
	}

	updates := make(chan *models.Room, 16)
	go func() {
		defer close(updates)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				room, err := decodeRoom([]byte(msg.Payload))
				if err != nil {
					continue
				}
				select {
				case updates <- room:
				case <-ctx.Done():
					_ = pubsub.Close()
					return
				}
			}
		}
	}()

	return &SubscribeOutput{
		Updates: updates,
		Close:   pubsub.Close,
	}, nil
}

// GetActiveRooms retrieves rooms with a game in progress. Codes whose room
// has expired are pruned from the index.
func (r *redisRepository) GetActiveRooms(ctx context.Context, input *GetActiveRoomsInput) (*GetActiveRoomsOutput, error) {
	codes, err := r.client.SMembers(ctx, activeRoomsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get active rooms: %w", err)
	}

	if len(codes) == 0 {
		return &GetActiveRoomsOutput{Rooms: []*models.Room{}}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(codes))
	for i, code := range codes {
		cmds[i] = pipe.Get(ctx, roomKey(code))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get active rooms: %w", err)
	}

	rooms := make([]*models.Room, 0, len(codes))
	var stale []interface{}
	for i, cmd := range cmds {
		roomJSON, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				stale = append(stale, codes[i])
				continue
			}
			return nil, fmt.Errorf("failed to get room %s: %w", codes[i], err)
		}

		room, err := decodeRoom(roomJSON)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	if len(stale) > 0 {
		if err := r.client.SRem(ctx, activeRoomsKey, stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune active rooms: %w", err)
		}
	}

	return &GetActiveRoomsOutput{
		Rooms: rooms,
	}, nil
}

func decodeRoom(data []byte) (*models.Room, error) {
	var room models.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}
	if !room.State.Valid() {
		return nil, fmt.Errorf("room %s has unknown state %q", room.Code, room.State)
	}
	if room.Votes == nil {
		room.Votes = map[string]string{}
	}
	return &room, nil
}
