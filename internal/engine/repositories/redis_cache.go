package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anhbaysgalan1/numpoker/internal/application/dto"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisCache caches read views so that other processes (and repeated
// polls) can be answered without touching the game lock.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

const (
	// Cache key prefixes
	gameViewPrefix = "numpoker:game_view:"
	historyPrefix  = "numpoker:history:"

	// Cache TTL durations
	gameViewTTL = 1 * time.Hour
	historyTTL  = 6 * time.Hour
)

func gameViewKey(gameID uuid.UUID) string {
	return gameViewPrefix + gameID.String()
}

func historyKey(gameID uuid.UUID) string {
	return historyPrefix + gameID.String()
}

// SetGameView caches the current view of a game
func (rc *RedisCache) SetGameView(ctx context.Context, gameID uuid.UUID, view *dto.GameView) error {
	return rc.set(ctx, gameViewKey(gameID), view, gameViewTTL)
}

// GetGameView returns the cached view, or nil on a cache miss
func (rc *RedisCache) GetGameView(ctx context.Context, gameID uuid.UUID) (*dto.GameView, error) {
	var view dto.GameView
	ok, err := rc.get(ctx, gameViewKey(gameID), &view)
	if err != nil || !ok {
		return nil, err
	}
	return &view, nil
}

// SetHistory caches the round history of a game
func (rc *RedisCache) SetHistory(ctx context.Context, gameID uuid.UUID, history []dto.RoundView) error {
	return rc.set(ctx, historyKey(gameID), history, historyTTL)
}

// GetHistory returns the cached history, or nil on a cache miss
func (rc *RedisCache) GetHistory(ctx context.Context, gameID uuid.UUID) ([]dto.RoundView, error) {
	var history []dto.RoundView
	ok, err := rc.get(ctx, historyKey(gameID), &history)
	if err != nil || !ok {
		return nil, err
	}
	return history, nil
}

// InvalidateGame removes all cached data for a game
func (rc *RedisCache) InvalidateGame(ctx context.Context, gameID uuid.UUID) error {
	return rc.client.Del(ctx, gameViewKey(gameID), historyKey(gameID)).Err()
}

func (rc *RedisCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := rc.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return nil
}

func (rc *RedisCache) get(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := rc.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // Cache miss
		}
		return false, fmt.Errorf("failed to get cached %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}
