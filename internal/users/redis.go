package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/brizzai/moodlist/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each record as a JSON string under user:<uid>, without TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(uid string) string {
	return fmt.Sprintf("user:%s", uid)
}

func (r *RedisStore) Get(ctx context.Context, uid string) (*models.User, error) {
	data, err := r.client.Get(ctx, redisKey(uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

func (r *RedisStore) Save(ctx context.Context, user *models.User) error {
	if err := validate(user); err != nil {
		return err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(user.UID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
