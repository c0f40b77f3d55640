package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persiste carrito y comprados por usuario. Sin TTL: es
// almacenamiento durable, no cache de lectura.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) LoadCart(ctx context.Context, userKey string) ([]CourseItem, error) {
	var items []CourseItem
	if err := r.load(ctx, cartKey(userKey), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *RedisStore) SaveCart(ctx context.Context, userKey string, items []CourseItem) error {
	return r.save(ctx, cartKey(userKey), items)
}

func (r *RedisStore) LoadPurchased(ctx context.Context, userKey string) (PurchasedList, error) {
	var list PurchasedList
	if err := r.load(ctx, purchasedKey(userKey), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *RedisStore) SavePurchased(ctx context.Context, userKey string, list PurchasedList) error {
	return r.save(ctx, purchasedKey(userKey), list)
}

func (r *RedisStore) load(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r *RedisStore) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cartKey(userKey string) string {
	return fmt.Sprintf("cart:%s", userKey)
}

func purchasedKey(userKey string) string {
	return fmt.Sprintf("purchased:%s", userKey)
}
