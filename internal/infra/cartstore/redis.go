package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	repo "app/internal/repository"

	"github.com/redis/go-redis/v9"
)

// カートのTTL（最後のmutationから7日）
const TTL = 7 * 24 * time.Hour

// Redis上のカートストア。
// 値は商品IDのJSON配列。書き込みはlast-write-wins（カートは確定データではないので許容）。
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartStore(client *redis.Client) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: TTL}
}

func (s *RedisCartStore) Get(ctx context.Context, owner repo.CartOwner) ([]int64, error) {
	data, err := s.client.Get(ctx, cartKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []int64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return ids, nil
}

func (s *RedisCartStore) Add(ctx context.Context, owner repo.CartOwner, productID int64) (int, error) {
	ids, err := s.Get(ctx, owner)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if id == productID {
			return 0, repo.ErrDuplicateItem
		}
	}

	ids = append(ids, productID)
	if err := s.write(ctx, owner, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *RedisCartStore) Remove(ctx context.Context, owner repo.CartOwner, productID int64) (int, error) {
	ids, err := s.Get(ctx, owner)
	if err != nil {
		return 0, err
	}

	kept := ids[:0]
	for _, id := range ids {
		if id != productID {
			kept = append(kept, id)
		}
	}

	//空のカートは保存せずキーごと消す
	if len(kept) == 0 {
		return 0, s.Clear(ctx, owner)
	}

	if err := s.write(ctx, owner, kept); err != nil {
		return 0, err
	}
	return len(kept), nil
}

func (s *RedisCartStore) Clear(ctx context.Context, owner repo.CartOwner) error {
	if err := s.client.Del(ctx, cartKey(owner)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// 書き込みのたびにTTLを張り直す
func (s *RedisCartStore) write(ctx context.Context, owner repo.CartOwner, ids []int64) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(owner), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cartKey(owner repo.CartOwner) string {
	return fmt.Sprintf("cart:%s:%s", owner.Kind, owner.ID)
}
