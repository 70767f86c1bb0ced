package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/helium876/Fetelendr/internal/pkg/ratelimit"
)

// RateLimitStore はレート制限カウンタのRedis実装
// 複数インスタンスでカウンタを共有したい場合に
// インメモリストアと差し替えて使う
type RateLimitStore struct {
	client *redis.Client
}

// NewRateLimitStore は新しいRateLimitStoreを作成する
func NewRateLimitStore(client *redis.Client) *RateLimitStore {
	return &RateLimitStore{client: client}
}

var _ ratelimit.Store = (*RateLimitStore)(nil)

// Get はキーのカウンタ状態を取得する
func (s *RateLimitStore) Get(ctx context.Context, key string) (ratelimit.Entry, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ratelimit.Entry{}, false, nil
		}
		return ratelimit.Entry{}, false, fmt.Errorf("レート制限状態の取得に失敗: %w", err)
	}

	var entry ratelimit.Entry
	if err := json.Unmarshal(val, &entry); err != nil {
		return ratelimit.Entry{}, false, nil
	}
	return entry, true, nil
}

// Put はキーのカウンタ状態をTTL付きで保存する
func (s *RateLimitStore) Put(ctx context.Context, key string, entry ratelimit.Entry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("レート制限状態のエンコードに失敗: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("レート制限状態の保存に失敗: %w", err)
	}
	return nil
}

func (s *RateLimitStore) key(source string) string {
	return "ratelimit:submission:" + source
}
