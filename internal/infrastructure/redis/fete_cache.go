package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/helium876/Fetelendr/internal/domain/fete"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

const feteListKey = "fetes:list"

// FeteCache は正規化済みイベント一覧の短期キャッシュを管理する
// キャッシュはあくまで補助であり、失敗しても呼び出し元は
// ソースから再取得すればよい
type FeteCache struct {
	client *redis.Client
}

// NewFeteCache は新しいFeteCacheインスタンスを作成する
func NewFeteCache(client *redis.Client) *FeteCache {
	return &FeteCache{client: client}
}

// Get はイベント一覧をキャッシュから取得する
func (c *FeteCache) Get(ctx context.Context) ([]*fete.Fete, error) {
	val, err := c.client.Get(ctx, feteListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}

	var fetes []*fete.Fete
	if err := json.Unmarshal(val, &fetes); err != nil {
		// 壊れたエントリはミス扱いにして捨てる
		c.client.Del(ctx, feteListKey)
		return nil, ErrCacheMiss
	}
	return fetes, nil
}

// Set はイベント一覧をキャッシュに保存する
func (c *FeteCache) Set(ctx context.Context, fetes []*fete.Fete, ttl time.Duration) error {
	data, err := json.Marshal(fetes)
	if err != nil {
		return fmt.Errorf("キャッシュのエンコードに失敗: %w", err)
	}
	if err := c.client.Set(ctx, feteListKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はイベント一覧のキャッシュを無効化する
func (c *FeteCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, feteListKey).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}
