package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrLimitExceeded はウィンドウ内の上限超過を表す
var ErrLimitExceeded = errors.New("レート制限を超過しました")

// Entry は送信元ごとのカウンタ状態
type Entry struct {
	Count       int       `json:"count"`
	WindowStart time.Time `json:"window_start"`
}

// Store はカウンタ状態の保存先インターフェース
// プロセス内マップからRedisなどの共有ストアに差し替えられる
type Store interface {
	// Get はキーの状態を取得する。存在しない場合は ok=false
	Get(ctx context.Context, key string) (entry Entry, ok bool, err error)

	// Put はキーの状態を保存する。ttl 経過後は破棄してよい
	Put(ctx context.Context, key string, entry Entry, ttl time.Duration) error
}

// Limiter は固定ウィンドウ方式のベストエフォートなレート制限
// 永続性は保証せず、ストア次第でプロセス再起動時にリセットされる
type Limiter struct {
	store  Store
	max    int
	window time.Duration
	now    func() time.Time
}

// NewLimiter は新しいLimiterを作成する
// now がnilの場合は time.Now を使う
func NewLimiter(store Store, max int, window time.Duration, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{store: store, max: max, window: window, now: now}
}

// Allow はキーからの1回の試行を記録する
// 上限超過なら ErrLimitExceeded、ストア障害ならそのエラーを返す
func (l *Limiter) Allow(ctx context.Context, key string) error {
	now := l.now()

	entry, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return err
	}

	// ウィンドウ外ならカウンタをリセット
	if !ok || now.Sub(entry.WindowStart) > l.window {
		entry = Entry{}
	}

	if entry.Count >= l.max {
		return ErrLimitExceeded
	}

	entry.Count++
	entry.WindowStart = now
	return l.store.Put(ctx, key, entry, l.window)
}
