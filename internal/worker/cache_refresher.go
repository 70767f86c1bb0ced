package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helium876/Fetelendr/internal/domain/fete"
	"github.com/helium876/Fetelendr/internal/pkg/logger"
)

// FeteLister はイベント一覧を取得するインターフェース
type FeteLister interface {
	ListFetes(ctx context.Context) ([]*fete.Fete, error)
}

// CacheRefresher はイベント一覧キャッシュを定期的に温めるワーカー
// シートの読み取りは遅いので、TTL切れをリクエストに踏ませない
type CacheRefresher struct {
	catalogService FeteLister
	interval       time.Duration
	stopCh         chan struct{}
	doneCh         chan struct{}
}

// NewCacheRefresher は新しいリフレッシャーを作成
func NewCacheRefresher(cs FeteLister, interval time.Duration) *CacheRefresher {
	return &CacheRefresher{
		catalogService: cs,
		interval:       interval,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start はリフレッシャーを開始
func (r *CacheRefresher) Start(ctx context.Context) {
	logger.Info("キャッシュリフレッシャー開始",
		zap.Duration("interval", r.interval),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("キャッシュリフレッシャー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("キャッシュリフレッシャー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop はリフレッシャーを停止
func (r *CacheRefresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// refresh はイベント一覧を取得し直してキャッシュを更新する
func (r *CacheRefresher) refresh(ctx context.Context) {
	log := logger.Get()
	log.Debug("イベント一覧のリフレッシュ開始")

	fetes, err := r.catalogService.ListFetes(ctx)
	if err != nil {
		log.Error("イベント一覧のリフレッシュ失敗", zap.Error(err))
		return
	}

	log.Debug("イベント一覧をリフレッシュ", zap.Int("count", len(fetes)))
}
