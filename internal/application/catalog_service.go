package application

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/helium876/Fetelendr/internal/domain/fete"
	"github.com/helium876/Fetelendr/internal/pkg/logger"
	"github.com/helium876/Fetelendr/internal/pkg/metrics"
)

// FeteCache はイベント一覧キャッシュのインターフェース
// キャッシュは補助的なもので、失敗はフェッチで埋め合わせる
type FeteCache interface {
	Get(ctx context.Context) ([]*fete.Fete, error)
	Set(ctx context.Context, fetes []*fete.Fete, ttl time.Duration) error
}

// CatalogService はイベント一覧の取得とカタログビューの導出を行う
type CatalogService struct {
	source     fete.RowSource
	normalizer *fete.Normalizer
	cache      FeteCache
	cacheTTL   time.Duration
	m          *metrics.Metrics
	now        func() time.Time
}

// NewCatalogService は新しいCatalogServiceを作成する
// cache はnil可（キャッシュ無効）。now がnilの場合は time.Now を使う
func NewCatalogService(source fete.RowSource, normalizer *fete.Normalizer, cache FeteCache, cacheTTL time.Duration, m *metrics.Metrics, now func() time.Time) *CatalogService {
	if now == nil {
		now = time.Now
	}
	return &CatalogService{
		source:     source,
		normalizer: normalizer,
		cache:      cache,
		cacheTTL:   cacheTTL,
		m:          m,
		now:        now,
	}
}

// ListFetes は正規化済みのイベント一覧を日付昇順で返す
// 日付未定の行は除外される。キャッシュがあればそれを優先し、
// ソース障害時のみエラーを返す
func (s *CatalogService) ListFetes(ctx context.Context) ([]*fete.Fete, error) {
	if s.cache != nil {
		if fetes, err := s.cache.Get(ctx); err == nil {
			s.countFetch("cache")
			return fetes, nil
		}
	}

	rows, err := s.source.ListRows(ctx)
	if err != nil {
		s.countFetch("error")
		return nil, err
	}

	fetes := make([]*fete.Fete, 0, len(rows))
	for i, row := range rows {
		f := s.normalizer.Normalize(ctx, i, row)
		s.countPoster(f)
		if !f.HasDate() {
			continue
		}
		fetes = append(fetes, f)
	}

	// yyyy-MM-dd は辞書順がそのまま時系列順になる
	sort.SliceStable(fetes, func(i, j int) bool {
		return fetes[i].Date < fetes[j].Date
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, fetes, s.cacheTTL); err != nil {
			logger.Warn("イベント一覧のキャッシュ保存に失敗", zap.Error(err))
		}
	}

	s.countFetch("sheet")
	return fetes, nil
}

// CatalogView はフィルタ適用後の1ページ分のカタログ
type CatalogView struct {
	Fetes   []*fete.Fete
	Total   int
	Page    int
	HasMore bool
}

// Catalog はフィルタ状態に応じた表示対象のページを返す
func (s *CatalogService) Catalog(ctx context.Context, state fete.FilterState, page int) (*CatalogView, error) {
	all, err := s.ListFetes(ctx)
	if err != nil {
		return nil, err
	}

	visible := fete.Visible(all, state, s.now())
	pageFetes, hasMore := fete.Paginate(visible, page, fete.EventsPerPage)
	if page < 1 {
		page = 1
	}

	return &CatalogView{
		Fetes:   pageFetes,
		Total:   len(visible),
		Page:    page,
		HasMore: hasMore,
	}, nil
}

// Featured は今日以降のおすすめイベントを最大3件返す
func (s *CatalogService) Featured(ctx context.Context) ([]*fete.Fete, error) {
	all, err := s.ListFetes(ctx)
	if err != nil {
		return nil, err
	}
	return fete.Featured(all, s.now()), nil
}

// Years は選択可能な年の一覧を返す
func (s *CatalogService) Years(ctx context.Context) ([]int, error) {
	all, err := s.ListFetes(ctx)
	if err != nil {
		return nil, err
	}
	return fete.AvailableYears(all, s.now()), nil
}

func (s *CatalogService) countFetch(source string) {
	if s.m != nil {
		s.m.FetchesTotal.WithLabelValues(source).Inc()
	}
}

func (s *CatalogService) countPoster(f *fete.Fete) {
	if s.m == nil {
		return
	}
	result := "resolved"
	if fete.IsTBA(f.Poster) {
		result = "fallback_tba"
	}
	s.m.PosterResolutionsTotal.WithLabelValues(result).Inc()
}
