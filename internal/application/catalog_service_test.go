package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/helium876/Fetelendr/internal/domain/fete"
)

// MockRowSource はfete.RowSourceのモック
type MockRowSource struct {
	mock.Mock
}

func (m *MockRowSource) ListRows(ctx context.Context) ([]fete.RawRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fete.RawRow), args.Error(1)
}

// MockFeteCache はFeteCacheのモック
type MockFeteCache struct {
	mock.Mock
}

func (m *MockFeteCache) Get(ctx context.Context) ([]*fete.Fete, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fete.Fete), args.Error(1)
}

func (m *MockFeteCache) Set(ctx context.Context, fetes []*fete.Fete, ttl time.Duration) error {
	args := m.Called(ctx, fetes, ttl)
	return args.Error(0)
}

var catalogNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func fixedCatalogNow() time.Time {
	return catalogNow
}

// 読み取り列順: venue, title, date, type, time, ticketPrice,
// ticketLinks, description, status, poster
func testRow(venue, title, date, types, status string) fete.RawRow {
	return fete.RawRow{venue, title, date, types, "22:00", "J$5000", "", "", status, ""}
}

func TestCatalogService_ListFetes(t *testing.T) {
	ctx := context.Background()

	t.Run("行を正規化して日付昇順で返す", func(t *testing.T) {
		source := new(MockRowSource)
		source.On("ListRows", ctx).Return([]fete.RawRow{
			testRow("Mas Camp", "Late Fete", "July 10, 2025", "Soca", "public"),
			testRow("Hope Gardens", "Early Fete", "June 20, 2025", "Soca", "public"),
		}, nil)

		service := NewCatalogService(source, fete.NewNormalizer(nil), nil, 0, nil, fixedCatalogNow)

		fetes, err := service.ListFetes(ctx)

		require.NoError(t, err)
		require.Len(t, fetes, 2)
		assert.Equal(t, "Early Fete", fetes[0].Title)
		assert.Equal(t, "Late Fete", fetes[1].Title)
		source.AssertExpectations(t)
	})

	t.Run("日付未定の行は除外される", func(t *testing.T) {
		source := new(MockRowSource)
		source.On("ListRows", ctx).Return([]fete.RawRow{
			testRow("Mas Camp", "Dated Fete", "June 20, 2025", "Soca", "public"),
			testRow("Hope Gardens", "Undated Fete", "", "Soca", "public"),
		}, nil)

		service := NewCatalogService(source, fete.NewNormalizer(nil), nil, 0, nil, fixedCatalogNow)

		fetes, err := service.ListFetes(ctx)

		require.NoError(t, err)
		require.Len(t, fetes, 1)
		assert.Equal(t, "Dated Fete", fetes[0].Title)
	})

	t.Run("キャッシュヒット時はソースを呼ばない", func(t *testing.T) {
		source := new(MockRowSource)
		cache := new(MockFeteCache)
		cached := []*fete.Fete{{ID: "0", Title: "Cached Fete", Date: "2025-06-20"}}
		cache.On("Get", ctx).Return(cached, nil)

		service := NewCatalogService(source, fete.NewNormalizer(nil), cache, 15*time.Minute, nil, fixedCatalogNow)

		fetes, err := service.ListFetes(ctx)

		require.NoError(t, err)
		assert.Equal(t, cached, fetes)
		source.AssertNotCalled(t, "ListRows", mock.Anything)
	})

	t.Run("キャッシュミス時はフェッチして保存する", func(t *testing.T) {
		source := new(MockRowSource)
		source.On("ListRows", ctx).Return([]fete.RawRow{
			testRow("Mas Camp", "Fresh Fete", "June 20, 2025", "Soca", "public"),
		}, nil)

		cache := new(MockFeteCache)
		cache.On("Get", ctx).Return(nil, errors.New("キャッシュが見つかりません"))
		cache.On("Set", ctx, mock.Anything, 15*time.Minute).Return(nil)

		service := NewCatalogService(source, fete.NewNormalizer(nil), cache, 15*time.Minute, nil, fixedCatalogNow)

		fetes, err := service.ListFetes(ctx)

		require.NoError(t, err)
		require.Len(t, fetes, 1)
		cache.AssertExpectations(t)
	})

	t.Run("キャッシュ保存の失敗は無視される", func(t *testing.T) {
		source := new(MockRowSource)
		source.On("ListRows", ctx).Return([]fete.RawRow{
			testRow("Mas Camp", "Fresh Fete", "June 20, 2025", "Soca", "public"),
		}, nil)

		cache := new(MockFeteCache)
		cache.On("Get", ctx).Return(nil, errors.New("キャッシュが見つかりません"))
		cache.On("Set", ctx, mock.Anything, mock.Anything).Return(errors.New("redis down"))

		service := NewCatalogService(source, fete.NewNormalizer(nil), cache, 15*time.Minute, nil, fixedCatalogNow)

		fetes, err := service.ListFetes(ctx)

		require.NoError(t, err)
		assert.Len(t, fetes, 1)
	})

	t.Run("ソース障害はエラーを返す", func(t *testing.T) {
		source := new(MockRowSource)
		source.On("ListRows", ctx).Return(nil, fete.ErrSourceUnavailable)

		service := NewCatalogService(source, fete.NewNormalizer(nil), nil, 0, nil, fixedCatalogNow)

		_, err := service.ListFetes(ctx)

		assert.ErrorIs(t, err, fete.ErrSourceUnavailable)
	})
}

func TestCatalogService_Catalog(t *testing.T) {
	ctx := context.Background()

	source := new(MockRowSource)
	source.On("ListRows", ctx).Return([]fete.RawRow{
		testRow("Mas Camp", "June Soca", "June 20, 2025", "Soca", "public"),
		testRow("Hope Gardens", "June Jouvert", "June 21, 2025", "Jouvert", "public"),
		testRow("Plantation Cove", "July Fete", "July 4, 2025", "Soca", "public"),
	}, nil)

	service := NewCatalogService(source, fete.NewNormalizer(nil), nil, 0, nil, fixedCatalogNow)

	t.Run("月とカテゴリで絞り込んだページを返す", func(t *testing.T) {
		state := fete.FilterState{Month: time.June, Year: 2025, Category: "Soca"}

		view, err := service.Catalog(ctx, state, 1)

		require.NoError(t, err)
		require.Len(t, view.Fetes, 1)
		assert.Equal(t, "June Soca", view.Fetes[0].Title)
		assert.Equal(t, 1, view.Total)
		assert.Equal(t, 1, view.Page)
		assert.False(t, view.HasMore)
	})

	t.Run("該当なしでも空のビューを返す", func(t *testing.T) {
		state := fete.FilterState{Month: time.December, Year: 2025, Category: fete.CategoryAll}

		view, err := service.Catalog(ctx, state, 1)

		require.NoError(t, err)
		assert.Empty(t, view.Fetes)
		assert.Equal(t, 0, view.Total)
	})
}

func TestCatalogService_Featured(t *testing.T) {
	ctx := context.Background()

	source := new(MockRowSource)
	source.On("ListRows", ctx).Return([]fete.RawRow{
		testRow("Mas Camp", "Featured Fete", "June 20, 2025", "Soca", "featured"),
		testRow("Hope Gardens", "Plain Fete", "June 21, 2025", "Soca", "public"),
		testRow("Plantation Cove", "Past Featured", "June 1, 2025", "Soca", "featured"),
	}, nil)

	service := NewCatalogService(source, fete.NewNormalizer(nil), nil, 0, nil, fixedCatalogNow)

	fetes, err := service.Featured(ctx)

	require.NoError(t, err)
	require.Len(t, fetes, 1)
	assert.Equal(t, "Featured Fete", fetes[0].Title)
}

func TestCatalogService_Years(t *testing.T) {
	ctx := context.Background()

	source := new(MockRowSource)
	source.On("ListRows", ctx).Return([]fete.RawRow{
		testRow("Mas Camp", "This Year", "June 20, 2025", "Soca", "public"),
		testRow("Hope Gardens", "Next Year", "March 1, 2026", "Soca", "public"),
	}, nil)

	service := NewCatalogService(source, fete.NewNormalizer(nil), nil, 0, nil, fixedCatalogNow)

	years, err := service.Years(ctx)

	require.NoError(t, err)
	assert.Equal(t, []int{2025, 2026}, years)
}
