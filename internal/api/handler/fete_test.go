package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/helium876/Fetelendr/internal/application"
	"github.com/helium876/Fetelendr/internal/domain/fete"
)

// MockCatalogService はCatalogServiceInterfaceのモック
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListFetes(ctx context.Context) ([]*fete.Fete, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fete.Fete), args.Error(1)
}

func (m *MockCatalogService) Catalog(ctx context.Context, state fete.FilterState, page int) (*application.CatalogView, error) {
	args := m.Called(ctx, state, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.CatalogView), args.Error(1)
}

func (m *MockCatalogService) Featured(ctx context.Context) ([]*fete.Fete, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fete.Fete), args.Error(1)
}

func (m *MockCatalogService) Years(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

var handlerNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func fixedHandlerNow() time.Time {
	return handlerNow
}

func TestFeteHandler_List(t *testing.T) {
	t.Run("イベント一覧を封筒形式で返す", func(t *testing.T) {
		service := new(MockCatalogService)
		service.On("ListFetes", mock.Anything).Return([]*fete.Fete{
			{ID: "0", Title: "Sunrise Breakfast Party", Date: "2025-07-01"},
		}, nil)

		e := NewTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/fetes", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		h := NewFeteHandler(service, fixedHandlerNow)

		err := h.List(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Sunrise Breakfast Party", resp.Data[0].Title)
		assert.Empty(t, resp.Error)
	})

	t.Run("イベントがなくても空配列を返す", func(t *testing.T) {
		service := new(MockCatalogService)
		service.On("ListFetes", mock.Anything).Return([]*fete.Fete{}, nil)

		e := NewTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/fetes", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		h := NewFeteHandler(service, fixedHandlerNow)

		err := h.List(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
	})

	t.Run("ソース障害は500と統一エラーメッセージ", func(t *testing.T) {
		service := new(MockCatalogService)
		service.On("ListFetes", mock.Anything).Return(nil, fete.ErrSourceUnavailable)

		e := NewTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/fetes", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		h := NewFeteHandler(service, fixedHandlerNow)

		err := h.List(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp ListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "Failed to fetch events", resp.Error)
	})
}

func TestFeteHandler_Catalog(t *testing.T) {
	t.Run("クエリパラメータがフィルタ状態に反映される", func(t *testing.T) {
		service := new(MockCatalogService)
		expectedState := fete.FilterState{
			Month:    time.July,
			Year:     2026,
			Category: "Soca",
			Search:   "",
		}
		service.On("Catalog", mock.Anything, expectedState, 2).Return(&application.CatalogView{
			Fetes:   []*fete.Fete{{ID: "0", Title: "July Fete"}},
			Total:   13,
			Page:    2,
			HasMore: false,
		}, nil)

		e := NewTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/fetes/catalog?month=7&year=2026&category=Soca&page=2", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		h := NewFeteHandler(service, fixedHandlerNow)

		err := h.Catalog(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp CatalogResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 13, resp.Total)
		assert.Equal(t, 2, resp.Page)
		assert.False(t, resp.HasMore)
		service.AssertExpectations(t)
	})

	t.Run("パラメータ未指定は現在の月年とallカテゴリ", func(t *testing.T) {
		service := new(MockCatalogService)
		expectedState := fete.FilterState{
			Month:    time.June,
			Year:     2025,
			Category: fete.CategoryAll,
		}
		service.On("Catalog", mock.Anything, expectedState, 1).Return(&application.CatalogView{
			Fetes: []*fete.Fete{},
			Page:  1,
		}, nil)

		e := NewTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/fetes/catalog", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		h := NewFeteHandler(service, fixedHandlerNow)

		err := h.Catalog(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("検索語はフィルタ状態に渡される", func(t *testing.T) {
		service := new(MockCatalogService)
		service.On("Catalog", mock.Anything, mock.MatchedBy(func(state fete.FilterState) bool {
			return state.Search == "sunrise"
		}), 1).Return(&application.CatalogView{Fetes: []*fete.Fete{}, Page: 1}, nil)

		e := NewTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/fetes/catalog?q=sunrise", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		h := NewFeteHandler(service, fixedHandlerNow)

		err := h.Catalog(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("範囲外の月は400", func(t *testing.T) {
		service := new(MockCatalogService)

		e := NewTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/fetes/catalog?month=13", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		h := NewFeteHandler(service, fixedHandlerNow)

		err := h.Catalog(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "Catalog", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFeteHandler_Featured(t *testing.T) {
	service := new(MockCatalogService)
	service.On("Featured", mock.Anything).Return([]*fete.Fete{
		{ID: "0", Title: "Featured Fete", Date: "2025-07-01", Status: "featured"},
	}, nil)

	e := NewTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/fetes/featured", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewFeteHandler(service, fixedHandlerNow)

	err := h.Featured(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Featured Fete", resp.Data[0].Title)
}

func TestFeteHandler_Years(t *testing.T) {
	service := new(MockCatalogService)
	service.On("Years", mock.Anything).Return([]int{2025, 2026}, nil)

	e := NewTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/fetes/years", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewFeteHandler(service, fixedHandlerNow)

	err := h.Years(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp YearsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []int{2025, 2026}, resp.Years)
}
