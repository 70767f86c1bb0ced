package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/helium876/Fetelendr/internal/domain/fete"
)

// FeteHandler はイベント一覧・カタログの読み取りハンドラー
type FeteHandler struct {
	catalogService CatalogServiceInterface
	now            func() time.Time
}

// NewFeteHandler はFeteHandlerを作成する
// now がnilの場合は time.Now を使う
func NewFeteHandler(catalogService CatalogServiceInterface, now func() time.Time) *FeteHandler {
	if now == nil {
		now = time.Now
	}
	return &FeteHandler{catalogService: catalogService, now: now}
}

// ListResponse は一覧エンドポイントのレスポンス封筒
// 元システムのペイロード形式と互換
type ListResponse struct {
	Success bool         `json:"success"`
	Data    []*fete.Fete `json:"data"`
	Error   string       `json:"error,omitempty"`
}

// CatalogResponse はカタログエンドポイントのレスポンス
type CatalogResponse struct {
	Success bool         `json:"success"`
	Data    []*fete.Fete `json:"data"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	HasMore bool         `json:"has_more"`
}

// YearsResponse は選択可能な年のレスポンス
type YearsResponse struct {
	Success bool  `json:"success"`
	Years   []int `json:"years"`
}

// List は全イベントを正規化・日付昇順で返す
// クエリパラメータは受け付けない
func (h *FeteHandler) List(c echo.Context) error {
	fetes, err := h.catalogService.ListFetes(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ListResponse{
			Success: false,
			Error:   "Failed to fetch events",
		})
	}

	if fetes == nil {
		fetes = []*fete.Fete{}
	}
	return c.JSON(http.StatusOK, ListResponse{Success: true, Data: fetes})
}

// Catalog はフィルタ状態に応じた表示対象のページを返す
// クエリ: month(1-12), year, category, q, page
func (h *FeteHandler) Catalog(c echo.Context) error {
	now := h.now()
	state := fete.FilterState{
		Month:    now.Month(),
		Year:     now.Year(),
		Category: fete.CategoryAll,
		Search:   c.QueryParam("q"),
	}

	if m, err := strconv.Atoi(c.QueryParam("month")); err == nil {
		if m < 1 || m > 12 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "month must be between 1 and 12"})
		}
		state.Month = time.Month(m)
	}
	if y, err := strconv.Atoi(c.QueryParam("year")); err == nil {
		state.Year = y
	}
	if cat := c.QueryParam("category"); cat != "" {
		state.Category = cat
	}

	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}

	view, err := h.catalogService.Catalog(c.Request().Context(), state, page)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ListResponse{
			Success: false,
			Error:   "Failed to fetch events",
		})
	}

	data := view.Fetes
	if data == nil {
		data = []*fete.Fete{}
	}
	return c.JSON(http.StatusOK, CatalogResponse{
		Success: true,
		Data:    data,
		Total:   view.Total,
		Page:    view.Page,
		HasMore: view.HasMore,
	})
}

// Featured は今日以降のおすすめイベントを最大3件返す
func (h *FeteHandler) Featured(c echo.Context) error {
	fetes, err := h.catalogService.Featured(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ListResponse{
			Success: false,
			Error:   "Failed to fetch events",
		})
	}

	if fetes == nil {
		fetes = []*fete.Fete{}
	}
	return c.JSON(http.StatusOK, ListResponse{Success: true, Data: fetes})
}

// Years は選択可能な年の一覧を返す
func (h *FeteHandler) Years(c echo.Context) error {
	years, err := h.catalogService.Years(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ListResponse{
			Success: false,
			Error:   "Failed to fetch events",
		})
	}
	return c.JSON(http.StatusOK, YearsResponse{Success: true, Years: years})
}
