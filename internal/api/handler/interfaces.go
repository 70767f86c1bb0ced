package handler

import (
	"context"

	"github.com/helium876/Fetelendr/internal/application"
	"github.com/helium876/Fetelendr/internal/domain/fete"
)

// CatalogServiceInterface はカタログサービスのインターフェース
type CatalogServiceInterface interface {
	ListFetes(ctx context.Context) ([]*fete.Fete, error)
	Catalog(ctx context.Context, state fete.FilterState, page int) (*application.CatalogView, error)
	Featured(ctx context.Context) ([]*fete.Fete, error)
	Years(ctx context.Context) ([]int, error)
}

// SubmissionServiceInterface は投稿サービスのインターフェース
type SubmissionServiceInterface interface {
	Submit(ctx context.Context, input application.SubmitInput) (map[string]string, error)
}
