package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/helium876/Fetelendr/internal/api"
	"github.com/helium876/Fetelendr/internal/api/handler"
	apimiddleware "github.com/helium876/Fetelendr/internal/api/middleware"
	"github.com/helium876/Fetelendr/internal/application"
	"github.com/helium876/Fetelendr/internal/config"
	"github.com/helium876/Fetelendr/internal/domain/fete"
	"github.com/helium876/Fetelendr/internal/domain/submission"
	cldstorage "github.com/helium876/Fetelendr/internal/infrastructure/cloudinary"
	redisinfra "github.com/helium876/Fetelendr/internal/infrastructure/redis"
	"github.com/helium876/Fetelendr/internal/infrastructure/sheets"
	"github.com/helium876/Fetelendr/internal/pkg/logger"
	"github.com/helium876/Fetelendr/internal/pkg/metrics"
	"github.com/helium876/Fetelendr/internal/pkg/ratelimit"
	"github.com/helium876/Fetelendr/internal/worker"
)

func main() {
	// .env はローカル開発用。なくてもよい
	if err := godotenv.Load(); err != nil {
		logger.Debug(".envファイルが見つかりません", zap.Error(err))
	}

	cfg := config.Load()

	logger.Set(logger.NewLogger(os.Getenv("APP_ENV")))
	defer logger.Sync()

	m := metrics.Init()

	ctx := context.Background()

	// スプレッドシート（イベントの読み書き先）
	sheetRepo, err := sheets.NewRepository(ctx, sheets.Config{
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		ReadRange:       cfg.Sheets.ReadRange,
		WriteRange:      cfg.Sheets.WriteRange,
		APIKey:          cfg.Sheets.APIKey,
		CredentialsJSON: cfg.Sheets.CredentialsJSON,
	})
	if err != nil {
		logger.Fatal("スプレッドシート接続の初期化に失敗", zap.Error(err))
	}

	// Cloudinary（ポスター画像）。未設定ならポスターはTBA扱いになる
	var posterResolver fete.PosterResolver
	var posterStorage application.PosterStorage
	if cfg.Cloudinary.CloudName != "" {
		storage, err := cldstorage.NewStorage(cldstorage.Config{
			CloudName: cfg.Cloudinary.CloudName,
			APIKey:    cfg.Cloudinary.APIKey,
			APISecret: cfg.Cloudinary.APISecret,
			Folder:    cfg.Cloudinary.Folder,
		})
		if err != nil {
			logger.Fatal("Cloudinaryクライアントの初期化に失敗", zap.Error(err))
		}
		posterResolver = storage
		posterStorage = storage
	} else {
		logger.Warn("Cloudinary未設定のためポスター画像は無効")
	}

	// Redis（キャッシュとレート制限の共有ストア）。接続できなければ
	// キャッシュなし・インメモリのレート制限で動かす
	var feteCache application.FeteCache
	var limitStore ratelimit.Store = ratelimit.NewMemoryStore()
	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redis接続に失敗。キャッシュなしで起動します", zap.Error(err))
	} else {
		defer redisClient.Close()
		feteCache = redisinfra.NewFeteCache(redisClient)
		if cfg.RateLimit.UseRedis {
			limitStore = redisinfra.NewRateLimitStore(redisClient)
		}
	}

	// サービス層
	normalizer := fete.NewNormalizer(posterResolver)
	catalogService := application.NewCatalogService(sheetRepo, normalizer, feteCache, cfg.Cache.TTL, m, nil)

	limiter := ratelimit.NewLimiter(limitStore, cfg.RateLimit.MaxSubmissions, cfg.RateLimit.Window, nil)
	validator := submission.NewValidator(nil)
	submissionService := application.NewSubmissionService(sheetRepo, posterStorage, limiter, validator, m)

	// キャッシュがあるときだけ定期リフレッシュでTTL切れを防ぐ
	var refresher *worker.CacheRefresher
	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()
	if feteCache != nil {
		refresher = worker.NewCacheRefresher(catalogService, cfg.Cache.TTL)
		go refresher.Start(workerCtx)
	}

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	apimiddleware.SetupMiddleware(e)
	e.Use(apimiddleware.PrometheusMiddleware(m))

	// ハンドラー
	healthHandler := handler.NewHealthHandler()
	feteHandler := handler.NewFeteHandler(catalogService, nil)
	submissionHandler := handler.NewSubmissionHandler(submissionService)

	// ルーティング
	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)
	v1.GET("/fetes", feteHandler.List)
	v1.GET("/fetes/catalog", feteHandler.Catalog)
	v1.GET("/fetes/featured", feteHandler.Featured)
	v1.GET("/fetes/years", feteHandler.Years)
	v1.POST("/fetes", submissionHandler.Create)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), apimiddleware.MetricsBasicAuth())

	// サーバー起動
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("サーバーを起動します", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	if refresher != nil {
		workerCancel()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
