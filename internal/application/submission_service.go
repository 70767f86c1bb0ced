package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/helium876/Fetelendr/internal/domain/fete"
	"github.com/helium876/Fetelendr/internal/domain/submission"
	"github.com/helium876/Fetelendr/internal/pkg/logger"
	"github.com/helium876/Fetelendr/internal/pkg/metrics"
	"github.com/helium876/Fetelendr/internal/pkg/ratelimit"
)

// PosterStorage はポスター画像のアップロード先インターフェース
type PosterStorage interface {
	Upload(ctx context.Context, poster *submission.PosterUpload, title string) (string, error)
}

// SubmissionService は投稿の検証と書き込みのパイプラインを実装する
// 処理順: ハニーポット → レート制限 → 検証 → アップロード → 行追加
type SubmissionService struct {
	sink      fete.RowSink
	storage   PosterStorage
	limiter   *ratelimit.Limiter
	validator *submission.Validator
	m         *metrics.Metrics
}

// NewSubmissionService は新しいSubmissionServiceを作成する
// storage はnil可（その場合ポスター付き投稿は受け付けない）
func NewSubmissionService(sink fete.RowSink, storage PosterStorage, limiter *ratelimit.Limiter, validator *submission.Validator, m *metrics.Metrics) *SubmissionService {
	return &SubmissionService{
		sink:      sink,
		storage:   storage,
		limiter:   limiter,
		validator: validator,
		m:         m,
	}
}

// SubmitInput は1件の投稿リクエスト
type SubmitInput struct {
	Submission *submission.Submission
	Poster     *submission.PosterUpload
	SourceIP   string
	Honeypot   string // 隠しフィールドの値。空でなければボット
}

// Submit は投稿を処理する
// フィールドエラーがある場合はそのマップを返し、何も書き込まない
// ハニーポットに値がある場合も成功として扱い、何も書き込まない
func (s *SubmissionService) Submit(ctx context.Context, input SubmitInput) (map[string]string, error) {
	// ボットには成功を偽装し、記録は残さない
	if input.Honeypot != "" {
		logger.Info("ハニーポット検出により投稿を破棄",
			zap.String("source_ip", input.SourceIP))
		s.countSubmission("honeypot")
		return nil, nil
	}

	if err := s.limiter.Allow(ctx, input.SourceIP); err != nil {
		if errors.Is(err, ratelimit.ErrLimitExceeded) {
			s.countSubmission("rate_limited")
			return nil, submission.ErrRateLimited
		}
		// ストア障害時はベストエフォートとして通す
		logger.Warn("レート制限ストアの障害を無視", zap.Error(err))
	}

	if fieldErrors := s.validator.Validate(input.Submission, input.Poster); len(fieldErrors) > 0 {
		s.countSubmission("validation_failed")
		return fieldErrors, nil
	}

	posterURL := ""
	if input.Poster != nil {
		if s.storage == nil {
			s.countSubmission("upload_error")
			return nil, submission.ErrUploadFailed
		}
		url, err := s.storage.Upload(ctx, input.Poster, input.Submission.Title)
		if err != nil {
			// 画像のない行を残さないよう、ここで投稿全体を中断する
			s.countSubmission("upload_error")
			return nil, fmt.Errorf("%w: %v", submission.ErrUploadFailed, err)
		}
		posterURL = url
	}

	// アップロード成功後の追加失敗では孤児ファイルが残りうる（許容済み）
	if err := s.sink.AppendRow(ctx, input.Submission.Row(posterURL, input.SourceIP)); err != nil {
		s.countSubmission("append_error")
		return nil, fmt.Errorf("%w: %v", submission.ErrAppendFailed, err)
	}

	logger.Info("投稿を受け付けました",
		zap.String("title", input.Submission.Title),
		zap.String("source_ip", input.SourceIP))
	s.countSubmission("accepted")
	return nil, nil
}

func (s *SubmissionService) countSubmission(result string) {
	if s.m != nil {
		s.m.SubmissionsTotal.WithLabelValues(result).Inc()
	}
}
