package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/helium876/Fetelendr/internal/domain/fete"
)

// Config はスプレッドシート接続設定
type Config struct {
	SpreadsheetID   string
	ReadRange       string // 読み取り元（例: "Sheet1!A2:L"）
	WriteRange      string // 書き込み先（例: "Sheet2!A:M"）
	APIKey          string // 読み取り用
	CredentialsJSON string // 書き込み用サービスアカウントJSONのパス
}

// Repository はGoogleスプレッドシートに対する行の読み書きを実装する
// 読み取りはAPIキー、書き込みはサービスアカウント認証を使う
// （公開読み取りと限定書き込みを分ける元システムの認証分割を踏襲）
type Repository struct {
	cfg      Config
	readSvc  *sheets.Service
	writeSvc *sheets.Service
}

var (
	_ fete.RowSource = (*Repository)(nil)
	_ fete.RowSink   = (*Repository)(nil)
)

// NewRepository は新しいRepositoryを作成する
// CredentialsJSONが未設定の場合、読み取り専用になりAppendRowは失敗する
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("スプレッドシートIDが設定されていません")
	}

	readSvc, err := sheets.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("読み取り用Sheetsクライアントの作成に失敗: %w", err)
	}

	repo := &Repository{cfg: cfg, readSvc: readSvc}

	if cfg.CredentialsJSON != "" {
		writeSvc, err := sheets.NewService(ctx,
			option.WithCredentialsFile(cfg.CredentialsJSON),
			option.WithScopes(sheets.SpreadsheetsScope),
		)
		if err != nil {
			return nil, fmt.Errorf("書き込み用Sheetsクライアントの作成に失敗: %w", err)
		}
		repo.writeSvc = writeSvc
	}

	return repo, nil
}

// ListRows は読み取り範囲の全イベント行を取得する
func (r *Repository) ListRows(ctx context.Context) ([]fete.RawRow, error) {
	resp, err := r.readSvc.Spreadsheets.Values.
		Get(r.cfg.SpreadsheetID, r.cfg.ReadRange).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fete.ErrSourceUnavailable, err)
	}

	rows := make([]fete.RawRow, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make(fete.RawRow, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AppendRow は書き込み範囲の末尾に1行を追加する
func (r *Repository) AppendRow(ctx context.Context, row []string) error {
	if r.writeSvc == nil {
		return fmt.Errorf("書き込み用の認証情報が設定されていません")
	}

	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}

	_, err := r.writeSvc.Spreadsheets.Values.
		Append(r.cfg.SpreadsheetID, r.cfg.WriteRange, &sheets.ValueRange{
			Values: [][]interface{}{cells},
		}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("行の追加に失敗: %w", err)
	}
	return nil
}
