package fete

import "context"

// RawRow はスプレッドシートの1行（セル値の順序付きリスト）
// 読み取り側の列順: venue, title, date, type, time, ticketPrice,
// ticketLinks, description, status, poster, email, instagram
type RawRow []string

// Cell はインデックス位置のセル値を返す（範囲外は空文字）
func (r RawRow) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// RowSource はイベント行の読み取りインターフェース
type RowSource interface {
	// ListRows は全イベント行を取得する
	ListRows(ctx context.Context) ([]RawRow, error)
}

// RowSink は投稿行の書き込みインターフェース
type RowSink interface {
	// AppendRow は1行を末尾に追加する
	AppendRow(ctx context.Context, row []string) error
}

// PosterResolver はポスター参照を公開画像URLに解決する
type PosterResolver interface {
	// Resolve は参照（ファイル名・共有リンク・解決済みURL）を
	// 安定した公開URLに解決する。解決できない場合はエラーを返す
	Resolve(ctx context.Context, ref string) (string, error)
}
