package fete

import "errors"

// Fete ドメインのエラー定義
var (
	ErrSourceUnavailable = errors.New("イベントソースの取得に失敗しました")
	ErrPosterNotFound    = errors.New("ポスター画像が見つかりません")
)
