package submission

import "errors"

// Submission ドメインのエラー定義
var (
	ErrRateLimited  = errors.New("投稿回数の上限を超えています")
	ErrUploadFailed = errors.New("ポスター画像のアップロードに失敗しました")
	ErrAppendFailed = errors.New("スプレッドシートへの書き込みに失敗しました")
)
