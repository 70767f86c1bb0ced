package cloudinary

import (
	"fmt"
	"path"
	"strings"
)

// RefKind はポスター参照セルの種別
type RefKind int

const (
	// RefResolvedURL は解決済みの公開画像URL
	RefResolvedURL RefKind = iota
	// RefShareLink は公開ID抽出が必要な配信・共有リンク
	RefShareLink
	// RefFilename はストレージ内を検索するベアファイル名
	RefFilename
)

// PosterRef は種別付きのポスター参照
// セルの値は3形態のいずれかで、それぞれ解決方法が異なる
type PosterRef struct {
	Kind  RefKind
	Value string
}

// ParsePosterRef は生のセル値を種別付き参照に分類する
// 先頭の "@" は除去してから判定する
func ParsePosterRef(raw string) PosterRef {
	v := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "@"))

	isURL := strings.Contains(v, "://")
	switch {
	case isURL && strings.Contains(v, "res.cloudinary.com") && strings.HasPrefix(v, "https://"):
		return PosterRef{Kind: RefResolvedURL, Value: v}
	case isURL && strings.Contains(v, "/image/upload/"):
		return PosterRef{Kind: RefShareLink, Value: v}
	case isURL:
		// ストレージ外の画像URLは解決済みとして扱う
		return PosterRef{Kind: RefResolvedURL, Value: v}
	default:
		return PosterRef{Kind: RefFilename, Value: v}
	}
}

// extractPublicID は配信・共有リンクのパスから公開IDを取り出す
// 例: https://res.cloudinary.com/demo/image/upload/v123/fetes/abc.jpg
// → fetes/abc
func extractPublicID(link string) (string, error) {
	idx := strings.Index(link, "/image/upload/")
	if idx < 0 {
		return "", fmt.Errorf("アップロードパスを含まないリンク: %s", link)
	}

	rest := strings.TrimPrefix(link[idx+len("/image/upload/"):], "/")
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", fmt.Errorf("公開IDが空のリンク: %s", link)
	}

	// 先頭のバージョンセグメント（v1234567890）を除く
	if len(parts) > 1 && looksLikeVersion(parts[0]) {
		parts = parts[1:]
	}

	publicID := strings.Join(parts, "/")
	publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	if publicID == "" {
		return "", fmt.Errorf("公開IDが空のリンク: %s", link)
	}
	return publicID, nil
}

func looksLikeVersion(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
