package fete

import "strings"

// TBA は値未定を表す番兵文字列
// 空文字やnullの代わりにデータモデル全体で使用される
const TBA = "TBA"

// ステータス値（大文字小文字を区別せず比較する）
const (
	StatusPublic    = "public"
	StatusFeatured  = "featured"
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// Fete はカタログのイベントエンティティを表す
// 1回のフェッチごとに生成され、生成後は変更されない
type Fete struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"` // yyyy-MM-dd または "TBA"
	Time        string   `json:"time"`
	Venue       string   `json:"venue"`
	Type        []string `json:"type"`
	Description string   `json:"description"`
	Poster      string   `json:"poster"`
	Link        string   `json:"link"`
	Price       string   `json:"price"`
	Status      string   `json:"status"`
	TicketPrice string   `json:"ticketPrice"`
	TicketLinks string   `json:"ticketLinks"`
}

// IsTBA は値が番兵かどうかを返す
func IsTBA(v string) bool {
	return v == TBA
}

// HasDate は日付が確定しているかどうかを返す
func (f *Fete) HasDate() bool {
	return !IsTBA(f.Date)
}

// IsVisible はカタログに表示可能なステータスかどうかを返す
func (f *Fete) IsVisible() bool {
	s := strings.ToLower(f.Status)
	return s == StatusPublic || s == StatusFeatured
}

// IsFeatured はおすすめ枠のステータスかどうかを返す
func (f *Fete) IsFeatured() bool {
	return strings.EqualFold(f.Status, StatusFeatured)
}

// HasType は指定カテゴリのタグを持つかどうかを返す（大文字小文字を区別しない）
func (f *Fete) HasType(category string) bool {
	for _, t := range f.Type {
		if strings.EqualFold(t, category) {
			return true
		}
	}
	return false
}
