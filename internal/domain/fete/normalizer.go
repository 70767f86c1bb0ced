package fete

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// 読み取り側スプレッドシートの列位置
const (
	colVenue = iota
	colTitle
	colDate
	colType
	colTime
	colTicketPrice
	colTicketLinks
	colDescription
	colStatus
	colPoster
)

// 長文形式 "Sunday, January 5, 2025"（曜日は省略可）にマッチする
var longDatePattern = regexp.MustCompile(`(?:[A-Za-z]+,\s*)?([A-Za-z]+)\s+(\d{1,2}),?\s*(\d{4})`)

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// 一般的な日付形式のフォールバック
var genericDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006/01/02",
	time.RFC3339,
}

// Normalizer は生のスプレッドシート行をFeteに正規化する
// 1行の失敗がバッチ全体を中断することはなく、解析できない
// フィールドはすべて番兵 "TBA" に落ちる
type Normalizer struct {
	posters PosterResolver
}

// NewNormalizer は新しいNormalizerを作成する
// posters はnilでもよく、その場合ポスターは常に "TBA" になる
func NewNormalizer(posters PosterResolver) *Normalizer {
	return &Normalizer{posters: posters}
}

// Normalize は1行をFeteに変換する
// index は行の位置で、1回のフェッチ内でのみ安定したIDになる
func (n *Normalizer) Normalize(ctx context.Context, index int, row RawRow) *Fete {
	ticketPrice := NormalizeField(row.Cell(colTicketPrice))
	ticketLinks := NormalizeField(row.Cell(colTicketLinks))

	return &Fete{
		ID:          strconv.Itoa(index),
		Title:       NormalizeField(row.Cell(colTitle)),
		Date:        ParseDateString(NormalizeField(row.Cell(colDate))),
		Time:        NormalizeField(row.Cell(colTime)),
		Venue:       NormalizeField(row.Cell(colVenue)),
		Type:        splitTypes(row.Cell(colType)),
		Description: NormalizeField(row.Cell(colDescription)),
		Poster:      n.resolvePoster(ctx, NormalizeField(row.Cell(colPoster))),
		Link:        ticketLinks,
		Price:       ticketPrice,
		Status:      NormalizeField(row.Cell(colStatus)),
		TicketPrice: ticketPrice,
		TicketLinks: ticketLinks,
	}
}

// NormalizeField は欠損・空のセル値を "TBA" に、それ以外は
// 前後の空白を除いた文字列にする
func NormalizeField(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return TBA
	}
	return trimmed
}

// splitTypes はタイプ欄をカンマで分割する
// 空欄は単一要素の ["TBA"] になる
func splitTypes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{TBA}
	}
	parts := strings.Split(raw, ",")
	types := make([]string, 0, len(parts))
	for _, p := range parts {
		types = append(types, strings.TrimSpace(p))
	}
	return types
}

// ParseDateString は自由形式の日付文字列を yyyy-MM-dd に変換する
// 解析できない場合は "TBA" を返し、決してエラーにしない
func ParseDateString(dateStr string) string {
	if dateStr == "" || IsTBA(dateStr) {
		return TBA
	}

	// シート上の形式 "Sunday, January 5, 2025" を先に試す
	if m := longDatePattern.FindStringSubmatch(dateStr); m != nil {
		month, ok := monthsByName[strings.ToLower(m[1])]
		if ok {
			day, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			// time.Dateは不正な日を繰り上げるので往復で検証する
			if d.Day() == day && d.Month() == month {
				return d.Format("2006-01-02")
			}
		}
	}

	// 一般的な形式へのフォールバック
	for _, layout := range genericDateLayouts {
		if d, err := time.Parse(layout, dateStr); err == nil {
			return d.Format("2006-01-02")
		}
	}

	return TBA
}

func (n *Normalizer) resolvePoster(ctx context.Context, ref string) string {
	if IsTBA(ref) || n.posters == nil {
		return TBA
	}
	url, err := n.posters.Resolve(ctx, ref)
	if err != nil || url == "" {
		return TBA
	}
	return url
}
