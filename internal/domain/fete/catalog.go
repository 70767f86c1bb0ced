package fete

import (
	"sort"
	"strings"
	"time"
)

// CategoryAll は全カテゴリを意味するフィルタの番兵値
const CategoryAll = "all"

// EventsPerPage はカタログの1ページあたりの表示件数
const EventsPerPage = 12

// FeaturedLimit はおすすめ枠の最大表示件数
const FeaturedLimit = 3

// FilterState はカタログビューのフィルタ状態を表す
type FilterState struct {
	Month    time.Month
	Year     int
	Category string
	Search   string
}

// Visible はフィルタ状態に応じた表示対象の部分集合を
// 並び順付きで返す。入力リストは変更しない
//
// 検索語がある場合は月・年・カテゴリのフィルタを無視し、
// タイトルに全検索語が部分一致するイベントのみを残す
func Visible(fetes []*Fete, state FilterState, now time.Time) []*Fete {
	terms := searchTerms(state.Search)

	var result []*Fete
	for _, f := range fetes {
		// 日付未定の行は常に除外
		if !f.HasDate() {
			continue
		}
		if !f.IsVisible() {
			continue
		}

		// 検索はカレンダーフィルタより優先される
		if len(terms) > 0 {
			if matchesSearch(f, terms) {
				result = append(result, f)
			}
			continue
		}

		d, ok := eventDate(f, now.Location())
		if !ok {
			continue
		}
		if d.Month() != state.Month || d.Year() != state.Year {
			continue
		}
		if state.Category != "" && state.Category != CategoryAll && !f.HasType(state.Category) {
			continue
		}
		result = append(result, f)
	}

	SortByDate(result, now)
	return result
}

// SortByDate は日付昇順に並べ替える
// 過去のイベントは未来のイベントの後ろに回り、
// それぞれのグループ内では時系列順になる
func SortByDate(fetes []*Fete, now time.Time) {
	sort.SliceStable(fetes, func(i, j int) bool {
		di, _ := eventDate(fetes[i], now.Location())
		dj, _ := eventDate(fetes[j], now.Location())

		pastI := di.Before(now)
		pastJ := dj.Before(now)
		if pastI != pastJ {
			return !pastI // 未来が先
		}
		return di.Before(dj)
	})
}

// Featured は日付が今日以降のおすすめイベントを日付昇順で
// 最大 FeaturedLimit 件返す
func Featured(fetes []*Fete, now time.Time) []*Fete {
	today := atNoon(now)

	var result []*Fete
	for _, f := range fetes {
		if !f.HasDate() || !f.IsFeatured() {
			continue
		}
		d, ok := eventDate(f, now.Location())
		if !ok {
			continue
		}
		if d.Before(today) {
			continue
		}
		result = append(result, f)
	}

	sort.SliceStable(result, func(i, j int) bool {
		di, _ := eventDate(result[i], now.Location())
		dj, _ := eventDate(result[j], now.Location())
		return di.Before(dj)
	})

	if len(result) > FeaturedLimit {
		result = result[:FeaturedLimit]
	}
	return result
}

// AvailableYears は日付確定イベントから現在年以降の年を重複なく
// 昇順で集める。イベントがなくても現在年は必ず含まれる
func AvailableYears(fetes []*Fete, now time.Time) []int {
	currentYear := now.Year()
	seen := map[int]bool{currentYear: true}
	years := []int{currentYear}

	for _, f := range fetes {
		if !f.HasDate() {
			continue
		}
		d, ok := eventDate(f, now.Location())
		if !ok {
			continue
		}
		y := d.Year()
		if y < currentYear || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}

	sort.Ints(years)
	return years
}

// Paginate は固定サイズのページを切り出す
// page は1始まりで、返り値の hasMore は次ページの有無を示す
func Paginate(fetes []*Fete, page, perPage int) (visible []*Fete, hasMore bool) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = EventsPerPage
	}
	shown := page * perPage
	if shown >= len(fetes) {
		return fetes, false
	}
	return fetes[:shown], true
}

func searchTerms(query string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(query)))
}

func matchesSearch(f *Fete, terms []string) bool {
	title := strings.ToLower(f.Title)
	for _, term := range terms {
		if !strings.Contains(title, term) {
			return false
		}
	}
	return true
}

// eventDate は yyyy-MM-dd を正午の時刻として解釈する
// タイムゾーン境界での日付ずれを避けるため正午に固定する
func eventDate(f *Fete, loc *time.Location) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", f.Date)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc), true
}

func atNoon(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
}
