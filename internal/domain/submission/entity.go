package submission

import (
	"io"
	"strings"
	"time"
)

// 投稿直後の固定ステータス
const StatusPendingReview = "Pending Review"

// Submission は主催者からのイベント投稿を表す
type Submission struct {
	Email       string   `validate:"required,email"`
	Instagram   string   `validate:"omitempty,ighandle"`
	Title       string   `validate:"required,min=3,max=100"`
	Date        string   `validate:"required"` // yyyy-MM-dd（期間チェックは別途）
	Time        string   `validate:"required,eventtime"`
	Venue       string   `validate:"required,min=3,max=200"`
	Types       []string `validate:"required,min=1"`
	TicketPrice string   `validate:"required,ticketprice"`
	Currency    string
	TicketLink  string `validate:"omitempty,httpsurl"`
	Description string `validate:"omitempty,max=1000"`
}

// PosterUpload は投稿に添付されたポスター画像
type PosterUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// FormattedPrice は通貨記号付きの価格表記を返す
// 既に $ で始まる場合はそのまま、USDなら $、それ以外は J$ を前置する
func (s *Submission) FormattedPrice() string {
	if strings.HasPrefix(s.TicketPrice, "$") {
		return s.TicketPrice
	}
	if s.Currency == "USD" {
		return "$" + s.TicketPrice
	}
	return "J$" + s.TicketPrice
}

// SheetDate は日付を書き込み先の MM/DD/YYYY 形式に変換する
func (s *Submission) SheetDate() string {
	d, err := time.Parse("2006-01-02", s.Date)
	if err != nil {
		return s.Date
	}
	return d.Format("01/02/2006")
}

// Row は書き込み先スプレッドシートの固定列順の1行を組み立てる
// 列順: venue, title, date, type, time, price, ticketLink,
// description, status, poster, email, instagram, ip
func (s *Submission) Row(posterURL, sourceIP string) []string {
	orDefault := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}

	return []string{
		s.Venue,
		s.Title,
		s.SheetDate(),
		strings.Join(s.Types, ", "),
		s.Time,
		s.FormattedPrice(),
		orDefault(s.TicketLink, "TBA"),
		orDefault(s.Description, "TBA"),
		StatusPendingReview,
		orDefault(posterURL, "TBA"),
		s.Email,
		orDefault(s.Instagram, "N/A"),
		sourceIP,
	}
}
