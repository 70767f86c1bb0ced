package submission

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ポスター画像の制約
const MaxPosterSize = 5 * 1024 * 1024 // 5MB

var allowedPosterTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var (
	handlePattern = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)
	timePattern   = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)
	pricePattern  = regexp.MustCompile(`^(J\$|\$)?\d+(-(J\$|\$)?\d+)?$`)
)

// Validator は投稿のフィールド単位バリデーションを行う
// now は日付の期間チェックに使う現在時刻の供給源
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewValidator は新しいValidatorを作成する
// now がnilの場合は time.Now を使う
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}

	v := validator.New()

	// Instagramハンドル: 英数字・ドット・アンダースコアのみ
	v.RegisterValidation("ighandle", func(fl validator.FieldLevel) bool {
		return handlePattern.MatchString(fl.Field().String())
	})

	// 24時間表記 HH:MM
	v.RegisterValidation("eventtime", func(fl validator.FieldLevel) bool {
		return timePattern.MatchString(fl.Field().String())
	})

	// 単一価格または "-" 区切りの範囲。カンマは除去して判定する
	v.RegisterValidation("ticketprice", func(fl validator.FieldLevel) bool {
		return pricePattern.MatchString(strings.ReplaceAll(fl.Field().String(), ",", ""))
	})

	// HTTPSスキームのURLのみ許可
	v.RegisterValidation("httpsurl", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		return err == nil && u.Scheme == "https" && u.Host != ""
	})

	return &Validator{validate: v, now: now}
}

// Validate は全ルールを検査し、違反をフィールド名→メッセージの
// マップで返す。空マップはバリデーション成功を意味する
func (v *Validator) Validate(s *Submission, poster *PosterUpload) map[string]string {
	fieldErrors := map[string]string{}

	if err := v.validate.Struct(s); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				field := formFieldName(fe.Field())
				if _, dup := fieldErrors[field]; !dup {
					fieldErrors[field] = messageFor(fe, s.Currency)
				}
			}
		}
	}

	// 日付の期間チェックは現在時刻に依存するためタグでは表せない
	if _, dup := fieldErrors["date"]; !dup && s.Date != "" {
		if msg := v.validateDateWindow(s.Date); msg != "" {
			fieldErrors["date"] = msg
		}
	}

	if poster != nil {
		if msg := validatePoster(poster); msg != "" {
			fieldErrors["poster"] = msg
		}
	}

	return fieldErrors
}

// validateDateWindow は日付が今日以降かつ2年以内であることを検査する
func (v *Validator) validateDateWindow(dateStr string) string {
	d, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return "Please enter a valid date"
	}

	now := v.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	date := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())

	if date.Before(today) {
		return "Date cannot be in the past"
	}
	if date.After(today.AddDate(2, 0, 0)) {
		return "Date cannot be more than 2 years in the future"
	}
	return ""
}

// validatePoster は添付画像の種類とサイズを外部呼び出しの前に検査する
func validatePoster(p *PosterUpload) string {
	if !allowedPosterTypes[strings.ToLower(p.ContentType)] {
		return "Please upload a JPEG, PNG, or WebP image"
	}
	if p.Size > MaxPosterSize {
		return "Image must be less than 5MB"
	}
	return ""
}

// formFieldName は構造体フィールド名をフォームのフィールド名に対応させる
func formFieldName(structField string) string {
	switch structField {
	case "Email":
		return "email"
	case "Instagram":
		return "instagram"
	case "Title":
		return "title"
	case "Date":
		return "date"
	case "Time":
		return "time"
	case "Venue":
		return "venue"
	case "Types":
		return "type"
	case "TicketPrice":
		return "ticketPrice"
	case "TicketLink":
		return "ticketLink"
	case "Description":
		return "description"
	default:
		return strings.ToLower(structField)
	}
}

// messageFor は違反タグをユーザー向けメッセージに変換する
func messageFor(fe validator.FieldError, currency string) string {
	switch fe.StructField() {
	case "Email":
		if fe.Tag() == "required" {
			return "Email is required"
		}
		return "Please enter a valid email address"
	case "Instagram":
		return "Instagram handle can only contain letters, numbers, dots, and underscores"
	case "Title":
		switch fe.Tag() {
		case "required":
			return "Event title is required"
		case "min":
			return "Event title must be at least 3 characters long"
		default:
			return "Event title must be less than 100 characters"
		}
	case "Date":
		return "Date is required"
	case "Time":
		if fe.Tag() == "required" {
			return "Time is required"
		}
		return "Please enter a valid time"
	case "Venue":
		switch fe.Tag() {
		case "required":
			return "Venue is required"
		case "min":
			return "Venue must be at least 3 characters long"
		default:
			return "Venue must be less than 200 characters"
		}
	case "Types":
		return "Please select at least one event type"
	case "TicketPrice":
		if fe.Tag() == "required" {
			return "Ticket price is required"
		}
		if currency == "USD" {
			return "Please enter a valid price format (e.g., $5000 or $3000-$5000)"
		}
		return "Please enter a valid price format (e.g., J$5000 or J$3000-J$5000)"
	case "TicketLink":
		return "Ticket link must be a secure HTTPS URL"
	case "Description":
		return "Description must be less than 1000 characters"
	default:
		return fmt.Sprintf("Invalid value for %s", formFieldName(fe.StructField()))
	}
}
