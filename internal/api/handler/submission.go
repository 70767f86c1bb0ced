package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/helium876/Fetelendr/internal/application"
	"github.com/helium876/Fetelendr/internal/domain/submission"
)

// SubmissionHandler はイベント投稿の書き込みハンドラー
type SubmissionHandler struct {
	submissionService SubmissionServiceInterface
}

// NewSubmissionHandler はSubmissionHandlerを作成する
func NewSubmissionHandler(submissionService SubmissionServiceInterface) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// SubmitResponse は投稿成功時のレスポンス
type SubmitResponse struct {
	Message string `json:"message"`
}

// SubmitErrorResponse は投稿失敗時のレスポンス
type SubmitErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Create はmultipartフォームの投稿を受け付ける
// フィールド: email, instagram?, title, date, time, venue, type(複数),
// ticketPrice, currency, ticketLink?, description?, poster?(ファイル),
// website(ハニーポット)
func (h *SubmissionHandler) Create(c echo.Context) error {
	params, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, SubmitErrorResponse{Error: "Invalid form data"})
	}

	sub := &submission.Submission{
		Email:       c.FormValue("email"),
		Instagram:   c.FormValue("instagram"),
		Title:       c.FormValue("title"),
		Date:        c.FormValue("date"),
		Time:        c.FormValue("time"),
		Venue:       c.FormValue("venue"),
		Types:       params["type"],
		TicketPrice: c.FormValue("ticketPrice"),
		Currency:    c.FormValue("currency"),
		TicketLink:  c.FormValue("ticketLink"),
		Description: c.FormValue("description"),
	}
	if sub.Currency == "" {
		sub.Currency = "JMD"
	}

	poster, closePoster, err := h.posterUpload(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, SubmitErrorResponse{Error: "Invalid form data"})
	}
	if closePoster != nil {
		defer closePoster()
	}

	input := application.SubmitInput{
		Submission: sub,
		Poster:     poster,
		SourceIP:   c.RealIP(),
		Honeypot:   c.FormValue("website"),
	}

	fieldErrors, err := h.submissionService.Submit(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, submission.ErrRateLimited):
			return c.JSON(http.StatusTooManyRequests, SubmitErrorResponse{
				Error: "Too many submissions. Please try again later.",
			})
		case errors.Is(err, submission.ErrUploadFailed):
			return c.JSON(http.StatusInternalServerError, SubmitErrorResponse{
				Error: "Failed to upload file",
			})
		default:
			return c.JSON(http.StatusInternalServerError, SubmitErrorResponse{
				Error: "Failed to process submission",
			})
		}
	}

	if len(fieldErrors) > 0 {
		return c.JSON(http.StatusBadRequest, SubmitErrorResponse{
			Error:  "Missing or invalid fields",
			Fields: fieldErrors,
		})
	}

	return c.JSON(http.StatusOK, SubmitResponse{Message: "Submission received successfully"})
}

// posterUpload は添付ファイルを取り出す。添付がない場合は (nil, nil, nil)
func (h *SubmissionHandler) posterUpload(c echo.Context) (*submission.PosterUpload, func(), error) {
	fh, err := c.FormFile("poster")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		// multipartでないフォームにはファイルは付かない
		return nil, nil, nil
	}

	file, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}

	return &submission.PosterUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     file,
	}, func() { file.Close() }, nil
}
