package pdf

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/pdf-atelier/internal/auth"
	"github.com/yourusername/pdf-atelier/internal/metrics"
)

// MergeService はPDF結合を提供します。
type MergeService interface {
	MergeMultipart(ctx context.Context, files []*multipart.FileHeader) (*Result, error)
}

// SplitService はPDF分割を提供します。
type SplitService interface {
	SplitMultipart(ctx context.Context, file *multipart.FileHeader, rangesExpr string) (*Result, error)
}

// ImagesService は画像→PDF変換を提供します。
type ImagesService interface {
	ImagesMultipart(ctx context.Context, files []*multipart.FileHeader) (*Result, error)
}

// WordService はWord→PDF変換を提供します。
type WordService interface {
	WordMultipart(ctx context.Context, file *multipart.FileHeader) (*Result, error)
}

// opView は各操作のフォーム画面の情報です。エラー時は同じフォームを再描画します。
type opView struct {
	template string
	title    string
}

var opViews = map[OperationType]opView{
	OperationMerge:  {template: "pdf/merge", title: "PDF結合"},
	OperationSplit:  {template: "pdf/split", title: "PDF分割"},
	OperationImages: {template: "pdf/images-to-pdf", title: "画像→PDF"},
	OperationWord:   {template: "pdf/word-to-pdf", title: "Word→PDF"},
}

// ShowFormHandler は各操作の GET ハンドラー（フォーム表示）を返します。
func ShowFormHandler(op OperationType) gin.HandlerFunc {
	view := opViews[op]
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, view.template, gin.H{
			"Title": view.title,
			"User":  auth.CurrentUser(c),
		})
	}
}

// MergeHandler は POST /pdf/merge のハンドラーを返します。
func MergeHandler(svc MergeService, collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		form, err := c.MultipartForm()
		if err != nil {
			renderOpError(c, OperationMerge, collector,
				newError(CodeInvalidInput, "multipart/form-data でPDFファイルを送信してください。", err))
			return
		}
		defer form.RemoveAll()

		result, err := svc.MergeMultipart(c.Request.Context(), form.File["pdfs"])
		if err != nil {
			renderOpError(c, OperationMerge, collector, err)
			return
		}
		defer result.Cleanup()

		if streamResult(c, result, collector) {
			collector.RecordSuccess(string(OperationMerge), time.Since(started))
		}
	}
}

// SplitHandler は POST /pdf/split のハンドラーを返します。
func SplitHandler(svc SplitService, collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		form, err := c.MultipartForm()
		if err != nil {
			renderOpError(c, OperationSplit, collector,
				newError(CodeInvalidInput, "multipart/form-data でPDFファイルを送信してください。", err))
			return
		}
		defer form.RemoveAll()

		var file *multipart.FileHeader
		if uploads := form.File["pdf"]; len(uploads) > 0 {
			file = uploads[0]
		}
		rangesExpr := strings.TrimSpace(c.PostForm("ranges"))

		result, err := svc.SplitMultipart(c.Request.Context(), file, rangesExpr)
		if err != nil {
			renderOpError(c, OperationSplit, collector, err)
			return
		}
		defer result.Cleanup()

		if streamResult(c, result, collector) {
			collector.RecordSuccess(string(OperationSplit), time.Since(started))
		}
	}
}

// ImagesHandler は POST /pdf/images-to-pdf のハンドラーを返します。
func ImagesHandler(svc ImagesService, collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		form, err := c.MultipartForm()
		if err != nil {
			renderOpError(c, OperationImages, collector,
				newError(CodeInvalidInput, "multipart/form-data で画像ファイルを送信してください。", err))
			return
		}
		defer form.RemoveAll()

		result, err := svc.ImagesMultipart(c.Request.Context(), form.File["images"])
		if err != nil {
			renderOpError(c, OperationImages, collector, err)
			return
		}
		defer result.Cleanup()

		if streamResult(c, result, collector) {
			collector.RecordSuccess(string(OperationImages), time.Since(started))
		}
	}
}

// WordHandler は POST /pdf/word-to-pdf のハンドラーを返します。
func WordHandler(svc WordService, collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		form, err := c.MultipartForm()
		if err != nil {
			renderOpError(c, OperationWord, collector,
				newError(CodeInvalidInput, "multipart/form-data でWord文書を送信してください。", err))
			return
		}
		defer form.RemoveAll()

		var file *multipart.FileHeader
		if uploads := form.File["doc"]; len(uploads) > 0 {
			file = uploads[0]
		}

		result, err := svc.WordMultipart(c.Request.Context(), file)
		if err != nil {
			renderOpError(c, OperationWord, collector, err)
			return
		}
		defer result.Cleanup()

		if streamResult(c, result, collector) {
			collector.RecordSuccess(string(OperationWord), time.Since(started))
		}
	}
}

// renderOpError はエラーを元のフォーム画面への再描画に変換します。
// 内部詳細はレスポンスに載せず、コードに応じたメッセージのみ表示します。
func renderOpError(c *gin.Context, op OperationType, collector *metrics.Collector, err error) {
	view := opViews[op]

	status := http.StatusInternalServerError
	message := "サーバー内部でエラーが発生しました。"
	code := "INTERNAL_ERROR"

	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
		message = apiErr.Message
		switch apiErr.Code {
		case CodeLimitExceeded:
			status = http.StatusRequestEntityTooLarge
		case CodeConversionFailed:
			status = http.StatusInternalServerError
		default:
			status = http.StatusBadRequest
		}
	case errors.Is(err, context.Canceled):
		code = "REQUEST_CANCELED"
		status = http.StatusRequestTimeout
		message = "リクエストがキャンセルされました。"
	}

	collector.RecordFailure(string(op), code)
	c.HTML(status, view.template, gin.H{
		"Title": view.title,
		"User":  auth.CurrentUser(c),
		"Error": message,
	})
}

// streamResult は成果物PDFを添付ファイルとして送出し、送出できたかを返します。
// 開けなかった成果物は成功として数えず、エラーとして記録します。
func streamResult(c *gin.Context, result *Result, collector *metrics.Collector) bool {
	file, err := os.Open(result.OutputPath)
	if err != nil {
		renderOpError(c, result.Operation, collector, fmt.Errorf("failed to open result: %w", err))
		return false
	}
	defer file.Close()

	encodedName := url.PathEscape(result.OutputFilename)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", result.OutputFilename, encodedName))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.OutputSize, "application/pdf", file, nil)
	return true
}
