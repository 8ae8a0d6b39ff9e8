// Package pdf はPDFドキュメント操作（結合・分割・画像変換・Word変換）を提供します。
package pdf

// エラーコード。renderOpError がHTTPステータスへの対応付けを行います。
const (
	CodeInvalidInput     = "INVALID_INPUT"     // 入力欠如・不正（400）
	CodeNoFiles          = "NO_FILES"          // ファイル未指定（400）
	CodeInvalidPDF       = "INVALID_PDF"       // PDFとして解釈できない（400）
	CodeInvalidRange     = "INVALID_RANGE"     // ページ範囲式の書式不正（400）
	CodeLimitExceeded    = "LIMIT_EXCEEDED"    // サイズ・件数上限超過（413）
	CodeConversionFailed = "CONVERSION_FAILED" // 変換・レンダリング失敗（500）
)

// Error はAPIに表出するPDF処理エラーです。
type Error struct {
	Code    string
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Code + ": " + e.Message + ": " + e.err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, err: err}
}
