package pdf

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

const docxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// wordShell は変換済みフラグメントを包む固定のHTMLシェルです。
// フォントと余白は印刷結果に直接効きます。
const wordShell = "<html><head><meta charset='utf-8'><style>body{font-family:Arial,Helvetica,sans-serif;margin:40px;}</style></head><body>%s</body></html>"

// WordMultipart はWord文書（.docx）をPDFに変換します。
// 変換はHTML化→ヘッドレスブラウザでのレンダリングの2段で、どちらで失敗しても
// 呼び出し側には一律 CONVERSION_FAILED として返します（再試行はしません）。
func (s *Service) WordMultipart(ctx context.Context, file *multipart.FileHeader) (_ *Result, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if file == nil {
		return nil, newError(CodeInvalidInput, "Word文書（.docx）を選択してください。", nil)
	}

	ws, err := s.createWorkspace()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = removeDir(ws.dir)
		}
	}()

	stored, err := s.storeMultipartFile(ctx, file, ws.inDir)
	if err != nil {
		return nil, err
	}

	mtype, err := mimetype.DetectFile(stored.path)
	if err != nil || !mtype.Is(docxMimeType) {
		return nil, newError(CodeConversionFailed, "文書の変換に失敗しました。", err)
	}

	src, err := os.Open(stored.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stored document: %w", err)
	}
	defer src.Close()

	fragment, err := s.converter.ConvertToHTML(src, stored.size)
	if err != nil {
		return nil, newError(CodeConversionFailed, "文書の変換に失敗しました。", err)
	}

	data, err := s.renderer.RenderHTML(ctx, fmt.Sprintf(wordShell, fragment))
	if err != nil {
		return nil, newError(CodeConversionFailed, "文書の変換に失敗しました。", err)
	}

	outputName := downloadName(OperationWord)
	outputPath := filepath.Join(ws.outDir, outputName)
	if writeErr := os.WriteFile(outputPath, data, 0o640); writeErr != nil {
		return nil, fmt.Errorf("failed to write word output: %w", writeErr)
	}

	return &Result{
		Operation:      OperationWord,
		OutputPath:     outputPath,
		OutputFilename: outputName,
		OutputSize:     int64(len(data)),
		workDir:        ws.dir,
	}, nil
}
