package pdf

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// importDescription は1画像=1ページのレイアウト指定です。
// A4ページ中央に、ページの85%（約500x700pt）に収まるよう縮尺して配置します。
const importDescription = "formsize:A4, position:c, scalefactor:0.85 rel"

// supportedImageTypes は取り込み対象として認める画像形式です。
// ここに該当しないファイルはエラーにせず黙って読み飛ばします。
var supportedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/tiff"}

// ImagesMultipart はアップロードされた画像群を1つのPDFに合成します。
// デコードできない画像は黙ってスキップし、残りだけで成功させます。
// ページ順は入力順と一致します。
func (s *Service) ImagesMultipart(ctx context.Context, files []*multipart.FileHeader) (_ *Result, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(files) == 0 {
		return nil, newError(CodeNoFiles, "画像ファイルを1件以上アップロードしてください。", nil)
	}
	if len(files) > s.cfg.MaxImageFiles {
		return nil, newError(CodeLimitExceeded,
			fmt.Sprintf("一度に変換できる画像は最大%d件です。", s.cfg.MaxImageFiles), nil)
	}

	imp, err := pdfapi.Import(importDescription, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build import description: %w", err)
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

	outputName := downloadName(OperationImages)
	outputPath := filepath.Join(ws.outDir, outputName)

	imported := 0
	for _, file := range files {
		stored, storeErr := s.storeMultipartFile(ctx, file, ws.inDir)
		if storeErr != nil {
			return nil, storeErr
		}
		if !isSupportedImage(stored.path) {
			continue
		}
		// 1件ずつ取り込み、失敗した画像だけを捨てて続行する
		if importErr := pdfapi.ImportImagesFile([]string{stored.path}, outputPath, imp, nil); importErr != nil {
			continue
		}
		imported++
	}

	if imported == 0 {
		return nil, newError(CodeInvalidInput, "アップロードされた画像をいずれも読み込めませんでした。", nil)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat images output: %w", err)
	}

	return &Result{
		Operation:      OperationImages,
		OutputPath:     outputPath,
		OutputFilename: outputName,
		OutputSize:     info.Size(),
		workDir:        ws.dir,
	}, nil
}

// isSupportedImage はファイル内容から画像形式を判定します。拡張子は信用しません。
func isSupportedImage(path string) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for _, want := range supportedImageTypes {
		if mtype.Is(want) {
			return true
		}
	}
	return false
}
