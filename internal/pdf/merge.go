package pdf

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// MergeMultipart は複数PDFを入力順に1つへ結合します。
// 入力は1件以上必須で、1件でもPDFとして読めないファイルがあれば
// リクエスト全体を失敗させます（部分結合やスキップはしません）。
func (s *Service) MergeMultipart(ctx context.Context, files []*multipart.FileHeader) (_ *Result, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(files) == 0 {
		return nil, newError(CodeNoFiles, "PDFファイルを1件以上アップロードしてください。", nil)
	}
	if len(files) > s.cfg.MaxMergeFiles {
		return nil, newError(CodeLimitExceeded,
			fmt.Sprintf("結合できるファイルは最大%d件です。", s.cfg.MaxMergeFiles), nil)
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

	inPaths := make([]string, 0, len(files))
	for _, file := range files {
		stored, storeErr := s.storeMultipartFile(ctx, file, ws.inDir)
		if storeErr != nil {
			return nil, storeErr
		}
		// 入力順に検証し、最初に読めなかった時点で全体を失敗させる
		if _, countErr := pdfapi.PageCountFile(stored.path); countErr != nil {
			return nil, newError(CodeInvalidPDF, "アップロードされたファイルの中に有効なPDFでないものがあります。", countErr)
		}
		inPaths = append(inPaths, stored.path)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outputName := downloadName(OperationMerge)
	outputPath := filepath.Join(ws.outDir, outputName)
	if mergeErr := pdfapi.MergeCreateFile(inPaths, outputPath, false, nil); mergeErr != nil {
		return nil, newError(CodeConversionFailed, "PDFの結合に失敗しました。", mergeErr)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat merge output: %w", err)
	}

	return &Result{
		Operation:      OperationMerge,
		OutputPath:     outputPath,
		OutputFilename: outputName,
		OutputSize:     info.Size(),
		workDir:        ws.dir,
	}, nil
}
