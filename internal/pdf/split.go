package pdf

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// SplitMultipart はページ範囲式で指定されたページだけを抜き出した新しいPDFを生成します。
func (s *Service) SplitMultipart(ctx context.Context, file *multipart.FileHeader, rangesExpr string) (_ *Result, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if file == nil {
		return nil, newError(CodeInvalidInput, "PDFファイルを選択してください。", nil)
	}
	if strings.TrimSpace(rangesExpr) == "" {
		return nil, newError(CodeInvalidInput, "抽出するページ範囲を指定してください。", nil)
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

	totalPages, err := pdfapi.PageCountFile(stored.path)
	if err != nil {
		return nil, newError(CodeInvalidPDF, "有効なPDFファイルではありません。", err)
	}

	pages, err := parsePageSelection(rangesExpr, totalPages)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		// 全トークンが範囲外などで選択が空になった場合。空のPDFは生成しない。
		return nil, newError(CodeInvalidRange, "指定された範囲に有効なページがありません。", nil)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	selection := make([]string, len(pages))
	for i, p := range pages {
		selection[i] = strconv.Itoa(p)
	}

	outputName := downloadName(OperationSplit)
	outputPath := filepath.Join(ws.outDir, outputName)
	// Collect は指定順でページを並べるため、式の初出順がそのまま出力順になる
	if collectErr := pdfapi.CollectFile(stored.path, outputPath, selection, nil); collectErr != nil {
		return nil, newError(CodeConversionFailed, "PDFの分割に失敗しました。", collectErr)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat split output: %w", err)
	}

	return &Result{
		Operation:      OperationSplit,
		OutputPath:     outputPath,
		OutputFilename: outputName,
		OutputSize:     info.Size(),
		workDir:        ws.dir,
	}, nil
}

// parsePageSelection はページ範囲式を解釈し、1始まりのページ番号列を返します。
//
// 文法: カンマ区切りのトークン列。各トークンは前後の空白を除去し、空トークンは無視。
//   - "-" を含むトークンは範囲 A-B。両端が正整数で B>=A でなければ式全体をエラーに
//     します（他に正しいトークンがあっても失敗）。昇順に展開し、文書のページ数を
//     超えるページ番号は黙って捨てます。
//   - それ以外は単独ページ番号。整数として読めない・範囲外のものは黙って捨てます
//     （範囲トークンと異なりエラーにしません）。
//
// 結果は式中の初出順を保ち、重複を除いたものです。後から同じページが再度現れても
// 位置は移動しません。
func parsePageSelection(expr string, totalPages int) ([]int, error) {
	pages := make([]int, 0, totalPages)
	seen := make(map[int]struct{})

	appendPage := func(p int) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		pages = append(pages, p)
	}

	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if strings.Contains(token, "-") {
			parts := strings.Split(token, "-")
			start, startErr := strconv.Atoi(strings.TrimSpace(parts[0]))
			end, endErr := strconv.Atoi(strings.TrimSpace(parts[1]))
			if startErr != nil || endErr != nil || start < 1 || end < start {
				return nil, newError(CodeInvalidRange, "ページ範囲の形式が正しくありません。", nil)
			}
			for p := start; p <= end; p++ {
				if p <= totalPages {
					appendPage(p)
				}
			}
			continue
		}

		page, pageErr := strconv.Atoi(token)
		if pageErr != nil || page < 1 || page > totalPages {
			// 単独トークンは寛容に扱い、不正なものは黙って捨てる
			continue
		}
		appendPage(page)
	}

	return pages, nil
}
