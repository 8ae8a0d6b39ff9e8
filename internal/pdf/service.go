package pdf

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/pdf-atelier/internal/config"
)

// HTMLRenderer はHTML文字列をPDFバイト列にレンダリングします。
// 実装は internal/render が提供します。
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// DocumentConverter はWord文書をHTMLフラグメントに変換します。
// 実装は internal/docx が提供します。
type DocumentConverter interface {
	ConvertToHTML(r io.ReaderAt, size int64) (string, error)
}

// Service はPDF処理のコアサービスです。
// 処理はすべてリクエスト単位のワークスペースディレクトリで行い、
// レスポンス送出後に Result.Cleanup で削除します。
type Service struct {
	cfg       *config.Config
	baseDir   string
	converter DocumentConverter
	renderer  HTMLRenderer
	now       func() time.Time
}

// NewService はPDFサービスを作成します。
func NewService(cfg *config.Config, converter DocumentConverter, renderer HTMLRenderer) *Service {
	return &Service{
		cfg:       cfg,
		baseDir:   filepath.Join(cfg.WorkDir, "pdf-atelier"),
		converter: converter,
		renderer:  renderer,
		now:       time.Now,
	}
}

// OperationType はPDF処理の種別を表します。
type OperationType string

const (
	OperationMerge  OperationType = "merge"
	OperationSplit  OperationType = "split"
	OperationImages OperationType = "images"
	OperationWord   OperationType = "word"
)

// Result はPDF処理の成果を表します。
type Result struct {
	Operation      OperationType
	OutputPath     string
	OutputFilename string
	OutputSize     int64

	workDir     string
	cleanupOnce sync.Once
	cleanupErr  error
}

// Cleanup は作業ディレクトリを削除します。複数回呼んでも安全です。
func (r *Result) Cleanup() error {
	if r == nil {
		return nil
	}
	r.cleanupOnce.Do(func() {
		r.cleanupErr = removeDir(r.workDir)
	})
	return r.cleanupErr
}

type workspace struct {
	dir    string
	inDir  string
	outDir string
}

func (s *Service) createWorkspace() (workspace, error) {
	// 作成時刻を名前に含め、障害調査時に残骸の発生時期を特定できるようにする
	name := s.now().UTC().Format("20060102T150405") + "-" + uuid.NewString()
	dir := filepath.Join(s.baseDir, name)
	inDir := filepath.Join(dir, "in")
	outDir := filepath.Join(dir, "out")
	for _, d := range []string{inDir, outDir} {
		if err := os.MkdirAll(d, 0o750); err != nil {
			return workspace{}, fmt.Errorf("failed to create workspace: %w", err)
		}
	}
	return workspace{dir: dir, inDir: inDir, outDir: outDir}, nil
}

type storedFile struct {
	path         string
	originalName string
	size         int64
}

// storeMultipartFile はアップロードファイルをワークスペースに保存します。
// サイズ上限の検査は外部ライブラリを呼ぶ前のここで行います。
func (s *Service) storeMultipartFile(ctx context.Context, file *multipart.FileHeader, destDir string) (storedFile, error) {
	if err := ctx.Err(); err != nil {
		return storedFile{}, err
	}
	if file.Size > s.cfg.MaxUploadSize {
		return storedFile{}, newError(CodeLimitExceeded,
			fmt.Sprintf("ファイルサイズが上限（%dMB）を超えています。", s.cfg.MaxUploadSize/(1024*1024)), nil)
	}

	src, err := file.Open()
	if err != nil {
		return storedFile{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	destPath := filepath.Join(destDir, uuid.NewString()+filepath.Ext(file.Filename))
	dest, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return storedFile{}, fmt.Errorf("failed to create stored file: %w", err)
	}
	defer dest.Close()

	written, err := io.Copy(dest, src)
	if err != nil {
		return storedFile{}, fmt.Errorf("failed to store upload: %w", err)
	}

	return storedFile{
		path:         destPath,
		originalName: file.Filename,
		size:         written,
	}, nil
}

// downloadName は成果物のダウンロードファイル名を生成します。
// 形式は <操作>-<8桁ID>.pdf です。
func downloadName(op OperationType) string {
	prefix := map[OperationType]string{
		OperationMerge:  "merged",
		OperationSplit:  "split",
		OperationImages: "images",
		OperationWord:   "word",
	}[op]
	return fmt.Sprintf("%s-%s.pdf", prefix, uuid.NewString()[:8])
}

func removeDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.RemoveAll(dir)
}
