// Package render はヘッドレスChromeによるHTML→PDFレンダリングを提供します。
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4の用紙寸法（インチ）。
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
)

// Options は Renderer の設定です。
type Options struct {
	ChromePath string        // Chrome/Chromium実行ファイルのパス（空なら自動検出）
	NoSandbox  bool          // root実行（コンテナ等）で必要
	Timeout    time.Duration // 1回の変換の上限時間。0以下なら無制限
}

// Renderer はブラウザプロセスを1つ保持し、変換ごとにタブを使い捨てます。
// 並行利用できます。不要になったら Close を呼んでください。
type Renderer struct {
	opts          Options
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// New は Renderer を作成し、ヘッドレスブラウザを起動します。
// 起動失敗はこの時点でエラーとして返します。
func New(opts Options) (*Renderer, error) {
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("no-first-run", true),
	)
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start headless browser: %w", err)
	}

	return &Renderer{
		opts:          opts,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close はブラウザプロセスを終了します。複数回呼んでも安全です。
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	r.browserCancel()
	r.allocCancel()
	return nil
}

// RenderHTML はHTML文字列をA4のPDFにレンダリングします。
// 外部レンダラーのハングでリクエストを塞がないよう、Timeout で打ち切ります。
func (r *Renderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, fmt.Errorf("renderer is closed")
	}
	r.mu.Unlock()

	f, err := os.CreateTemp("", "render-*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp html: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write temp html: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp html: %w", err)
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve temp html path: %w", err)
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	tabCtx, tabCancel := chromedp.NewContext(r.browserCtx)
	defer tabCancel()

	// 親ctxのタイムアウトをタブ操作に伝播させる
	go func() {
		select {
		case <-ctx.Done():
			tabCancel()
		case <-tabCtx.Done():
		}
	}()

	var buf []byte
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate("file://"+abs),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var printErr error
			buf, _, printErr = page.PrintToPDF().
				WithPaperWidth(paperWidthInches).
				WithPaperHeight(paperHeightInches).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithPrintBackground(true).
				Do(ctx)
			return printErr
		}),
	); err != nil {
		return nil, fmt.Errorf("html rendering failed: %w", err)
	}

	return buf, nil
}
