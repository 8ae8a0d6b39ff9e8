// Package main はWebサーバーのエントリーポイントです。
package main

import (
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yourusername/pdf-atelier/internal/auth"
	"github.com/yourusername/pdf-atelier/internal/config"
	"github.com/yourusername/pdf-atelier/internal/docx"
	"github.com/yourusername/pdf-atelier/internal/metrics"
	"github.com/yourusername/pdf-atelier/internal/pdf"
	"github.com/yourusername/pdf-atelier/internal/render"
	"github.com/yourusername/pdf-atelier/web"
)

func main() {
	// 設定の読み込み（署名鍵が無い・プレースホルダーのままの場合はここで起動失敗）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxUploadSize

	// テンプレートは埋め込みFSから読み込む
	tmpl := template.Must(template.ParseFS(web.Templates, "templates/*.html"))
	router.SetHTMLTemplate(tmpl)

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// メトリクス
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// ヘッドレスブラウザはプロセスで1つ起動して使い回す
	renderer, err := render.New(render.Options{
		ChromePath: cfg.ChromePath,
		NoSandbox:  cfg.ChromeNoSandbox,
		Timeout:    cfg.RenderTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to start renderer: %v", err)
	}
	defer renderer.Close()

	tokens := auth.NewTokenManager(cfg.TokenSecret)
	store := auth.NewMemoryStore()
	authHandlers := auth.NewHandlers(store, tokens, cfg.GinMode == gin.ReleaseMode)
	pdfService := pdf.NewService(cfg, docx.NewConverter(), renderer)

	setupRoutes(router, cfg, tokens, authHandlers, pdfService, collector, registry)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting web server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "pdf-atelier",
		"version": "0.1.0",
	})
}

// setupRoutes は認証まわりとドキュメント操作の配線を行います。
func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	tokens *auth.TokenManager,
	authHandlers *auth.Handlers,
	pdfService *pdf.Service,
	collector *metrics.Collector,
	registry *prometheus.Registry,
) {
	router.GET("/health", handleHealth)
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})

	// 公開ページ。ログイン済みならUIに反映するためユーザーだけ載せる
	public := router.Group("", tokens.AttachUserIfAny())
	{
		public.GET("/signup", authHandlers.ShowSignup)
		public.GET("/login", authHandlers.ShowLogin)
		public.POST("/signup", authHandlers.Signup)
		public.POST("/login", authHandlers.Login)
		public.POST("/logout", authHandlers.Logout)
	}

	// 認証必須ページ。トークンが無効ならログイン画面へリダイレクト
	protected := router.Group("", tokens.RequireLogin())
	{
		protected.GET("/dashboard", authHandlers.Dashboard)

		pdfRoutes := protected.Group("/pdf", limitRequestBody(cfg.MaxUploadSize*int64(cfg.MaxImageFiles)))
		{
			pdfRoutes.GET("/merge", pdf.ShowFormHandler(pdf.OperationMerge))
			pdfRoutes.POST("/merge", pdf.MergeHandler(pdfService, collector))

			pdfRoutes.GET("/split", pdf.ShowFormHandler(pdf.OperationSplit))
			pdfRoutes.POST("/split", pdf.SplitHandler(pdfService, collector))

			pdfRoutes.GET("/images-to-pdf", pdf.ShowFormHandler(pdf.OperationImages))
			pdfRoutes.POST("/images-to-pdf", pdf.ImagesHandler(pdfService, collector))

			pdfRoutes.GET("/word-to-pdf", pdf.ShowFormHandler(pdf.OperationWord))
			pdfRoutes.POST("/word-to-pdf", pdf.WordHandler(pdfService, collector))
		}
	}
}

// limitRequestBody はリクエストボディ全体の上限を設定するミドルウェアです。
// ファイル単位の上限はサービス層で別途検査します。
func limitRequestBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
