// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// placeholderTokenSecret は配布物に残りがちな既知のプレースホルダー値です。
// この値のままの起動は本番・開発を問わず拒否します。
const placeholderTokenSecret = "dev_secret_change_me"

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// 認証設定
	TokenSecret string // セッショントークン署名用の秘密鍵

	// サーバー設定
	Port    string // HTTPサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// アップロード制限
	MaxUploadSize int64 // 単一ファイルの最大サイズ（バイト）
	MaxMergeFiles int   // 結合で受け付ける最大ファイル数
	MaxImageFiles int   // 画像→PDFで受け付ける最大ファイル数

	// Word→PDF レンダリング設定
	ChromePath      string        // Chrome/Chromium実行ファイルのパス（空なら自動検出）
	ChromeNoSandbox bool          // コンテナ実行時のサンドボックス無効化
	RenderTimeout   time.Duration // 1回のHTML→PDF変換の上限時間

	// 作業ディレクトリ
	WorkDir string // リクエスト単位の一時ワークスペースの親ディレクトリ
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		TokenSecret: getEnv("TOKEN_SECRET", ""),

		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8080"),

		MaxUploadSize: getEnvAsInt64("MAX_UPLOAD_SIZE", 20*1024*1024), // 20MB
		MaxMergeFiles: getEnvAsInt("MAX_MERGE_FILES", 20),
		MaxImageFiles: getEnvAsInt("MAX_IMAGE_FILES", 50),

		ChromePath:      getEnv("CHROME_PATH", ""),
		ChromeNoSandbox: getEnvAsBool("CHROME_NO_SANDBOX", true),
		RenderTimeout:   time.Duration(getEnvAsInt("RENDER_TIMEOUT_SECONDS", 30)) * time.Second,

		WorkDir: getEnv("WORK_DIR", os.TempDir()),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
// トークン署名鍵は実行モードによらず必須で、既知のプレースホルダー値は拒否します。
func (c *Config) Validate() error {
	if c.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET is required")
	}
	if c.TokenSecret == placeholderTokenSecret {
		return fmt.Errorf("TOKEN_SECRET must not be the placeholder value")
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	if c.RenderTimeout <= 0 {
		return fmt.Errorf("RENDER_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsInt64 は環境変数を64ビット整数として取得します。
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
