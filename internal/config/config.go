package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	RedisAddr string // カートストア（localhost:6379）

	JWTSecret string // JWT署名シークレット（IdPと共有）

	UPIVPAddress string // 受取先UPIアドレス（payee@bank）
	UPIPayeeName string // 受取人表示名

	DownloadSecret  string // 署名URLのHMACシークレット
	DownloadBaseURL string // 署名URLのベース（https://api.example.com）

	// 任意：設定されていればこのサーバー自身が /files/:ref を配信する。
	// 未設定＝縮退モード（配信は外部ブロブストア任せ）。起動時に明示的に決まる。
	FilesDir string

	GoEnv string // dev/prod
}

func (c Config) FileServingEnabled() bool {
	return c.FilesDir != ""
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		UPIVPAddress: os.Getenv("UPI_VPA"),
		UPIPayeeName: os.Getenv("UPI_PAYEE_NAME"),

		DownloadSecret:  os.Getenv("DOWNLOAD_SECRET"),
		DownloadBaseURL: os.Getenv("DOWNLOAD_BASE_URL"),

		FilesDir: os.Getenv("FILES_DIR"),

		GoEnv: os.Getenv("GO_ENV"),
	}

	//必須チェック（DB接続情報は infra/db 側で見る）
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.UPIVPAddress == "" {
		return Config{}, fmt.Errorf("UPI_VPA is required")
	}
	if cfg.UPIPayeeName == "" {
		return Config{}, fmt.Errorf("UPI_PAYEE_NAME is required")
	}
	if cfg.DownloadSecret == "" {
		return Config{}, fmt.Errorf("DOWNLOAD_SECRET is required")
	}
	if cfg.DownloadBaseURL == "" {
		return Config{}, fmt.Errorf("DOWNLOAD_BASE_URL is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}
