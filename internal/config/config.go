package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）

	JWTSecret string // JWT署名シークレット

	VNPTmnCode    string // VNPayマーチャントコード
	VNPHashSecret string // VNPay署名シークレット
	VNPPayURL     string // VNPay決済ページURL
	VNPReturnURL  string // 決済後に戻ってくるURL

	GoEnv     string // dev/prod
	ClientURL string // フロントURL（決済結果のリダイレクト先）
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		JWTSecret: os.Getenv("JWT_SECRET"),

		VNPTmnCode:    os.Getenv("VNP_TMN_CODE"),
		VNPHashSecret: os.Getenv("VNP_HASH_SECRET"),
		VNPPayURL:     os.Getenv("VNP_URL"),
		VNPReturnURL:  os.Getenv("VNP_RETURN_URL"),

		GoEnv:     os.Getenv("GO_ENV"),
		ClientURL: os.Getenv("CLIENT_URL"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.VNPTmnCode == "" {
		return Config{}, fmt.Errorf("VNP_TMN_CODE is required")
	}
	if cfg.VNPHashSecret == "" {
		return Config{}, fmt.Errorf("VNP_HASH_SECRET is required")
	}
	if cfg.VNPPayURL == "" {
		return Config{}, fmt.Errorf("VNP_URL is required")
	}
	if cfg.VNPReturnURL == "" {
		return Config{}, fmt.Errorf("VNP_RETURN_URL is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.ClientURL == "" {
		return Config{}, fmt.Errorf("CLIENT_URL is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
