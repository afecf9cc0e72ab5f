// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// MinBcryptCost はBCRYPT_COSTの下限。これより小さい値は引き上げる。
const MinBcryptCost = 10

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	Database DatabaseConfig

	// Auth
	JWTSecret  string        `env:"JWT_SECRET" env-required:"true" env-description:"セッショントークンの署名鍵"`
	JWTTTL     time.Duration `env:"JWT_TTL" env-default:"168h" env-description:"セッショントークンの有効期間"`
	BcryptCost int           `env:"BCRYPT_COST" env-default:"10" env-description:"bcryptのコスト（10以上）"`

	// Server
	ServerPort        string `env:"SERVER_PORT" env-default:"8080"`
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" env-default:"http://localhost:3000"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" env-default:"info" env-description:"debug|info|warn|error"`
	LogFormat string `env:"LOG_FORMAT" env-default:"json" env-description:"json|text"`

	// Pagination
	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" env-default:"10"`
	MaxPageSize     int `env:"MAX_PAGE_SIZE" env-default:"100"`
}

// DatabaseConfig はデータベース接続の設定。
// cmd/blogctl のようにDBだけを使うコマンドは LoadDatabase で単独に読み込む。
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL" env-required:"true" env-description:"PostgreSQLの接続URL"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.BcryptCost < MinBcryptCost {
		cfg.BcryptCost = MinBcryptCost
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.DefaultPageSize <= 0 || cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = min(10, cfg.MaxPageSize)
	}

	return cfg, nil
}

// LoadDatabase はデータベース設定のみを読み込む。
func LoadDatabase() (*DatabaseConfig, error) {
	cfg := &DatabaseConfig{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read database configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// env-required は変数の有無しか見ないため、空文字列はここで弾く。
func (c *DatabaseConfig) validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// Usage は設定に使う環境変数の説明を返す。
func Usage() string {
	text, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return text
}
