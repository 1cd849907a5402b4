// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// スコアの保存先です。
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
)

// Config はサーバー全体の設定です。
type Config struct {
	AppEnv         string        `env:"APP_ENV" envDefault:"development"`
	Port           string        `env:"PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	JWTSecret      string        `env:"JWT_SECRET"`
	BypassAuth     bool          `env:"BYPASS_AUTH" envDefault:"false"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ScoreBackend   string        `env:"SCORE_BACKEND" envDefault:"memory"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"woodblock.db"`
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	IdleTimeout    time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
}

// IsProduction は本番環境かどうかを返します。
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load は環境変数から設定を読み込みます。
// 本番環境以外では先に .env ファイルを読み込みます（存在しなくてもエラーにはしません）。
func Load() (Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not loaded: %v", err)
		}
	}
	return Parse()
}

// Parse は .env を読まずに現在の環境変数だけから設定を組み立てて検証します。
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は矛盾する設定の組み合わせを検出します。
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.IdleTimeout < 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TIMEOUT must not be negative"))
	}
	if c.BypassAuth && c.IsProduction() {
		errs = append(errs, errors.New("BYPASS_AUTH cannot be enabled in production"))
	}
	if !c.BypassAuth && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required unless BYPASS_AUTH=true"))
	}

	switch c.ScoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for SCORE_BACKEND=postgres"))
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for SCORE_BACKEND=sqlite"))
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for SCORE_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SCORE_BACKEND %q", c.ScoreBackend))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
