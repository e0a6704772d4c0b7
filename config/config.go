package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/courtmate/matchmaking-system/matching"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Cloudflare R2 (фото кортов). Опционально: без этих переменных
	// сервис работает, но загрузка фото недоступна.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	// Фоновый пересчёт предложений.
	SweepInterval     time.Duration
	SweepHorizonHours int

	Matching matching.Config
}

// R2Configured reports whether every R2 credential is present.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	sweepMinutes, err := intEnv("SWEEP_INTERVAL_MINUTES", 15)
	if err != nil {
		return nil, err
	}
	if sweepMinutes <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL_MINUTES must be positive, got %d", sweepMinutes)
	}

	horizonHours, err := intEnv("SWEEP_HORIZON_HOURS", 48)
	if err != nil {
		return nil, err
	}
	if horizonHours <= 0 {
		return nil, fmt.Errorf("SWEEP_HORIZON_HOURS must be positive, got %d", horizonHours)
	}

	matchingCfg, err := matchingConfigFromEnv()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:  dbURL,
		JWTSecretKey: jwtKey,
		ServerPort:   port,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),

		SweepInterval:     time.Duration(sweepMinutes) * time.Minute,
		SweepHorizonHours: horizonHours,

		Matching: matchingCfg,
	}

	return cfg, nil
}

// matchingConfigFromEnv применяет точечные переопределения поверх дефолтной
// конфигурации подбора. Валидность итоговой конфигурации проверяет движок.
func matchingConfigFromEnv() (matching.Config, error) {
	cfg := matching.DefaultConfig()

	if v, err := floatEnv("MATCHING_MIN_SINGLES_SCORE", cfg.MinSinglesScore); err != nil {
		return cfg, err
	} else {
		cfg.MinSinglesScore = v
	}
	if v, err := floatEnv("MATCHING_MIN_DOUBLES_SCORE", cfg.MinDoublesScore); err != nil {
		return cfg, err
	} else {
		cfg.MinDoublesScore = v
	}
	if v, err := intEnv("MATCHING_MATCH_DURATION_MINUTES", int(cfg.MatchDuration.Minutes())); err != nil {
		return cfg, err
	} else {
		cfg.MatchDuration = time.Duration(v) * time.Minute
	}
	if v, err := intEnv("MATCHING_CANCEL_RECENCY_HOURS", int(cfg.CancelRecency.Hours())); err != nil {
		return cfg, err
	} else {
		cfg.CancelRecency = time.Duration(v) * time.Hour
	}
	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}

func floatEnv(name string, fallback float64) (float64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}
