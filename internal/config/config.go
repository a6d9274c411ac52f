package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageRedis    = "redis"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	TokenModeLocal  = "local"
	TokenModeRemote = "remote"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	Storage   string
	RedisURL  string
	RedisPass string
	RedisDB   int

	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	WheelConfigPath string
	Wheel           *WheelConfig

	TokenMode     string
	IssuerURL     string
	IssuerSecret  string
	IssuerEnabled bool
	IssuerTimeout time.Duration

	// OperatorKey guards operator routes; they are not mounted when it is empty.
	OperatorKey string

	SessionIdleTTL time.Duration

	Location *time.Location
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            envOr("PORT", "8080"),
		Env:             envOr("APP_ENV", "development"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		Storage:         strings.ToLower(envOr("STORAGE", StorageRedis)),
		RedisURL:        envOr("REDIS_URL", "localhost:6379"),
		RedisPass:       os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTTTL:          24 * time.Hour,
		WheelConfigPath: os.Getenv("WHEEL_CONFIG"),
		TokenMode:       strings.ToLower(envOr("TOKEN_MODE", TokenModeLocal)),
		IssuerURL:       os.Getenv("ISSUER_URL"),
		IssuerSecret:    os.Getenv("ISSUER_SECRET"),
		IssuerTimeout:   5 * time.Second,
		OperatorKey:     os.Getenv("OPERATOR_KEY"),
		SessionIdleTTL:  30 * time.Minute,
		Location:        time.Local,
	}

	var err error
	if cfg.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.JWTTTL, err = envDuration("JWT_TTL", cfg.JWTTTL); err != nil {
		return nil, err
	}
	if cfg.IssuerTimeout, err = envDuration("ISSUER_TIMEOUT", cfg.IssuerTimeout); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = envDuration("SESSION_IDLE_TTL", cfg.SessionIdleTTL); err != nil {
		return nil, err
	}
	if v := os.Getenv("ISSUER_ENABLED"); v != "" {
		if cfg.IssuerEnabled, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid ISSUER_ENABLED %q: %w", v, err)
		}
	}
	if tz := os.Getenv("TZ_NAME"); tz != "" {
		if cfg.Location, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("invalid TZ_NAME %q: %w", tz, err)
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.Storage {
	case StorageRedis, StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORAGE=postgres")
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE %q", cfg.Storage)
	}
	switch cfg.TokenMode {
	case TokenModeLocal:
	case TokenModeRemote:
		if cfg.IssuerURL == "" {
			return nil, fmt.Errorf("ISSUER_URL is required when TOKEN_MODE=remote")
		}
		if cfg.IssuerSecret == "" {
			return nil, fmt.Errorf("ISSUER_SECRET is required when TOKEN_MODE=remote")
		}
	default:
		return nil, fmt.Errorf("invalid TOKEN_MODE %q", cfg.TokenMode)
	}
	if cfg.IssuerEnabled && cfg.IssuerSecret == "" {
		return nil, fmt.Errorf("ISSUER_SECRET is required when ISSUER_ENABLED=true")
	}

	if cfg.Wheel, err = LoadWheelConfig(cfg.WheelConfigPath); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
