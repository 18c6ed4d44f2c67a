package factory

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/blackjack-go/internal/lock"
	redisstorage "github.com/mcoot/blackjack-go/internal/storage/redis"
)

// DefaultPort is the HTTP port used when PORT is unset
const DefaultPort = 8080

// ConfigFromEnv builds a Config from environment variables. A .env file in
// the working directory is loaded first if present; variables already set in
// the environment win.
func ConfigFromEnv(logger *slog.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Logger:        logger,
		StorageType:   os.Getenv("STORAGE_TYPE"),
		NATSURL:       os.Getenv("NATS_URL"),
		InstanceID:    os.Getenv("INSTANCE_ID"),
		SigningSecret: os.Getenv("RESPONSE_SIGNING_SECRET"),
		LockConfig:    lock.DefaultConfig(),
		Port:          DefaultPort,
	}

	if cfg.StorageType == StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return Config{}, errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	var err error
	if cfg.LockConfig.TTL, err = durationEnv("LOCK_TTL", cfg.LockConfig.TTL); err != nil {
		return Config{}, err
	}
	if cfg.LockConfig.Timeout, err = durationEnv("LOCK_TIMEOUT", cfg.LockConfig.Timeout); err != nil {
		return Config{}, err
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", raw)
		}
		cfg.Port = port
	}

	return cfg, nil
}

// durationEnv reads a Go duration ("5s", "250ms") or returns def when unset
func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return d, nil
}
