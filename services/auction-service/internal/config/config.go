// Package config loads the auction service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/floroz/bidmaster/pkg/money"
)

const defaultPlaceholderImage = "https://res.cloudinary.com/demo/image/upload/samples/cloudinary-icon"

type Config struct {
	DatabaseURL string
	RabbitMQURL string
	HTTPAddr    string

	// Redis is nil when REDIS_URL is unset
	Redis *redis.Options

	AuthPublicKeyPath string
	AuthIssuer        string

	MinBidIncrement   money.Cents
	SweepInterval     time.Duration
	ReviewGraceWindow time.Duration
	MaxDurationDays   int
	LockTimeout       time.Duration
	CacheTTL          time.Duration
	PlaceholderImage  string

	OutboxBatchSize int
	OutboxInterval  time.Duration
}

// LoadDotEnv reads .env.local then .env. Variables already set win.
func LoadDotEnv() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()
}

// Load reads the configuration from the environment and validates it
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("AUCTION_DB_URL"),
		RabbitMQURL:       os.Getenv("RABBITMQ_URL"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		AuthPublicKeyPath: os.Getenv("AUTH_PUBLIC_KEY_PATH"),
		AuthIssuer:        getEnv("AUTH_ISSUER", "bidmaster-auth"),
		PlaceholderImage:  getEnv("PLACEHOLDER_IMAGE_URL", defaultPlaceholderImage),
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	redisOpts, err := redisOptions(os.Getenv("REDIS_URL"))
	if err != nil {
		collect(fmt.Errorf("REDIS_URL: %w", err))
	}
	cfg.Redis = redisOpts

	increment, err := money.ParsePositive(getEnv("MIN_BID_INCREMENT", "1.00"))
	if err != nil {
		collect(fmt.Errorf("MIN_BID_INCREMENT: %w", err))
	}
	cfg.MinBidIncrement = increment

	cfg.SweepInterval, err = durationEnv("SWEEP_INTERVAL", time.Minute)
	collect(err)
	cfg.ReviewGraceWindow, err = durationEnv("REVIEW_GRACE_WINDOW", 5*time.Minute)
	collect(err)
	cfg.LockTimeout, err = durationEnv("LOCK_TIMEOUT", 3*time.Second)
	collect(err)
	cfg.CacheTTL, err = durationEnv("CACHE_TTL", 30*time.Second)
	collect(err)
	cfg.OutboxInterval, err = durationEnv("OUTBOX_INTERVAL", time.Second)
	collect(err)
	cfg.MaxDurationDays, err = intEnv("MAX_DURATION_DAYS", 30)
	collect(err)
	cfg.OutboxBatchSize, err = intEnv("OUTBOX_BATCH_SIZE", 10)
	collect(err)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// RequireDatabase fails when no database URL is configured
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("AUCTION_DB_URL is not set")
	}
	return nil
}

// RequireBroker fails when no RabbitMQ URL is configured
func (c *Config) RequireBroker() error {
	if c.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is not set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive", key)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive", key)
	}
	return n, nil
}

// redisOptions accepts a redis:// or rediss:// URL, or a bare host:port
func redisOptions(raw string) (*redis.Options, error) {
	if raw == "" {
		return nil, nil
	}
	if !strings.Contains(raw, "://") {
		return &redis.Options{Addr: raw}, nil
	}
	return redis.ParseURL(raw)
}
