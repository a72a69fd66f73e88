// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds process settings read from the environment (and .env via godotenv).
type Config struct {
	Port     string
	LogLevel string

	RedisAddr          string
	RedisDB            int
	RedisChannelPrefix string

	// DatabaseURL is optional. When empty no display-name lookup is attempted.
	DatabaseURL string

	TokenExpire string

	BotThinkMin    time.Duration
	BotThinkMax    time.Duration
	BotBudget      time.Duration
	RematchTimeout time.Duration
	ReconnectGrace time.Duration
	LastCallWindow time.Duration
	UnoMaxHand     int

	HistorianBatchSize int
	HistorianFlushMs   int
}

// Load reads the environment. Unset keys take their defaults; malformed durations fail.
func Load() (Config, error) {
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RedisChannelPrefix: getEnv("REDIS_CHANNEL_PREFIX", "tabletop"),
		DatabaseURL:        databaseURL(),
		TokenExpire:        getEnv("TOKEN_EXPIRE_TIME", "never"),
		UnoMaxHand:         getEnvInt("UNO_MAX_HAND", 40),
		HistorianBatchSize: getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlushMs:   getEnvInt("HISTORIAN_FLUSH_MS", 500),
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"BOT_THINK_MIN", 400 * time.Millisecond, &cfg.BotThinkMin},
		{"BOT_THINK_MAX", 1200 * time.Millisecond, &cfg.BotThinkMax},
		{"BOT_BUDGET", 800 * time.Millisecond, &cfg.BotBudget},
		{"REMATCH_TIMEOUT", 30 * time.Second, &cfg.RematchTimeout},
		{"RECONNECT_GRACE", 20 * time.Second, &cfg.ReconnectGrace},
		{"LAST_CALL_WINDOW", 5 * time.Second, &cfg.LastCallWindow},
	}
	for _, d := range durations {
		v, err := getEnvDuration(d.key, d.def)
		if err != nil {
			return Config{}, err
		}
		*d.dst = v
	}
	if cfg.BotThinkMax < cfg.BotThinkMin {
		return Config{}, fmt.Errorf("BOT_THINK_MAX (%s) is below BOT_THINK_MIN (%s)", cfg.BotThinkMax, cfg.BotThinkMin)
	}
	return cfg, nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles one from the PG_* variables.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := os.Getenv("PG_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		host,
		getEnv("PG_PORT", "5432"),
		os.Getenv("PG_DATABASE"),
	)
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
