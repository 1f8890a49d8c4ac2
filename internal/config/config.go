package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/baxromumarov/lunch-menu/internal/httpx"
	"github.com/baxromumarov/lunch-menu/internal/scraper"
	"github.com/baxromumarov/lunch-menu/internal/store"
)

type Config struct {
	NacepuURL string
	SiaURL    string

	DataDir      string
	NacepuOutput string
	SiaOutput    string
	IndexPath    string
	StatsOutput  string

	UserAgent     string
	FetchTimeout  time.Duration
	FetchAttempts int
	SiaCharset    string

	LogLevel  slog.Level
	LogFormat string
	Port      string
}

// Load reads the configuration from the environment. Outside production a
// .env file in the working directory is loaded first if present; variables
// already set in the environment win.
func Load() Config {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	return Config{
		NacepuURL:     getEnv("NACEPU_URL", scraper.NacepuURL),
		SiaURL:        getEnv("SIA_URL", scraper.SiaURL),
		DataDir:       getEnv("MENU_DATA_DIR", "."),
		NacepuOutput:  getEnv("NACEPU_OUTPUT", "nacepu_menu.json"),
		SiaOutput:     getEnv("SIA_OUTPUT", "sia_menu.json"),
		IndexPath:     getEnv("INDEX_PATH", "index.html"),
		StatsOutput:   getEnv("STATS_OUTPUT", store.DefaultStatsFile),
		UserAgent:     getEnv("MENU_USER_AGENT", httpx.DefaultUserAgent),
		FetchTimeout:  getDuration("MENU_FETCH_TIMEOUT", 15*time.Second),
		FetchAttempts: getInt("MENU_FETCH_ATTEMPTS", 1),
		SiaCharset:    getEnv("SIA_CHARSET", "utf-8"),
		LogLevel:      getLevel("LOG_LEVEL", slog.LevelInfo),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "text")),
		Port:          getEnv("PORT", "8080"),
	}
}

// Logger builds the process logger: text or JSON lines on w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func getLevel(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
		slog.Warn("invalid log level in environment, using default", "key", key, "value", v)
		return fallback
	}
	return lvl
}
