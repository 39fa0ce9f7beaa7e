package main

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config is the runtime configuration, resolved from defaults, an optional
// config file, .env and the process environment (in increasing precedence).
type Config struct {
	Port           int
	UploadDir      string
	MaxUploadBytes int64
	DefaultBins    int
	CSVSeparator   byte
	ColumnWorkers  int

	RedisURL    string
	WorkerQueue string

	LogLevel     string
	LogFormat    string
	LogFile      string
	LogMaxSizeMB int
}

func init() {
	viper.SetDefault("PORT", 5000)
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	viper.SetDefault("DEFAULT_BINS", defaultBins)
	viper.SetDefault("CSV_SEPARATOR", ",")
	viper.SetDefault("COLUMN_WORKERS", runtime.NumCPU())
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("WORKER_QUEUE", "default")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LOG_MAX_SIZE_MB", 50)
	viper.AutomaticEnv()
}

func loadConfig() (Config, error) {
	cfg := Config{
		Port:           viper.GetInt("PORT"),
		UploadDir:      viper.GetString("UPLOAD_DIR"),
		MaxUploadBytes: viper.GetInt64("MAX_UPLOAD_BYTES"),
		DefaultBins:    viper.GetInt("DEFAULT_BINS"),
		ColumnWorkers:  viper.GetInt("COLUMN_WORKERS"),
		RedisURL:       viper.GetString("REDIS_URL"),
		WorkerQueue:    viper.GetString("WORKER_QUEUE"),
		LogLevel:       viper.GetString("LOG_LEVEL"),
		LogFormat:      viper.GetString("LOG_FORMAT"),
		LogFile:        viper.GetString("LOG_FILE"),
		LogMaxSizeMB:   viper.GetInt("LOG_MAX_SIZE_MB"),
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("PORT out of range: %d", cfg.Port)
	}
	if cfg.DefaultBins < 1 || cfg.DefaultBins > maxHistogramBins {
		return Config{}, fmt.Errorf("DEFAULT_BINS must be between 1 and %d, got %d", maxHistogramBins, cfg.DefaultBins)
	}
	sep, err := parseSeparator(viper.GetString("CSV_SEPARATOR"))
	if err != nil {
		return Config{}, err
	}
	cfg.CSVSeparator = sep
	if cfg.WorkerQueue == "" {
		cfg.WorkerQueue = "default"
	}
	return cfg, nil
}

func parseSeparator(s string) (byte, error) {
	switch strings.ToLower(s) {
	case `\t`, "tab":
		return '\t', nil
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("CSV_SEPARATOR must be a single byte, got %q", s)
	}
	return s[0], nil
}

func buildDSNFromEnv() (string, error) {
	host := viper.GetString("POSTGRES_HOST")
	port := viper.GetString("POSTGRES_PORT")
	user := viper.GetString("POSTGRES_USER")
	pass := viper.GetString("POSTGRES_PASSWORD")
	dbname := viper.GetString("POSTGRES_DB")
	if dbname == "" {
		if url := viper.GetString("DATABASE_URL"); url != "" {
			return url, nil
		}
		return "", errors.New("POSTGRES_DB not set; set env vars or DATABASE_URL")
	}
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, pass, dbname), nil
}
