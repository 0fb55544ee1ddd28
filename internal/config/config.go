package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

type envConfig struct {
	// server config
	APP_PORT string
	// database config
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	// search and audit backends, empty disables them
	ELASTIC_URL          string
	DATASTORE_PROJECT_ID string
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
	// workbook generation
	DEFAULT_METRIC_WEIGHT  int
	EVALUATION_ROWS        int
	PROTECT_FORMULA_HELPER bool
	HELPER_PASSWORD        string
	BATCH_WORKERS          int
}

// LoadEnvConfig reads .env when present and fills DefaultEnvConfig from the environment.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		APP_PORT:               getEnvString("APP_PORT", "8080"),
		DB_HOST:                getEnvString("DB_HOST", "localhost"),
		DB_PORT:                getEnvInt("DB_PORT", 5432),
		DB_USER:                getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:            getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:                getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:            getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME:   getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:      getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:      getEnvInt("DB_MAX_OPEN_CONNS", 100),
		ELASTIC_URL:            getEnvString("ELASTIC_URL", ""),
		DATASTORE_PROJECT_ID:   getEnvString("DATASTORE_PROJECT_ID", ""),
		LOG_FILE_PATH:          getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:              getEnvString("LOG_LEVEL", "info"),
		DEFAULT_METRIC_WEIGHT:  getEnvInt("DEFAULT_METRIC_WEIGHT", 5),
		EVALUATION_ROWS:        getEnvInt("EVALUATION_ROWS", 100),
		PROTECT_FORMULA_HELPER: getEnvBool("PROTECT_FORMULA_HELPER", true),
		HELPER_PASSWORD:        getEnvString("HELPER_PASSWORD", ""),
		BATCH_WORKERS:          getEnvInt("BATCH_WORKERS", 4),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
