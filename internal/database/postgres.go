package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Config holds the PostgreSQL connection settings.
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders the lib/pq keyword/value connection string.
func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

// NewPostgresDB opens a pooled connection and verifies it with a ping.
func NewPostgresDB(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS readme_instruction (
		id               BIGSERIAL PRIMARY KEY,
		title            TEXT NOT NULL DEFAULT '',
		readme_text      TEXT NOT NULL DEFAULT '',
		score_type       TEXT NOT NULL DEFAULT '',
		eval_type        TEXT NOT NULL DEFAULT '',
		pre_eval_context TEXT NOT NULL DEFAULT '',
		content_type     TEXT NOT NULL DEFAULT '',
		status_ind       TEXT NOT NULL DEFAULT 'Active',
		default_ind      BOOLEAN NOT NULL DEFAULT FALSE,
		custom_ind       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		modified_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS metric (
		id           BIGSERIAL PRIMARY KEY,
		metric_type  TEXT NOT NULL,
		metric_name  TEXT NOT NULL,
		metric_def   TEXT NOT NULL DEFAULT '',
		metric_notes TEXT NOT NULL DEFAULT '',
		weight       TEXT,
		genai_ind    BOOLEAN NOT NULL DEFAULT FALSE,
		mt_llm_ind   BOOLEAN NOT NULL DEFAULT FALSE,
		score_type   TEXT NOT NULL DEFAULT '',
		eval_type    TEXT NOT NULL DEFAULT '',
		status_ind   TEXT NOT NULL DEFAULT 'Active',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		modified_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (metric_type, metric_name)
	)`,
	`CREATE TABLE IF NOT EXISTS organization (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS project (
		id              BIGSERIAL PRIMARY KEY,
		name            TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		organization_id BIGINT NOT NULL REFERENCES organization(id) ON DELETE CASCADE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the library tables when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
