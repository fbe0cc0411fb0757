package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/raflytch/interview-assistant/internal/config"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS interviews (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	session_id VARCHAR(64) NOT NULL UNIQUE,
	candidate_name VARCHAR(255) NOT NULL,
	candidate_email VARCHAR(255) NOT NULL,
	candidate_phone VARCHAR(32) NOT NULL,
	company_name VARCHAR(255) NOT NULL DEFAULT '',
	job_role VARCHAR(100) NOT NULL,
	questions JSONB NOT NULL,
	answers JSONB NOT NULL,
	scores INTEGER[] NOT NULL,
	final_score INTEGER NOT NULL,
	summary TEXT NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_interviews_final_score ON interviews (final_score) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_interviews_completed_at ON interviews (completed_at) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS usage (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	feature VARCHAR(50) NOT NULL,
	period_month DATE NOT NULL,
	count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	deleted_at TIMESTAMPTZ,
	UNIQUE (user_id, feature, period_month)
);
`

func NewPostgresConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the tables used by the record and quota stores.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
