package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/joho/godotenv/autoload"
)

// DB is the global connection pool. A nil pool disables the save/restore and
// high-score endpoints but never affects live games.
var DB *pgxpool.Pool

// ConnectDB opens the pool from POSTGRES_USER, POSTGRES_PASSWORD, PG_HOST,
// PG_PORT, and PG_DATABASE, then ensures the schema exists.
func ConnectDB() error {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		getEnv("PG_DATABASE", "postgres"),
	)
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return fmt.Errorf("unable to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("unable to reach database: %w", err)
	}

	DB = pool
	return ensureSchema(context.Background())
}

func ensureSchema(ctx context.Context) error {
	_, err := DB.Exec(ctx, `
CREATE TABLE IF NOT EXISTS saved_games (
	game_id UUID PRIMARY KEY,
	player_name TEXT NOT NULL,
	format TEXT NOT NULL,
	round INT NOT NULL,
	score INT NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL,
	snapshot JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS high_scores (
	id BIGSERIAL PRIMARY KEY,
	category TEXT NOT NULL,
	player_name TEXT NOT NULL,
	format TEXT NOT NULL,
	final_score INT NOT NULL,
	player_count INT NOT NULL,
	mode TEXT NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_high_scores_category_score
	ON high_scores (category, final_score DESC);
`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
