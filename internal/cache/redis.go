package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bandage123/estimationwhist-sub000/internal/models"
)

// Rdb is the global Redis client. Connect it once at application startup; a
// nil client simply disables result publishing.
var Rdb *redis.Client

// DefaultQueueName is the Redis list the leaderboard consumer drains.
var DefaultQueueName = "whist_results"

// ConnectRedis initializes the global Redis client from environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		Rdb = nil
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// PublishGameResult pushes a finished-game record onto the results queue.
// Fire-and-forget: callers log the returned error at most; a failure never
// affects game state.
func PublishGameResult(ctx context.Context, result models.GameResult) error {
	if Rdb == nil {
		return fmt.Errorf("redis not connected")
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal GameResult: %w", err)
	}
	queueName := getEnv("RESULTS_QUEUE_NAME", DefaultQueueName)
	return Rdb.LPush(ctx, queueName, data).Err()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
