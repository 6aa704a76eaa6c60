package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/bandage123/estimationwhist-sub000/internal/models"
)

// SaveGame upserts a serialized game snapshot keyed by game id. Saving the
// same game twice overwrites the earlier save.
func SaveGame(ctx context.Context, meta models.SaveMetadata, snapshot json.RawMessage) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	_, err := DB.Exec(ctx, `
INSERT INTO saved_games (game_id, player_name, format, round, score, saved_at, snapshot)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (game_id) DO UPDATE SET
	player_name = EXCLUDED.player_name,
	format = EXCLUDED.format,
	round = EXCLUDED.round,
	score = EXCLUDED.score,
	saved_at = EXCLUDED.saved_at,
	snapshot = EXCLUDED.snapshot
`, meta.GameID, meta.PlayerName, meta.Format, meta.Round, meta.Score, meta.SavedAt, snapshot)
	if err != nil {
		return fmt.Errorf("failed to save game %s: %w", meta.GameID, err)
	}
	return nil
}

// LoadGame fetches a saved snapshot by game id.
func LoadGame(ctx context.Context, gameID uuid.UUID) (json.RawMessage, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not connected")
	}
	var snapshot json.RawMessage
	err := DB.QueryRow(ctx,
		`SELECT snapshot FROM saved_games WHERE game_id = $1`, gameID,
	).Scan(&snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	return snapshot, nil
}

// DeleteSave removes a saved game, typically after a successful restore.
func DeleteSave(ctx context.Context, gameID uuid.UUID) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	_, err := DB.Exec(ctx, `DELETE FROM saved_games WHERE game_id = $1`, gameID)
	return err
}

// ListSaves returns save envelopes, newest first. An empty playerName lists
// every save.
func ListSaves(ctx context.Context, playerName string) ([]models.SaveMetadata, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not connected")
	}
	rows, err := DB.Query(ctx, `
SELECT game_id, player_name, format, round, score, saved_at
FROM saved_games
WHERE $1 = '' OR player_name = $1
ORDER BY saved_at DESC
`, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	defer rows.Close()

	var saves []models.SaveMetadata
	for rows.Next() {
		var m models.SaveMetadata
		if err := rows.Scan(&m.GameID, &m.PlayerName, &m.Format, &m.Round, &m.Score, &m.SavedAt); err != nil {
			return nil, err
		}
		saves = append(saves, m)
	}
	return saves, rows.Err()
}

// RecordResult appends a finished-game record to the high-score table.
func RecordResult(ctx context.Context, r models.GameResult) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	_, err := DB.Exec(ctx, `
INSERT INTO high_scores (category, player_name, format, final_score, player_count, mode, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, r.Category, r.PlayerName, r.Format, r.FinalScore, r.PlayerCount, r.Mode, r.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}
	return nil
}

// TopScores returns the best results for a category, highest score first.
func TopScores(ctx context.Context, category string, limit int) ([]models.GameResult, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not connected")
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := DB.Query(ctx, `
SELECT category, player_name, format, final_score, player_count, mode, finished_at
FROM high_scores
WHERE category = $1
ORDER BY final_score DESC, finished_at ASC
LIMIT $2
`, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query high scores: %w", err)
	}
	defer rows.Close()

	var results []models.GameResult
	for rows.Next() {
		var r models.GameResult
		if err := rows.Scan(&r.Category, &r.PlayerName, &r.Format, &r.FinalScore, &r.PlayerCount, &r.Mode, &r.FinishedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
