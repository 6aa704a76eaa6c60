package models

import (
	"time"

	"github.com/google/uuid"
)

// SaveMetadata is the envelope stored alongside a serialized game snapshot so
// saved games can be listed without deserializing the full state.
type SaveMetadata struct {
	GameID     uuid.UUID `json:"gameId"`
	PlayerName string    `json:"playerName"`
	Format     string    `json:"format"`
	Round      int       `json:"round"`
	Score      int       `json:"score"`
	SavedAt    time.Time `json:"savedAt"`
}

// GameResult is the fire-and-forget record published when a game finishes.
// Failures to record it must never affect game correctness.
type GameResult struct {
	Category    string    `json:"category"`
	PlayerName  string    `json:"playerName"`
	Format      string    `json:"format"`
	FinalScore  int       `json:"finalScore"`
	PlayerCount int       `json:"playerCount"`
	Mode        string    `json:"mode"`
	FinishedAt  time.Time `json:"finishedAt"`
}
