package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bandage123/estimationwhist-sub000/internal/cache"
	"github.com/bandage123/estimationwhist-sub000/internal/database"
	"github.com/bandage123/estimationwhist-sub000/internal/game"
	"github.com/bandage123/estimationwhist-sub000/internal/models"
)

// GameServer owns the game registry and bridges engine events to transport
// and persistence.
type GameServer struct {
	GameStore *game.GameStore
	Logger    *logrus.Logger
}

func NewGameServer(logger *logrus.Logger) *GameServer {
	return &GameServer{
		GameStore: game.NewGameStore(),
		Logger:    logger,
	}
}

// attachGame wires the engine's outbound callbacks for one instance. The
// callbacks fire with the game lock held, so they read player connections
// directly and push all socket writes onto goroutines.
func (s *GameServer) attachGame(g *game.WhistGame) {
	g.BroadcastFn = func(views map[uuid.UUID]game.PlayerView) {
		for _, p := range g.Players {
			view, ok := views[p.ID]
			if !ok || p.Conn == nil {
				continue
			}
			conn := p.Conn
			go func() {
				if err := sendWsMessage(conn, wsMessage{Type: "state", Data: view}); err != nil {
					s.Logger.WithField("game_id", g.ID).Debugf("broadcast write failed: %v", err)
				}
			}()
		}
	}
	g.OnGameEnd = s.recordResults
}

// recordResults publishes one result per human player when a game finishes.
// Called with the game lock held; the I/O itself is fire-and-forget.
func (s *GameServer) recordResults(g *game.WhistGame) {
	if g.Failed {
		return
	}
	humans := 0
	for _, p := range g.Players {
		if !p.IsCPU {
			humans++
		}
	}
	mode := "solo"
	if humans > 1 {
		mode = "multiplayer"
	}
	category := fmt.Sprintf("%s-%dp", g.Ruleset, len(g.Players))

	var results []models.GameResult
	for _, p := range g.Players {
		if p.IsCPU {
			continue
		}
		results = append(results, models.GameResult{
			Category:    category,
			PlayerName:  p.Name,
			Format:      g.Ruleset,
			FinalScore:  p.Score,
			PlayerCount: len(g.Players),
			Mode:        mode,
			FinishedAt:  time.Now().UTC(),
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, r := range results {
			if err := cache.PublishGameResult(ctx, r); err != nil {
				s.Logger.Debugf("result publish skipped: %v", err)
			}
			if err := database.RecordResult(ctx, r); err != nil {
				s.Logger.Debugf("high score record skipped: %v", err)
			}
		}
	}()
}
