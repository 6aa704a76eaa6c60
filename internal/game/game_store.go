package game

import (
	"sync"

	"github.com/google/uuid"
)

// GameStore is the per-process registry of in-progress games. It is an
// explicit service object passed by reference to the transport layer, so tests
// can run independent registries side by side.
type GameStore struct {
	mu    sync.Mutex
	games map[uuid.UUID]*WhistGame
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[uuid.UUID]*WhistGame),
	}
}

func (s *GameStore) AddGame(g *WhistGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g
}

func (s *GameStore) GetGame(id uuid.UUID) (*WhistGame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	return g, ok
}

func (s *GameStore) DeleteGame(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.games[id]; ok {
		g.Teardown()
		delete(s.games, id)
	}
}

// GetGameByPlayerID returns the game a player is seated in, or nil.
func (s *GameStore) GetGameByPlayerID(playerID uuid.UUID) *WhistGame {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.games {
		g.Mu.Lock()
		for _, p := range g.Players {
			if p.ID == playerID {
				g.Mu.Unlock()
				return g
			}
		}
		g.Mu.Unlock()
	}
	return nil
}
