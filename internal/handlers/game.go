package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bandage123/estimationwhist-sub000/internal/auth"
	"github.com/bandage123/estimationwhist-sub000/internal/database"
	"github.com/bandage123/estimationwhist-sub000/internal/game"
	"github.com/bandage123/estimationwhist-sub000/internal/models"
)

// authPlayerID extracts and verifies the player token from the Authorization
// header (Bearer) or a token query parameter.
func authPlayerID(r *http.Request) (uuid.UUID, error) {
	token := r.URL.Query().Get("token")
	if h := r.Header.Get("Authorization"); h != "" {
		token = strings.TrimPrefix(h, "Bearer ")
	}
	if token == "" {
		return uuid.Nil, fmt.Errorf("missing token")
	}
	sub, err := auth.AuthenticatePlayerToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(sub)
}

type seatResponse struct {
	GameID   uuid.UUID `json:"gameId"`
	PlayerID uuid.UUID `json:"playerId"`
	Name     string    `json:"name"`
	Token    string    `json:"token"`
}

// CreateGameHandler creates a lobby, seats the requesting player as host, and
// optionally fills CPU seats.
func (s *GameServer) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Ruleset    string `json:"ruleset"`
		CPUPlayers int    `json:"cpuPlayers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	g := game.NewWhistGame(req.Ruleset)
	s.attachGame(g)

	host, err := g.AddPlayer(req.Name, false)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	for i := 0; i < req.CPUPlayers && i < game.MaxPlayers-1; i++ {
		if _, err := g.AddPlayer(fmt.Sprintf("CPU %d", i+1), true); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	token, err := auth.CreatePlayerToken(host.ID.String())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	s.GameStore.AddGame(g)
	s.Logger.WithField("game_id", g.ID).Infof("game created by %s (%s)", req.Name, g.Ruleset)
	writeJSON(w, http.StatusOK, seatResponse{GameID: g.ID, PlayerID: host.ID, Name: host.Name, Token: token})
}

// JoinGameHandler seats a new human player in an existing lobby.
func (s *GameServer) JoinGameHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameID uuid.UUID `json:"gameId"`
		Name   string    `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "gameId and name are required")
		return
	}
	g, ok := s.GameStore.GetGame(req.GameID)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "game not found")
		return
	}
	p, err := g.AddPlayer(req.Name, false)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := auth.CreatePlayerToken(p.ID.String())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	writeJSON(w, http.StatusOK, seatResponse{GameID: g.ID, PlayerID: p.ID, Name: p.Name, Token: token})
}

// AddCPUHandler adds a CPU seat to a lobby. Host only.
func (s *GameServer) AddCPUHandler(w http.ResponseWriter, r *http.Request) {
	requesterID, err := authPlayerID(r)
	if err != nil {
		writeJSONError(w, http.StatusForbidden, "authentication failed")
		return
	}
	var req struct {
		GameID uuid.UUID `json:"gameId"`
		Name   string    `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	g, ok := s.GameStore.GetGame(req.GameID)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "game not found")
		return
	}
	if requesterID != g.HostID {
		writeJSONError(w, http.StatusForbidden, "only the host can add CPU players")
		return
	}
	name := req.Name
	if name == "" {
		name = fmt.Sprintf("CPU %d", len(g.Players))
	}
	p, err := g.AddPlayer(name, true)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"playerId": p.ID, "name": p.Name})
}

// SaveGameHandler serializes the requester's game to the database.
func (s *GameServer) SaveGameHandler(w http.ResponseWriter, r *http.Request) {
	requesterID, err := authPlayerID(r)
	if err != nil {
		writeJSONError(w, http.StatusForbidden, "authentication failed")
		return
	}
	g := s.GameStore.GetGameByPlayerID(requesterID)
	if g == nil {
		writeJSONError(w, http.StatusNotFound, "no game for player")
		return
	}

	snap := g.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to serialize game")
		return
	}
	meta := models.SaveMetadata{
		GameID:  snap.ID,
		Format:  snap.Ruleset,
		Round:   snap.CurrentRound,
		SavedAt: time.Now().UTC(),
	}
	for _, p := range snap.Players {
		if p.ID == requesterID {
			meta.PlayerName = p.Name
			meta.Score = p.Score
		}
	}
	if err := database.SaveGame(r.Context(), meta, data); err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.Logger.WithField("game_id", snap.ID).Info("game saved")
	writeJSON(w, http.StatusOK, meta)
}

// ListSavesHandler lists saved games, optionally filtered by player name.
func (s *GameServer) ListSavesHandler(w http.ResponseWriter, r *http.Request) {
	saves, err := database.ListSaves(r.Context(), r.URL.Query().Get("player"))
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saves)
}

// LoadGameHandler restores a saved game into the live registry and issues
// fresh seat tokens for its human players.
func (s *GameServer) LoadGameHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameID uuid.UUID `json:"gameId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, ok := s.GameStore.GetGame(req.GameID); ok {
		writeJSONError(w, http.StatusConflict, "game is already live")
		return
	}

	data, err := database.LoadGame(r.Context(), req.GameID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "corrupt save data")
		return
	}

	g := game.RestoreGame(snap)
	s.attachGame(g)
	s.GameStore.AddGame(g)
	g.Resume()

	var seats []seatResponse
	for _, p := range g.Players {
		if p.IsCPU {
			continue
		}
		token, err := auth.CreatePlayerToken(p.ID.String())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to create token")
			return
		}
		seats = append(seats, seatResponse{GameID: g.ID, PlayerID: p.ID, Name: p.Name, Token: token})
	}
	s.Logger.WithField("game_id", g.ID).Infof("game restored at round %d", snap.CurrentRound)
	writeJSON(w, http.StatusOK, map[string]interface{}{"gameId": g.ID, "seats": seats})
}

// HighScoresHandler returns the leaderboard for one category.
func (s *GameServer) HighScoresHandler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		writeJSONError(w, http.StatusBadRequest, "category is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	scores, err := database.TopScores(r.Context(), category, limit)
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scores)
}
