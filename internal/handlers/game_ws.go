package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bandage123/estimationwhist-sub000/internal/game"
	"github.com/bandage123/estimationwhist-sub000/internal/models"
)

// GameWSHandler upgrades /game/ws/{game_id}?token=... to a websocket and runs
// the intent loop for one seated player. The same endpoint serves first
// connections and reconnections; the seat is identified by the token, so a
// returning player lands back on their hand and pending turn.
func (s *GameServer) GameWSHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/game/ws/"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	g, ok := s.GameStore.GetGame(gameID)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "game not found")
		return
	}

	playerID, err := authPlayerID(r)
	if err != nil {
		writeJSONError(w, http.StatusForbidden, "authentication failed")
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: []string{"game"},
	})
	if err != nil {
		s.Logger.Warnf("websocket accept failed: %v", err)
		return
	}
	defer c.CloseNow()

	if c.Subprotocol() != "game" {
		c.Close(websocket.StatusPolicyViolation, "client must speak the game subprotocol")
		return
	}

	if err := g.Connect(playerID, c); err != nil {
		sendWsError(c, string(game.CodeOf(err)), err.Error())
		c.Close(websocket.StatusPolicyViolation, "not seated in this game")
		return
	}
	s.Logger.WithField("game_id", g.ID).Infof("player %s connected", playerID)

	limiter := rate.NewLimiter(rate.Every(100*time.Millisecond), 10)
	for {
		if err := s.readIntent(r.Context(), c, g, playerID, limiter); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				s.Logger.WithField("game_id", g.ID).Debugf("read loop ended: %v", err)
			}
			g.HandleDisconnect(playerID, c)
			return
		}
	}
}

// readIntent reads one client frame and applies it to the engine. Engine
// rejections are reported back to this client only; a returned error ends the
// connection.
func (s *GameServer) readIntent(ctx context.Context, c *websocket.Conn, g *game.WhistGame, playerID uuid.UUID, limiter *rate.Limiter) error {
	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	var action models.GameAction
	if err := wsjson.Read(ctx, c, &action); err != nil {
		return err
	}

	var opErr error
	switch action.ActionType {
	case "ping":
		return sendWsMessage(c, wsMessage{Type: "pong"})
	case "request_state":
		view, err := g.ViewFor(playerID)
		if err != nil {
			opErr = err
			break
		}
		return sendWsMessage(c, wsMessage{Type: "state", Data: view})
	case "start_game":
		opErr = g.StartGame(playerID)
	case "make_call":
		call, ok := payloadInt(action.Payload, "call")
		if !ok {
			opErr = game.NewRuleError(game.ErrOutOfRange, "call must be a number")
			break
		}
		opErr = g.MakeCall(playerID, call)
	case "play_card":
		card, ok := payloadCard(action.Payload)
		if !ok {
			opErr = game.NewRuleError(game.ErrCardNotInHand, "card payload must have suit and rank")
			break
		}
		opErr = g.PlayCard(playerID, card)
	case "next_round":
		opErr = g.AdvanceRound(playerID)
	case "sidegame_guess":
		direction, _ := action.Payload["direction"].(string)
		opErr = g.SideGameGuess(playerID, direction)
	case "sidegame_bank":
		opErr = g.SideGameBank(playerID)
	case "sidegame_skip":
		opErr = g.SideGameSkip(playerID)
	case "sidegame_continue":
		opErr = g.SideGameAcknowledge(playerID)
	case "leave":
		empty, err := g.RemovePlayer(playerID)
		if err != nil {
			opErr = err
			break
		}
		if empty {
			s.GameStore.DeleteGame(g.ID)
		}
		return errors.New("player left")
	default:
		opErr = game.NewRuleError(game.ErrInvalidTransition, "unknown action %q", action.ActionType)
	}

	if opErr != nil {
		sendWsError(c, string(game.CodeOf(opErr)), opErr.Error())
	}
	return nil
}

func payloadInt(payload map[string]interface{}, key string) (int, bool) {
	f, ok := payload[key].(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func payloadCard(payload map[string]interface{}) (models.Card, bool) {
	raw, ok := payload["card"].(map[string]interface{})
	if !ok {
		return models.Card{}, false
	}
	suit, ok := raw["suit"].(string)
	if !ok {
		return models.Card{}, false
	}
	rank, ok := raw["rank"].(float64)
	if !ok {
		return models.Card{}, false
	}
	return models.Card{Suit: models.Suit(suit), Rank: int(rank)}, true
}
