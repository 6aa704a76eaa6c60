package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandage123/estimationwhist-sub000/internal/auth"
	"github.com/bandage123/estimationwhist-sub000/internal/game"
)

func TestMain(m *testing.M) {
	auth.Init()
	os.Exit(m.Run())
}

func newTestServer() *GameServer {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewGameServer(logger)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func createGame(t *testing.T, gs *GameServer, name, ruleset string, cpus int) seatResponse {
	t.Helper()
	w := postJSON(t, gs.CreateGameHandler, map[string]interface{}{
		"name": name, "ruleset": ruleset, "cpuPlayers": cpus,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var seat seatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &seat))
	return seat
}

func TestCreateGameHandler(t *testing.T) {
	gs := newTestServer()
	seat := createGame(t, gs, "Alice", "keller", 2)

	assert.NotEqual(t, uuid.Nil, seat.GameID)
	assert.NotEmpty(t, seat.Token)

	g, ok := gs.GameStore.GetGame(seat.GameID)
	require.True(t, ok)
	assert.Equal(t, game.RulesetKeller, g.Ruleset)
	assert.Len(t, g.Players, 3)
	assert.Equal(t, seat.PlayerID, g.HostID)

	// The token authenticates as the host.
	sub, err := auth.AuthenticatePlayerToken(seat.Token)
	require.NoError(t, err)
	assert.Equal(t, seat.PlayerID.String(), sub)
}

func TestCreateGameRequiresName(t *testing.T) {
	gs := newTestServer()
	w := postJSON(t, gs.CreateGameHandler, map[string]interface{}{"ruleset": "standard"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJoinGameHandler(t *testing.T) {
	gs := newTestServer()
	seat := createGame(t, gs, "Alice", "standard", 0)

	w := postJSON(t, gs.JoinGameHandler, map[string]interface{}{
		"gameId": seat.GameID, "name": "Bob",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Duplicate names are rejected per game.
	w = postJSON(t, gs.JoinGameHandler, map[string]interface{}{
		"gameId": seat.GameID, "name": "alice",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, gs.JoinGameHandler, map[string]interface{}{
		"gameId": uuid.New(), "name": "Carol",
	}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddCPUHandlerHostOnly(t *testing.T) {
	gs := newTestServer()
	seat := createGame(t, gs, "Alice", "standard", 0)

	w := postJSON(t, gs.JoinGameHandler, map[string]interface{}{
		"gameId": seat.GameID, "name": "Bob",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var bob seatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bob))

	w = postJSON(t, gs.AddCPUHandler, map[string]interface{}{"gameId": seat.GameID}, bob.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(t, gs.AddCPUHandler, map[string]interface{}{"gameId": seat.GameID}, seat.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	g, _ := gs.GameStore.GetGame(seat.GameID)
	assert.Len(t, g.Players, 3)
}

func TestSaveGameHandlerWithoutDatabase(t *testing.T) {
	gs := newTestServer()
	seat := createGame(t, gs, "Alice", "standard", 0)

	w := postJSON(t, gs.SaveGameHandler, nil, seat.Token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = postJSON(t, gs.SaveGameHandler, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHighScoresHandlerRequiresCategory(t *testing.T) {
	gs := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/game/highscores", nil)
	w := httptest.NewRecorder()
	gs.HighScoresHandler(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// readUntil reads frames until one of the wanted type arrives.
func readUntil(ctx context.Context, t *testing.T, c *websocket.Conn, wantType string) wsMessage {
	t.Helper()
	for {
		var msg wsMessage
		require.NoError(t, wsjson.Read(ctx, c, &msg))
		if msg.Type == wantType {
			return msg
		}
	}
}

func TestGameWSHandler(t *testing.T) {
	gs := newTestServer()
	seat := createGame(t, gs, "Alice", "standard", 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/game/ws/", gs.GameWSHandler)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	url := srv.URL + "/game/ws/" + seat.GameID.String() + "?token=" + seat.Token
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		Subprotocols: []string{"game"},
	})
	require.NoError(t, err)
	defer c.CloseNow()

	// Connecting triggers a broadcast of the lobby state.
	msg := readUntil(ctx, t, c, "state")
	assert.NotNil(t, msg.Data)

	require.NoError(t, wsjson.Write(ctx, c, map[string]interface{}{"type": "ping"}))
	readUntil(ctx, t, c, "pong")

	require.NoError(t, wsjson.Write(ctx, c, map[string]interface{}{"type": "request_state"}))
	readUntil(ctx, t, c, "state")

	// Rule rejections come back to this client only, tagged with a code.
	require.NoError(t, wsjson.Write(ctx, c, map[string]interface{}{
		"type": "make_call", "payload": map[string]interface{}{"call": 3},
	}))
	errMsg := readUntil(ctx, t, c, "error")
	assert.Equal(t, string(game.ErrInvalidTransition), errMsg.Code)

	require.NoError(t, wsjson.Write(ctx, c, map[string]interface{}{"type": "bogus"}))
	errMsg = readUntil(ctx, t, c, "error")
	assert.Equal(t, string(game.ErrInvalidTransition), errMsg.Code)
}

func TestGameWSHandlerRejectsBadGame(t *testing.T) {
	gs := newTestServer()
	seat := createGame(t, gs, "Alice", "standard", 0)

	mux := http.NewServeMux()
	mux.HandleFunc("/game/ws/", gs.GameWSHandler)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, srv.URL+"/game/ws/"+uuid.New().String()+"?token="+seat.Token, &websocket.DialOptions{
		Subprotocols: []string{"game"},
	})
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
}
