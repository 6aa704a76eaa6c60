package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandage123/estimationwhist-sub000/internal/models"
)

func TestSnapshotRoundTrip(t *testing.T) {
	g := newCallingGame(t, RulesetKeller, 3, 5, 1)
	g.CurrentRound = 3
	trump := models.SuitHearts
	g.Trump = &trump
	g.Players[0].Hand = []models.Card{card(models.SuitClubs, 5)}
	g.Players[0].Score = 42
	g.Players[0].Connected = true
	g.Players[2].ZeroCallStreak = 2
	g.Players[2].HaloBank = 4

	snap := g.Snapshot()

	// Snapshots must survive serialization; that is how they are persisted.
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored := RestoreGame(decoded)
	assert.Equal(t, g.ID, restored.ID)
	assert.Equal(t, RulesetKeller, restored.Ruleset)
	assert.Equal(t, g.HostID, restored.HostID)
	assert.Equal(t, PhaseCalling, restored.Phase)
	assert.Equal(t, 3, restored.CurrentRound)
	assert.Equal(t, 5, restored.CardCount)
	assert.Equal(t, 1, restored.DealerIndex)
	require.NotNil(t, restored.Trump)
	assert.Equal(t, models.SuitHearts, *restored.Trump)

	require.Len(t, restored.Players, 3)
	assert.Equal(t, []models.Card{card(models.SuitClubs, 5)}, restored.Players[0].Hand)
	assert.Equal(t, 42, restored.Players[0].Score)
	assert.Equal(t, 2, restored.Players[2].ZeroCallStreak)
	assert.Equal(t, 4, restored.Players[2].HaloBank)

	// Humans come back disconnected until their sockets reattach.
	for _, p := range restored.Players {
		assert.False(t, p.Connected)
		assert.Nil(t, p.Conn)
	}
}

func TestSnapshotCopiesAreIndependent(t *testing.T) {
	g := newCallingGame(t, RulesetStandard, 2, 7, 0)
	g.Players[0].Hand = []models.Card{card(models.SuitClubs, 5)}

	snap := g.Snapshot()
	g.Players[0].Hand[0] = card(models.SuitSpades, models.RankAce)
	g.Players[0].Score = 99

	assert.Equal(t, card(models.SuitClubs, 5), snap.Players[0].Hand[0])
	assert.Zero(t, snap.Players[0].Score)
}

func TestResumeRestartsDealerDetermination(t *testing.T) {
	t.Setenv("GAME_SPEED", "0.25")
	snap := Snapshot{
		ID:      uuid.New(),
		Ruleset: RulesetStandard,
		Phase:   PhaseDeterminingDealer,
		Players: []*models.Player{
			{ID: uuid.New(), Name: "Alice"},
			{ID: uuid.New(), Name: "Bob"},
		},
	}

	restored := RestoreGame(snap)
	defer restored.Teardown()
	restored.Resume()

	// Dealer determination has no client-driven action, so the restore must
	// re-arm it; ties can re-deal, hence the generous deadline.
	waitFor(t, restored, 10*time.Second, func() bool {
		return restored.Phase == PhaseCalling
	}, "restored game to settle a dealer and open round one")

	restored.Mu.Lock()
	defer restored.Mu.Unlock()
	assert.Equal(t, 1, restored.CurrentRound)
	for _, p := range restored.Players {
		assert.Len(t, p.Hand, 7)
	}
}

func TestResumeReArmsTrickResolution(t *testing.T) {
	// Slow pacing down so the snapshot lands before the resolve timer fires.
	t.Setenv("GAME_SPEED", "2")
	g := newCallingGame(t, RulesetStandard, 2, 1, 0)
	defer g.Teardown()
	g.Phase = PhasePlaying
	g.CardCount = 1
	g.CurrentPlayerIndex = 1
	g.Players[0].Hand = []models.Card{card(models.SuitHearts, models.RankAce)}
	g.Players[1].Hand = []models.Card{card(models.SuitHearts, 4)}
	g.Players[0].Call = intPtr(1)
	g.Players[1].Call = intPtr(0)

	require.NoError(t, g.PlayCard(g.Players[1].ID, card(models.SuitHearts, 4)))
	require.NoError(t, g.PlayCard(g.Players[0].ID, card(models.SuitHearts, models.RankAce)))

	// Save mid-resolution, before the pacing timer fires.
	snap := g.Snapshot()
	require.True(t, snap.Resolving)
	g.Teardown()

	t.Setenv("GAME_SPEED", "0.25")
	restored := RestoreGame(snap)
	defer restored.Teardown()
	restored.Resume()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		restored.Mu.Lock()
		done := restored.Phase == PhaseRoundEnd
		restored.Mu.Unlock()
		if done {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("restored game never resolved its pending trick")
}
