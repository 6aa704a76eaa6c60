package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandage123/estimationwhist-sub000/internal/models"
)

// The transport marshals views on goroutines after the game lock is released,
// so a view must never alias mutable game state.
func TestViewsDoNotAliasLiveState(t *testing.T) {
	g := newCallingGame(t, RulesetStandard, 2, 2, 0)
	g.Phase = PhasePlaying
	g.CurrentPlayerIndex = 1
	g.Players[0].Hand = []models.Card{
		{Suit: models.SuitClubs, Rank: 5},
		{Suit: models.SuitHearts, Rank: 9},
	}
	g.Players[1].Hand = []models.Card{
		{Suit: models.SuitClubs, Rank: 7},
		{Suit: models.SuitHearts, Rank: 3},
	}
	g.Players[0].Call = intPtr(1)
	g.Players[1].Call = intPtr(0)

	var captured PlayerView
	g.BroadcastFn = func(views map[uuid.UUID]PlayerView) {
		captured = views[g.Players[0].ID]
	}
	require.NoError(t, g.PlayCard(g.Players[1].ID, models.Card{Suit: models.SuitClubs, Rank: 7}))

	// Mutate the live state the way the next play and the resolver would.
	g.Mu.Lock()
	g.CurrentTrick.Cards = append(g.CurrentTrick.Cards, PlayedCard{
		PlayerID: g.Players[0].ID,
		Card:     models.Card{Suit: models.SuitClubs, Rank: 5},
	})
	winner := g.Players[1].ID
	g.CurrentTrick.WinnerID = &winner
	lead := models.SuitHearts
	g.CurrentTrick.LeadSuit = &lead
	g.RoundHistory = append(g.RoundHistory, RoundResult{RoundNumber: 1})
	g.Mu.Unlock()

	require.NotNil(t, captured.CurrentTrick)
	assert.Len(t, captured.CurrentTrick.Cards, 1)
	assert.Nil(t, captured.CurrentTrick.WinnerID)
	require.NotNil(t, captured.CurrentTrick.LeadSuit)
	assert.Equal(t, models.SuitClubs, *captured.CurrentTrick.LeadSuit)
	assert.Empty(t, captured.RoundHistory)
}

func TestLastTrickInViewIsDetached(t *testing.T) {
	g := newCallingGame(t, RulesetStandard, 2, 2, 0)
	winner := g.Players[0].ID
	lead := models.SuitClubs
	g.LastTrick = &Trick{
		Cards: []PlayedCard{
			{PlayerID: g.Players[0].ID, Card: models.Card{Suit: models.SuitClubs, Rank: 9}},
			{PlayerID: g.Players[1].ID, Card: models.Card{Suit: models.SuitClubs, Rank: 4}},
		},
		LeadSuit: &lead,
		WinnerID: &winner,
	}

	view, err := g.ViewFor(g.Players[0].ID)
	require.NoError(t, err)

	g.Mu.Lock()
	g.LastTrick.Cards[0].Card = models.Card{Suit: models.SuitSpades, Rank: 2}
	*g.LastTrick.WinnerID = g.Players[1].ID
	g.Mu.Unlock()

	require.NotNil(t, view.LastTrick)
	assert.Equal(t, models.Card{Suit: models.SuitClubs, Rank: 9}, view.LastTrick.Cards[0].Card)
	assert.Equal(t, g.Players[0].ID, *view.LastTrick.WinnerID)
}
