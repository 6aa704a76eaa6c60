package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandage123/estimationwhist-sub000/internal/models"
)

func TestChooseCallStaysInRange(t *testing.T) {
	trump := models.SuitSpades
	hand := []models.Card{
		card(models.SuitSpades, models.RankAce),
		card(models.SuitSpades, models.RankKing),
		card(models.SuitHearts, models.RankQueen),
		card(models.SuitClubs, 4),
		card(models.SuitDiamonds, 6),
		card(models.SuitHearts, 2),
		card(models.SuitClubs, 9),
	}
	for i := 0; i < 200; i++ {
		call := ChooseCall(hand, 7, &trump, -1)
		assert.GreaterOrEqual(t, call, 0)
		assert.LessOrEqual(t, call, 7)
	}
}

func TestChooseCallAvoidsForbiddenValue(t *testing.T) {
	trump := models.SuitSpades
	hand := []models.Card{card(models.SuitClubs, 3)}
	for forbidden := 0; forbidden <= 1; forbidden++ {
		for i := 0; i < 200; i++ {
			call := ChooseCall(hand, 1, &trump, forbidden)
			assert.NotEqual(t, forbidden, call)
			assert.GreaterOrEqual(t, call, 0)
			assert.LessOrEqual(t, call, 1)
		}
	}
}

func TestChooseCardLeading(t *testing.T) {
	trump := models.SuitSpades
	p := &models.Player{
		Hand: []models.Card{
			card(models.SuitHearts, models.RankAce),
			card(models.SuitSpades, 3),
			card(models.SuitClubs, 2),
		},
	}

	// Needing tricks: lead the strongest card, where any trump beats any
	// plain suit.
	p.Call = intPtr(2)
	p.TricksWon = 0
	got := ChooseCard(p, NewTrick(), &trump)
	assert.Equal(t, card(models.SuitSpades, 3), got)

	// Contract met: dump the weakest.
	p.TricksWon = 2
	got = ChooseCard(p, NewTrick(), &trump)
	assert.Equal(t, card(models.SuitClubs, 2), got)
}

func TestChooseCardFollowsSuit(t *testing.T) {
	trump := models.SuitSpades
	lead := models.SuitHearts
	trick := &Trick{
		Cards: []PlayedCard{
			{Card: card(models.SuitHearts, 10)},
		},
		LeadSuit: &lead,
	}
	p := &models.Player{
		Call: intPtr(0),
		Hand: []models.Card{
			card(models.SuitHearts, 4),
			card(models.SuitHearts, models.RankKing),
			card(models.SuitClubs, 2),
		},
	}

	got := ChooseCard(p, trick, &trump)
	assert.Equal(t, models.SuitHearts, got.Suit, "must follow suit when able")
	assert.Equal(t, 4, got.Rank, "contract met: weakest legal card")
}

func TestChooseCardTakesFirstWinnerWhenBehind(t *testing.T) {
	trump := models.SuitSpades
	lead := models.SuitHearts
	trick := &Trick{
		Cards: []PlayedCard{
			{Card: card(models.SuitHearts, 10)},
		},
		LeadSuit: &lead,
	}
	p := &models.Player{
		Call:      intPtr(1),
		TricksWon: 0,
		// Hand order matters: the scan stops at the first card that wins,
		// not the cheapest one.
		Hand: []models.Card{
			card(models.SuitHearts, 4),
			card(models.SuitHearts, models.RankAce),
			card(models.SuitHearts, models.RankJack),
		},
	}

	got := ChooseCard(p, trick, &trump)
	assert.Equal(t, card(models.SuitHearts, models.RankAce), got)
}

func TestChooseCardDiscardsLowestOffSuit(t *testing.T) {
	lead := models.SuitHearts
	trick := &Trick{
		Cards:    []PlayedCard{{Card: card(models.SuitHearts, 10)}},
		LeadSuit: &lead,
	}
	p := &models.Player{
		Call: intPtr(0),
		Hand: []models.Card{
			card(models.SuitClubs, models.RankKing),
			card(models.SuitDiamonds, 3),
		},
	}

	got := ChooseCard(p, trick, nil)
	assert.Equal(t, card(models.SuitDiamonds, 3), got)
}

func TestChooseSideGameMove(t *testing.T) {
	assert.Equal(t, SideGameMoveBank, ChooseSideGameMove(card(models.SuitClubs, 5), 2, 2))
	assert.Equal(t, SideGameGuessHigher, ChooseSideGameMove(card(models.SuitClubs, 5), 0, 2))
	assert.Equal(t, SideGameGuessLower, ChooseSideGameMove(card(models.SuitClubs, models.RankKing), 1, 2))
}

func TestNearestLegalCallRespectsKellerStreak(t *testing.T) {
	g := newCallingGame(t, RulesetKeller, 3, 7, 0)
	p := g.Players[1]
	p.ZeroCallStreak = 2

	g.Mu.Lock()
	got := g.nearestLegalCallLocked(p, 0)
	g.Mu.Unlock()
	require.Equal(t, 1, got)
}

func TestNearestLegalCallWhenOnlyZeroRemains(t *testing.T) {
	// Dealer on a one-card round with a full zero streak: 1 is banned by the
	// dealer restriction and the streak rule yields, leaving 0 legal.
	g := newCallingGame(t, RulesetKeller, 2, 1, 0)
	g.Players[0].ZeroCallStreak = 2
	require.NoError(t, g.MakeCall(g.Players[1].ID, 0))

	g.Mu.Lock()
	got := g.nearestLegalCallLocked(g.Players[0], 1)
	g.Mu.Unlock()
	assert.Equal(t, 0, got)
}
