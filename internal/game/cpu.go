package game

import (
	"math/rand"

	"github.com/bandage123/estimationwhist-sub000/internal/models"
)

// CPU heuristics for bid and card selection. These are deliberately simple
// estimates, not optimal play.

// cardStrength weighs a card for leading: trump always outranks plain suits.
func cardStrength(c models.Card, trump *models.Suit) int {
	if trump != nil && c.Suit == *trump {
		return 100 + c.Rank
	}
	return c.Rank
}

// ChooseCall estimates a bid from hand strength: 0.7 per face card or ace,
// 0.5 per trump, with uniform noise in [-0.5, 0.5], rounded and clamped to
// [0, cardCount]. forbidden is the dealer-restricted value (-1 when the seat
// is not the dealer); the result is nudged off it, falling back to whichever
// of 0 or cardCount-1 sits nearer the raw estimate.
func ChooseCall(hand []models.Card, cardCount int, trump *models.Suit, forbidden int) int {
	expected := 0.0
	for _, c := range hand {
		if c.Rank >= models.RankJack {
			expected += 0.7
		}
		if trump != nil && c.Suit == *trump {
			expected += 0.5
		}
	}
	expected += rand.Float64() - 0.5

	call := int(expected + 0.5)
	if expected < 0 {
		call = 0
	}
	call = clampCall(call, cardCount)

	if call == forbidden {
		if call == 0 {
			call++
		} else {
			call--
		}
		call = clampCall(call, cardCount)
	}
	if call == forbidden {
		lo, hi := 0, cardCount-1
		if hi < 0 {
			hi = 0
		}
		if lo != forbidden && (hi == forbidden || nearer(expected, lo, hi)) {
			call = lo
		} else {
			call = hi
		}
	}
	return call
}

func clampCall(call, cardCount int) int {
	if call < 0 {
		return 0
	}
	if call > cardCount {
		return cardCount
	}
	return call
}

func nearer(target float64, a, b int) bool {
	da := target - float64(a)
	if da < 0 {
		da = -da
	}
	db := target - float64(b)
	if db < 0 {
		db = -db
	}
	return da <= db
}

// legalPlays filters the hand to the lead suit when the player can follow,
// otherwise the whole hand is legal.
func legalPlays(hand []models.Card, leadSuit *models.Suit) []models.Card {
	if leadSuit == nil {
		return hand
	}
	var follow []models.Card
	for _, c := range hand {
		if c.Suit == *leadSuit {
			follow = append(follow, c)
		}
	}
	if len(follow) == 0 {
		return hand
	}
	return follow
}

// ChooseCard picks the CPU's play for the current trick.
//
// Leading: strongest card while the contract still needs tricks, weakest
// otherwise. Following while needing tricks: the first legal card found that
// beats the best value in play — intentionally the first match of the scan,
// not the cheapest winner, to match the established CPU behavior. Otherwise
// the weakest legal card.
func ChooseCard(p *models.Player, trick *Trick, trump *models.Suit) models.Card {
	needsTricks := p.Call != nil && *p.Call-p.TricksWon > 0

	if len(trick.Cards) == 0 {
		if needsTricks {
			return strongestCard(p.Hand, trump)
		}
		return weakestCard(p.Hand, trump)
	}

	leadSuit := *trick.LeadSuit
	legal := legalPlays(p.Hand, trick.LeadSuit)

	if needsTricks {
		best := 0
		for _, pc := range trick.Cards {
			if v := TrickValue(pc.Card, leadSuit, trump); v > best {
				best = v
			}
		}
		for _, c := range legal {
			if TrickValue(c, leadSuit, trump) > best {
				return c
			}
		}
	}

	// Weakest legal card, judged by trick value with rank as tiebreak so
	// off-suit discards shed the lowest card first.
	low := legal[0]
	lowVal := TrickValue(low, leadSuit, trump)
	for _, c := range legal[1:] {
		v := TrickValue(c, leadSuit, trump)
		if v < lowVal || (v == lowVal && c.Rank < low.Rank) {
			low, lowVal = c, v
		}
	}
	return low
}

func strongestCard(hand []models.Card, trump *models.Suit) models.Card {
	best := hand[0]
	for _, c := range hand[1:] {
		if cardStrength(c, trump) > cardStrength(best, trump) {
			best = c
		}
	}
	return best
}

func weakestCard(hand []models.Card, trump *models.Suit) models.Card {
	worst := hand[0]
	for _, c := range hand[1:] {
		if cardStrength(c, trump) < cardStrength(worst, trump) {
			worst = c
		}
	}
	return worst
}

// ChooseSideGameMove returns the CPU's move in a side game given the card
// currently face up and the streak so far: bank once the streak is worth
// keeping, otherwise call higher on low cards and lower on high ones.
func ChooseSideGameMove(faceUp models.Card, streak, bankAt int) string {
	if streak >= bankAt {
		return SideGameMoveBank
	}
	if faceUp.Rank <= 8 {
		return SideGameGuessHigher
	}
	return SideGameGuessLower
}
