package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Player is one seat at the table. Seat order is the order of the game's
// Players slice, fixed once the lobby closes.
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Hand      []Card    `json:"hand"`
	Call      *int      `json:"call"`
	TricksWon int       `json:"tricksWon"`
	Score     int       `json:"score"`
	IsDealer  bool      `json:"isDealer"`
	IsCPU     bool      `json:"isCPU"`
	Connected bool      `json:"connected"`

	Conn *websocket.Conn `json:"-"`

	// ZeroCallStreak counts consecutive completed rounds with a zero call,
	// used by the Keller consecutive-zero bid restriction.
	ZeroCallStreak int `json:"zeroCallStreak"`

	// Keller side-game results. HaloBank is points banked in the post-round-7
	// mini-game; BrucieMultiplier multiplies the round 13 score (0 = not
	// played yet, treated as 1).
	HaloBank         int `json:"haloBank"`
	BrucieMultiplier int `json:"brucieMultiplier"`
}

// EffectiveBrucieMultiplier normalizes the stored multiplier; players who never
// played the bonus round score at 1x.
func (p *Player) EffectiveBrucieMultiplier() int {
	if p.BrucieMultiplier <= 0 {
		return 1
	}
	return p.BrucieMultiplier
}

// HasCard reports whether the card is currently in the player's hand.
func (p *Player) HasCard(c Card) bool {
	for _, h := range p.Hand {
		if h == c {
			return true
		}
	}
	return false
}

// RemoveCard deletes the first occurrence of c from the hand, preserving order.
// Returns false if the card was not present.
func (p *Player) RemoveCard(c Card) bool {
	for i, h := range p.Hand {
		if h == c {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// HasSuit reports whether the player holds at least one card of the suit.
func (p *Player) HasSuit(s Suit) bool {
	for _, h := range p.Hand {
		if h.Suit == s {
			return true
		}
	}
	return false
}
