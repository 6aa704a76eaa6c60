package game

import (
	"github.com/bandage123/estimationwhist-sub000/internal/models"
)

// forbiddenDealerCall returns the single call value the dealer may not make:
// the value that would let every contract be met. Returns -1 when the seat is
// not the dealer (every value in range is legal).
//
// All non-dealer calls are in by the time the dealer calls, so the sum is
// complete.
func (g *WhistGame) forbiddenDealerCall(p *models.Player) int {
	if !p.IsDealer {
		return -1
	}
	total := 0
	for _, other := range g.Players {
		if other.ID == p.ID || other.Call == nil {
			continue
		}
		total += *other.Call
	}
	return g.CardCount - total
}

// validateCall applies the calling rules in order: range, turn, dealer
// restriction, then the Keller consecutive-zero restriction. It never mutates
// state. Assumes lock is held.
func (g *WhistGame) validateCall(p *models.Player, call int) error {
	if call < 0 || call > g.CardCount {
		return NewRuleError(ErrOutOfRange, "call %d outside [0, %d]", call, g.CardCount)
	}
	if g.Players[g.CurrentPlayerIndex].ID != p.ID {
		return NewRuleError(ErrNotYourTurn, "it is %s's turn to call", g.Players[g.CurrentPlayerIndex].Name)
	}
	if forbidden := g.forbiddenDealerCall(p); forbidden >= 0 && call == forbidden {
		return NewRuleError(ErrDealerRestriction, "dealer may not call %d: total calls cannot equal %d", call, g.CardCount)
	}
	// The zero-streak rule yields to the dealer restriction: when every
	// non-zero value is forbidden (a dealer on a one-card round), zero stays
	// legal so the seat is never left without a call.
	if g.Ruleset == RulesetKeller && call == 0 && p.ZeroCallStreak >= 2 && g.hasNonZeroLegalCall(p) {
		return NewRuleError(ErrConsecutiveZeroRestriction, "cannot call zero three rounds running")
	}
	return nil
}

func (g *WhistGame) hasNonZeroLegalCall(p *models.Player) bool {
	forbidden := g.forbiddenDealerCall(p)
	for v := 1; v <= g.CardCount; v++ {
		if v != forbidden {
			return true
		}
	}
	return false
}
