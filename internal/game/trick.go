package game

import (
	"github.com/bandage123/estimationwhist-sub000/internal/models"
	"github.com/google/uuid"
)

// PlayedCard is one card inside a trick, tagged with the seat that played it.
type PlayedCard struct {
	PlayerID uuid.UUID   `json:"playerId"`
	Card     models.Card `json:"card"`
}

// Trick is the cards played in one round of the table, in play order.
// LeadSuit is set by the first card; WinnerID only once every seat has played.
type Trick struct {
	Cards    []PlayedCard `json:"cards"`
	LeadSuit *models.Suit `json:"leadSuit"`
	WinnerID *uuid.UUID   `json:"winnerId"`
}

// NewTrick returns an empty trick.
func NewTrick() *Trick {
	return &Trick{Cards: []PlayedCard{}}
}

// TrickValue scores a card within a trick: trump beats everything
// (100 + rank), lead-suit cards rank on their face value, off-suit cards
// cannot win.
func TrickValue(c models.Card, leadSuit models.Suit, trump *models.Suit) int {
	if trump != nil && c.Suit == *trump {
		return 100 + c.Rank
	}
	if c.Suit == leadSuit {
		return c.Rank
	}
	return 0
}

// ResolveTrick returns the seat that wins the trick. Duplicate winning values
// are impossible with a legal deal; encountering one means the caller fed the
// resolver malformed input, which is reported as an internal defect rather
// than silently picking a winner.
func ResolveTrick(cards []PlayedCard, leadSuit models.Suit, trump *models.Suit) (uuid.UUID, error) {
	if len(cards) == 0 {
		return uuid.Nil, NewRuleError(ErrInternal, "cannot resolve an empty trick")
	}
	if cards[0].Card.Suit != leadSuit {
		return uuid.Nil, NewRuleError(ErrInternal, "lead suit %s does not match first card %s", leadSuit, cards[0].Card)
	}

	bestIdx := 0
	bestValue := TrickValue(cards[0].Card, leadSuit, trump)
	for i := 1; i < len(cards); i++ {
		v := TrickValue(cards[i].Card, leadSuit, trump)
		if v == bestValue && v > 0 {
			return uuid.Nil, NewRuleError(ErrInternal, "duplicate trick value %d for %s and %s", v, cards[bestIdx].Card, cards[i].Card)
		}
		if v > bestValue {
			bestIdx = i
			bestValue = v
		}
	}
	return cards[bestIdx].PlayerID, nil
}
