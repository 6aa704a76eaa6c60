package game

import "github.com/bandage123/estimationwhist-sub000/internal/models"

// RoundConfig describes one of the 13 rounds. These values are published game
// rules; they are a fixed table, never derived at runtime.
type RoundConfig struct {
	RoundNumber  int          `json:"roundNumber"`
	CardCount    int          `json:"cardCount"`
	Trump        *models.Suit `json:"trump"`
	DoublePoints bool         `json:"doublePoints"`
}

func suitPtr(s models.Suit) *models.Suit { return &s }

// roundTable is 1-indexed via RoundNumber; card counts run 7..1..7 and trump
// rotates clubs, diamonds, hearts, spades, no-trump.
var roundTable = []RoundConfig{
	{RoundNumber: 1, CardCount: 7, Trump: suitPtr(models.SuitClubs)},
	{RoundNumber: 2, CardCount: 6, Trump: suitPtr(models.SuitDiamonds)},
	{RoundNumber: 3, CardCount: 5, Trump: suitPtr(models.SuitHearts)},
	{RoundNumber: 4, CardCount: 4, Trump: suitPtr(models.SuitSpades)},
	{RoundNumber: 5, CardCount: 3, Trump: nil},
	{RoundNumber: 6, CardCount: 2, Trump: suitPtr(models.SuitClubs)},
	{RoundNumber: 7, CardCount: 1, Trump: suitPtr(models.SuitDiamonds)},
	{RoundNumber: 8, CardCount: 2, Trump: suitPtr(models.SuitHearts)},
	{RoundNumber: 9, CardCount: 3, Trump: suitPtr(models.SuitSpades)},
	{RoundNumber: 10, CardCount: 4, Trump: nil},
	{RoundNumber: 11, CardCount: 5, Trump: suitPtr(models.SuitClubs)},
	{RoundNumber: 12, CardCount: 6, Trump: suitPtr(models.SuitDiamonds)},
	{RoundNumber: 13, CardCount: 7, Trump: suitPtr(models.SuitHearts), DoublePoints: true},
}

// FinalRound is the last round of a game.
const FinalRound = 13

// ConfigFor returns the static configuration for roundNumber in [1, 13].
func ConfigFor(roundNumber int) (RoundConfig, error) {
	if roundNumber < 1 || roundNumber > FinalRound {
		return RoundConfig{}, NewRuleError(ErrOutOfRange, "round %d outside [1, %d]", roundNumber, FinalRound)
	}
	return roundTable[roundNumber-1], nil
}
