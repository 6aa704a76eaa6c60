package game

import (
	"github.com/google/uuid"
)

// PlayerRoundResult is one player's line in a completed round.
type PlayerRoundResult struct {
	PlayerID   uuid.UUID `json:"playerId"`
	Call       int       `json:"call"`
	TricksWon  int       `json:"tricksWon"`
	RoundScore int       `json:"roundScore"`
}

// RoundResult is the append-only history entry for a completed round.
type RoundResult struct {
	RoundNumber   int                 `json:"roundNumber"`
	PlayerResults []PlayerRoundResult `json:"playerResults"`
}

// ScoreRound converts a call/tricks pair into the round score.
//
// Hitting the contract exactly scores 10 + tricks. Winning more than called
// scores only the tricks, with no base bonus. Missing the contract scores
// nothing. doublePoints doubles the result, and brucieMultiplier (round 13 of
// the Keller ruleset only) stacks multiplicatively on top.
func ScoreRound(call, tricksWon int, doublePoints bool, brucieMultiplier int) int {
	var score int
	switch {
	case tricksWon == call:
		score = 10 + tricksWon
	case tricksWon > call:
		score = tricksWon
	default:
		score = 0
	}
	if doublePoints {
		score *= 2
	}
	if brucieMultiplier > 1 {
		score *= brucieMultiplier
	}
	return score
}
