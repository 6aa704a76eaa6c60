package game

import (
	"sort"

	"github.com/bandage123/estimationwhist-sub000/internal/models"
	"github.com/google/uuid"
)

// SideGameKind identifies which Keller mini-game is in progress.
type SideGameKind string

const (
	SideGameHalo   SideGameKind = "halo_minigame"
	SideGameBrucie SideGameKind = "brucie_bonus"
)

// Side game moves and guess directions.
const (
	SideGameGuessHigher = "higher"
	SideGameGuessLower  = "lower"
	SideGameGuessSame   = "same"
	SideGameMoveBank    = "bank"
	SideGameMoveSkip    = "skip"
)

// Outcomes shown on the acknowledge screen between reveals.
const (
	OutcomeCorrect = "correct"
	OutcomeBust    = "bust"
	OutcomeBanked  = "banked"
	OutcomeSkipped = "skipped"
)

const (
	haloStreakCap   = 7
	haloSkipValue   = 2
	haloBustValue   = 1
	brucieStreakCap = 3
	brucieBustValue = 1
)

// SideGame is the nested state machine for the Keller higher/lower games. It
// owns its own deck and turn order; every eligible player is visited exactly
// once before control returns to the main game.
type SideGame struct {
	Kind      SideGameKind `json:"kind"`
	Deck      []models.Card `json:"deck"`
	TurnOrder []uuid.UUID  `json:"turnOrder"`
	TurnIndex int          `json:"turnIndex"`
	FaceUp    models.Card  `json:"faceUp"`
	Streak    int          `json:"streak"`
	MoveCount int          `json:"moveCount"`

	// AwaitingAck gates the machine between a reveal result and the next
	// reveal so result screens can be shown; the acting client must
	// acknowledge before state advances.
	AwaitingAck bool   `json:"awaitingAck"`
	LastOutcome string `json:"lastOutcome,omitempty"`

	// turnOver marks that the current player's result is locked and the ack
	// will move to the next player.
	TurnOver bool `json:"turnOver"`
	Done     bool `json:"done"`
}

// NewSideGame deals a fresh shuffled deck and fixes the visiting order:
// lowest total score first, seat order breaking ties. The order is deliberately
// independent of the main game's rotation.
func NewSideGame(kind SideGameKind, players []*models.Player) *SideGame {
	type seat struct {
		id    uuid.UUID
		score int
		idx   int
	}
	seats := make([]seat, len(players))
	for i, p := range players {
		seats[i] = seat{id: p.ID, score: p.Score, idx: i}
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].score != seats[j].score {
			return seats[i].score < seats[j].score
		}
		return seats[i].idx < seats[j].idx
	})
	order := make([]uuid.UUID, len(seats))
	for i, s := range seats {
		order[i] = s.id
	}

	sg := &SideGame{
		Kind:      kind,
		Deck:      models.Shuffle(models.NewDeck()),
		TurnOrder: order,
	}
	sg.FaceUp = sg.draw()
	return sg
}

func (sg *SideGame) draw() models.Card {
	if len(sg.Deck) == 0 {
		// 7 players can outrun a single pack; reshuffle a fresh one.
		sg.Deck = models.Shuffle(models.NewDeck())
	}
	c := sg.Deck[0]
	sg.Deck = sg.Deck[1:]
	return c
}

// CurrentPlayerID returns whose side-game turn it is.
func (sg *SideGame) CurrentPlayerID() uuid.UUID {
	if sg.Done || sg.TurnIndex >= len(sg.TurnOrder) {
		return uuid.Nil
	}
	return sg.TurnOrder[sg.TurnIndex]
}

func (sg *SideGame) streakCap() int {
	if sg.Kind == SideGameBrucie {
		return brucieStreakCap
	}
	return haloStreakCap
}

func (sg *SideGame) bustValue() int {
	if sg.Kind == SideGameBrucie {
		return brucieBustValue
	}
	return haloBustValue
}

// bankValue derives the locked-in result from the streak: streak+2 points in
// the halo game, streak squared in the Brucie bonus.
func (sg *SideGame) bankValue() int {
	if sg.Kind == SideGameBrucie {
		return sg.Streak * sg.Streak
	}
	return sg.Streak + 2
}

// Guess resolves a higher/lower (or, in the Brucie bonus, same) call against
// the next card. Returns the player's locked result and true when their turn
// ended, or (0, false) while the turn continues. Assumes the main game lock
// is held and validation (turn, phase, ack gate) already passed.
func (sg *SideGame) Guess(direction string) (int, bool, error) {
	if sg.AwaitingAck || sg.TurnOver || sg.Done {
		return 0, false, NewRuleError(ErrInvalidTransition, "side game is not accepting a guess")
	}
	switch direction {
	case SideGameGuessHigher, SideGameGuessLower:
	case SideGameGuessSame:
		if sg.Kind != SideGameBrucie {
			return 0, false, NewRuleError(ErrOutOfRange, "guess %q only exists in the %s", direction, SideGameBrucie)
		}
	default:
		return 0, false, NewRuleError(ErrOutOfRange, "unknown guess %q", direction)
	}

	prev := sg.FaceUp
	next := sg.draw()
	sg.FaceUp = next
	sg.MoveCount++
	sg.AwaitingAck = true

	correct := false
	switch direction {
	case SideGameGuessHigher:
		correct = next.Rank > prev.Rank
	case SideGameGuessLower:
		correct = next.Rank < prev.Rank
	case SideGameGuessSame:
		correct = next.Rank == prev.Rank
	}

	if !correct {
		sg.LastOutcome = OutcomeBust
		sg.TurnOver = true
		return sg.bustValue(), true, nil
	}

	sg.Streak++
	sg.LastOutcome = OutcomeCorrect
	if sg.Streak >= sg.streakCap() {
		// Streak cap reached: result locks automatically.
		sg.TurnOver = true
		return sg.bankValue(), true, nil
	}
	return 0, false, nil
}

// Bank locks in the value derived from the current streak and ends the turn.
func (sg *SideGame) Bank() (int, error) {
	if sg.AwaitingAck || sg.TurnOver || sg.Done {
		return 0, NewRuleError(ErrInvalidTransition, "side game is not accepting a bank")
	}
	sg.AwaitingAck = true
	sg.TurnOver = true
	sg.LastOutcome = OutcomeBanked
	return sg.bankValue(), nil
}

// Skip takes the guaranteed value instead of playing. Only legal as the very
// first move of a halo turn.
func (sg *SideGame) Skip() (int, error) {
	if sg.Kind != SideGameHalo {
		return 0, NewRuleError(ErrInvalidTransition, "skip only exists in the %s", SideGameHalo)
	}
	if sg.AwaitingAck || sg.TurnOver || sg.Done {
		return 0, NewRuleError(ErrInvalidTransition, "side game is not accepting a skip")
	}
	if sg.MoveCount > 0 {
		return 0, NewRuleError(ErrInvalidTransition, "skip is only available before the first guess")
	}
	sg.AwaitingAck = true
	sg.TurnOver = true
	sg.LastOutcome = OutcomeSkipped
	return haloSkipValue, nil
}

// Acknowledge releases the pacing gate after a reveal result. If the current
// turn is over it advances to the next eligible player (dealing them a fresh
// face-up card) or finishes the side game.
func (sg *SideGame) Acknowledge() error {
	if !sg.AwaitingAck {
		return NewRuleError(ErrInvalidTransition, "nothing to acknowledge")
	}
	sg.AwaitingAck = false
	sg.LastOutcome = ""
	if !sg.TurnOver {
		return nil
	}

	sg.TurnIndex++
	sg.TurnOver = false
	sg.Streak = 0
	sg.MoveCount = 0
	if sg.TurnIndex >= len(sg.TurnOrder) {
		sg.Done = true
		return nil
	}
	sg.FaceUp = sg.draw()
	return nil
}
