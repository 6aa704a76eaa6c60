package game

import (
	"github.com/google/uuid"

	"github.com/bandage123/estimationwhist-sub000/internal/models"
)

// ViewPlayer is one seat as seen by a specific viewer. Other players' cards
// are replaced by placeholders; only hand sizes are real.
type ViewPlayer struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Hand             []models.Card `json:"hand"`
	HandSize         int           `json:"handSize"`
	Call             *int          `json:"call"`
	TricksWon        int           `json:"tricksWon"`
	Score            int           `json:"score"`
	IsDealer         bool          `json:"isDealer"`
	IsCPU            bool          `json:"isCPU"`
	Connected        bool          `json:"connected"`
	IsCurrentTurn    bool          `json:"isCurrentTurn"`
	HaloBank         int           `json:"haloBank,omitempty"`
	BrucieMultiplier int           `json:"brucieMultiplier,omitempty"`
}

// DealerCardView is one face-up card during dealer determination.
type DealerCardView struct {
	PlayerID uuid.UUID   `json:"playerId"`
	Card     models.Card `json:"card"`
}

// SideGameView is the visible slice of an in-progress Keller side game.
type SideGameView struct {
	Kind            SideGameKind `json:"kind"`
	CurrentPlayerID uuid.UUID    `json:"currentPlayerId"`
	FaceUp          models.Card  `json:"faceUp"`
	Streak          int          `json:"streak"`
	AwaitingAck     bool         `json:"awaitingAck"`
	LastOutcome     string       `json:"lastOutcome,omitempty"`
	CanSkip         bool         `json:"canSkip"`
	Done            bool         `json:"done"`
}

// PlayerView is the redacted snapshot pushed to one client on every mutation.
type PlayerView struct {
	GameID          uuid.UUID        `json:"gameId"`
	YourID          uuid.UUID        `json:"yourId"`
	HostID          uuid.UUID        `json:"hostId"`
	Ruleset         string           `json:"ruleset"`
	Phase           Phase            `json:"phase"`
	CurrentRound    int              `json:"currentRound"`
	CardCount       int              `json:"cardCount"`
	Trump           *models.Suit     `json:"trump"`
	DoublePoints    bool             `json:"doublePoints"`
	CurrentPlayerID uuid.UUID        `json:"currentPlayerId"`
	DealerID        uuid.UUID        `json:"dealerId"`
	TrickNumber     int              `json:"trickNumber"`
	CurrentTrick    *Trick           `json:"currentTrick"`
	LastTrick       *Trick           `json:"lastTrick,omitempty"`
	DealerCards     []DealerCardView `json:"dealerCards,omitempty"`
	Players         []ViewPlayer     `json:"players"`
	RoundHistory    []RoundResult    `json:"roundHistory"`
	SideGame        *SideGameView    `json:"sideGame,omitempty"`
}

// copyTrick detaches a trick from the live game state so views can outlive
// the lock.
func copyTrick(t *Trick) *Trick {
	if t == nil {
		return nil
	}
	cp := &Trick{Cards: append([]PlayedCard{}, t.Cards...)}
	if t.LeadSuit != nil {
		s := *t.LeadSuit
		cp.LeadSuit = &s
	}
	if t.WinnerID != nil {
		id := *t.WinnerID
		cp.WinnerID = &id
	}
	return cp
}

// playerViewLocked builds the snapshot for one viewer. The viewer's own hand
// is always real; every other hand (human or CPU) is a run of placeholder
// cards of the same length. Assumes lock is held.
//
// The view owns all of its data: the transport marshals views on goroutines
// after the lock is released, so nothing here may alias mutable game state.
func (g *WhistGame) playerViewLocked(forPlayer uuid.UUID) PlayerView {
	view := PlayerView{
		GameID:       g.ID,
		YourID:       forPlayer,
		HostID:       g.HostID,
		Ruleset:      g.Ruleset,
		Phase:        g.Phase,
		CurrentRound: g.CurrentRound,
		CardCount:    g.CardCount,
		Trump:        g.Trump,
		DoublePoints: g.DoublePoints,
		TrickNumber:  g.TrickNumber,
		CurrentTrick: copyTrick(g.CurrentTrick),
		LastTrick:    copyTrick(g.LastTrick),
		RoundHistory: append([]RoundResult{}, g.RoundHistory...),
	}

	if g.Phase == PhaseCalling || g.Phase == PhasePlaying {
		view.CurrentPlayerID = g.Players[g.CurrentPlayerIndex].ID
	}
	if len(g.Players) > 0 && g.Phase != PhaseLobby && g.Phase != PhaseDeterminingDealer {
		view.DealerID = g.Players[g.DealerIndex].ID
	}
	for i, c := range g.DealerCards {
		view.DealerCards = append(view.DealerCards, DealerCardView{PlayerID: g.Players[i].ID, Card: c})
	}

	for _, p := range g.Players {
		vp := ViewPlayer{
			ID:               p.ID,
			Name:             p.Name,
			HandSize:         len(p.Hand),
			Call:             p.Call,
			TricksWon:        p.TricksWon,
			Score:            p.Score,
			IsDealer:         p.IsDealer,
			IsCPU:            p.IsCPU,
			Connected:        p.Connected,
			IsCurrentTurn:    view.CurrentPlayerID == p.ID && view.CurrentPlayerID != uuid.Nil,
			HaloBank:         p.HaloBank,
			BrucieMultiplier: p.BrucieMultiplier,
		}
		if p.ID == forPlayer {
			vp.Hand = append([]models.Card{}, p.Hand...)
		} else {
			vp.Hand = make([]models.Card, len(p.Hand))
			for j := range vp.Hand {
				vp.Hand[j] = models.PlaceholderCard
			}
		}
		view.Players = append(view.Players, vp)
	}

	if g.SideGame != nil {
		sg := g.SideGame
		view.SideGame = &SideGameView{
			Kind:            sg.Kind,
			CurrentPlayerID: sg.CurrentPlayerID(),
			FaceUp:          sg.FaceUp,
			Streak:          sg.Streak,
			AwaitingAck:     sg.AwaitingAck,
			LastOutcome:     sg.LastOutcome,
			CanSkip:         sg.Kind == SideGameHalo && sg.MoveCount == 0 && !sg.AwaitingAck && !sg.TurnOver,
			Done:            sg.Done,
		}
	}

	return view
}

// ViewFor returns the redacted snapshot for one player, for request/response
// style state queries.
func (g *WhistGame) ViewFor(playerID uuid.UUID) (PlayerView, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if p, _ := g.playerByIDLocked(playerID); p == nil {
		return PlayerView{}, NewRuleError(ErrNotFound, "player %s not in game", playerID)
	}
	return g.playerViewLocked(playerID), nil
}
