package game

import (
	"github.com/google/uuid"

	"github.com/bandage123/estimationwhist-sub000/internal/models"
)

// Snapshot is the full serializable state of one game instance, used by the
// external save/restore boundary. Timers and transport callbacks are not part
// of it; Resume re-arms them after a restore.
type Snapshot struct {
	ID                 uuid.UUID        `json:"id"`
	Ruleset            string           `json:"ruleset"`
	HostID             uuid.UUID        `json:"hostId"`
	Phase              Phase            `json:"phase"`
	Players            []*models.Player `json:"players"`
	CurrentRound       int              `json:"currentRound"`
	CurrentPlayerIndex int              `json:"currentPlayerIndex"`
	DealerIndex        int              `json:"dealerIndex"`
	Trump              *models.Suit     `json:"trump"`
	CardCount          int              `json:"cardCount"`
	DoublePoints       bool             `json:"doublePoints"`
	CurrentTrick       *Trick           `json:"currentTrick"`
	LastTrick          *Trick           `json:"lastTrick"`
	TrickNumber        int              `json:"trickNumber"`
	DealerCards        []models.Card    `json:"dealerCards"`
	RoundHistory       []RoundResult    `json:"roundHistory"`
	SideGame           *SideGame        `json:"sideGame"`
	Resolving          bool             `json:"resolving"`
}

// Snapshot captures the complete current state.
func (g *WhistGame) Snapshot() Snapshot {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	players := make([]*models.Player, len(g.Players))
	for i, p := range g.Players {
		cp := *p
		cp.Conn = nil
		cp.Hand = append([]models.Card{}, p.Hand...)
		players[i] = &cp
	}
	return Snapshot{
		ID:                 g.ID,
		Ruleset:            g.Ruleset,
		HostID:             g.HostID,
		Phase:              g.Phase,
		Players:            players,
		CurrentRound:       g.CurrentRound,
		CurrentPlayerIndex: g.CurrentPlayerIndex,
		DealerIndex:        g.DealerIndex,
		Trump:              g.Trump,
		CardCount:          g.CardCount,
		DoublePoints:       g.DoublePoints,
		CurrentTrick:       g.CurrentTrick,
		LastTrick:          g.LastTrick,
		TrickNumber:        g.TrickNumber,
		DealerCards:        g.DealerCards,
		RoundHistory:       g.RoundHistory,
		SideGame:           g.SideGame,
		Resolving:          g.resolving,
	}
}

// RestoreGame reconstructs a playable instance from a snapshot. Restored
// humans start disconnected until their sockets reattach; call Resume once
// the transport has wired its broadcast function so pacing and CPU turns
// re-arm.
func RestoreGame(snap Snapshot) *WhistGame {
	g := &WhistGame{
		ID:                 snap.ID,
		Ruleset:            snap.Ruleset,
		HostID:             snap.HostID,
		Phase:              snap.Phase,
		Players:            snap.Players,
		CurrentRound:       snap.CurrentRound,
		CurrentPlayerIndex: snap.CurrentPlayerIndex,
		DealerIndex:        snap.DealerIndex,
		Trump:              snap.Trump,
		CardCount:          snap.CardCount,
		DoublePoints:       snap.DoublePoints,
		CurrentTrick:       snap.CurrentTrick,
		LastTrick:          snap.LastTrick,
		TrickNumber:        snap.TrickNumber,
		DealerCards:        snap.DealerCards,
		RoundHistory:       snap.RoundHistory,
		SideGame:           snap.SideGame,
		resolving:          snap.Resolving,
	}
	if g.CurrentTrick == nil {
		g.CurrentTrick = NewTrick()
	}
	for _, p := range g.Players {
		if !p.IsCPU {
			p.Connected = false
			p.Conn = nil
		}
	}
	return g
}
