package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameStoreLifecycle(t *testing.T) {
	s := NewGameStore()
	g := NewWhistGame(RulesetStandard)

	_, ok := s.GetGame(g.ID)
	assert.False(t, ok)

	s.AddGame(g)
	got, ok := s.GetGame(g.ID)
	require.True(t, ok)
	assert.Same(t, g, got)

	s.DeleteGame(g.ID)
	_, ok = s.GetGame(g.ID)
	assert.False(t, ok)

	// Deleting an unknown id is a no-op.
	s.DeleteGame(uuid.New())
}

func TestGetGameByPlayerID(t *testing.T) {
	s := NewGameStore()
	g := NewWhistGame(RulesetStandard)
	p, err := g.AddPlayer("Alice", false)
	require.NoError(t, err)
	s.AddGame(g)

	assert.Same(t, g, s.GetGameByPlayerID(p.ID))
	assert.Nil(t, s.GetGameByPlayerID(uuid.New()))
}
