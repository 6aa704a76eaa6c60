package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandage123/estimationwhist-sub000/internal/models"
)

func TestRoundTableShape(t *testing.T) {
	wantCounts := []int{7, 6, 5, 4, 3, 2, 1, 2, 3, 4, 5, 6, 7}
	require.Len(t, roundTable, FinalRound)

	for i, cfg := range roundTable {
		assert.Equal(t, i+1, cfg.RoundNumber)
		assert.Equal(t, wantCounts[i], cfg.CardCount, "round %d", i+1)
	}
}

func TestRoundTableTrumpRotation(t *testing.T) {
	for _, n := range []int{5, 10} {
		cfg, err := ConfigFor(n)
		require.NoError(t, err)
		assert.Nil(t, cfg.Trump, "round %d is no-trump", n)
	}

	cfg, err := ConfigFor(1)
	require.NoError(t, err)
	require.NotNil(t, cfg.Trump)
	assert.Equal(t, models.SuitClubs, *cfg.Trump)

	cfg, err = ConfigFor(FinalRound)
	require.NoError(t, err)
	require.NotNil(t, cfg.Trump)
	assert.Equal(t, models.SuitHearts, *cfg.Trump)
	assert.True(t, cfg.DoublePoints)
}

func TestOnlyFinalRoundDoubles(t *testing.T) {
	for n := 1; n < FinalRound; n++ {
		cfg, err := ConfigFor(n)
		require.NoError(t, err)
		assert.False(t, cfg.DoublePoints, "round %d", n)
	}
}

func TestConfigForOutOfRange(t *testing.T) {
	for _, n := range []int{0, -1, 14} {
		_, err := ConfigFor(n)
		require.Error(t, err)
		assert.Equal(t, ErrOutOfRange, CodeOf(err))
	}
}
