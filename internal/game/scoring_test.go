package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreRound(t *testing.T) {
	tests := []struct {
		name         string
		call, tricks int
		double       bool
		brucie       int
		want         int
	}{
		{"hit zero contract", 0, 0, false, 1, 10},
		{"hit contract", 3, 3, false, 1, 13},
		{"overtricks score without bonus", 2, 4, false, 1, 4},
		{"missed contract scores nothing", 3, 1, false, 1, 0},
		{"missed zero call", 0, 2, false, 1, 2},
		{"final round doubles", 3, 3, true, 1, 26},
		{"brucie multiplies doubled score", 3, 3, true, 4, 104},
		{"brucie on a miss is still nothing", 5, 2, true, 9, 0},
		{"unplayed brucie leaves score alone", 2, 2, false, 0, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreRound(tt.call, tt.tricks, tt.double, tt.brucie))
		})
	}
}
