package services

import (
	"testing"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/stretchr/testify/assert"
)

func TestCalculateElo(t *testing.T) {
	tests := []struct {
		name         string
		white, black int
		result       models.GameResult
		wantWhite    int
		wantBlack    int
	}{
		{"equal draw", 1200, 1200, models.ResultDraw, 0, 0},
		{"equal white wins", 1200, 1200, models.ResultWhiteWins, 16, -16},
		{"equal black wins", 1200, 1200, models.ResultBlackWins, -16, 16},
		{"underdog wins", 1000, 1400, models.ResultWhiteWins, 29, -29},
		{"favourite wins", 1400, 1000, models.ResultWhiteWins, 3, -3},
		{"draw favours underdog", 1000, 1400, models.ResultDraw, 13, -13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateElo(tt.white, tt.black, tt.result)
			assert.Equal(t, tt.wantWhite, got.WhiteDelta)
			assert.Equal(t, tt.wantBlack, got.BlackDelta)
			assert.Equal(t, tt.white+tt.wantWhite, got.NewWhite)
			assert.Equal(t, tt.black+tt.wantBlack, got.NewBlack)
		})
	}
}

func TestCalculateElo_UnderdogGainsMore(t *testing.T) {
	underdog := CalculateElo(1100, 1500, models.ResultWhiteWins)
	favourite := CalculateElo(1500, 1100, models.ResultWhiteWins)
	assert.Greater(t, underdog.WhiteDelta, favourite.WhiteDelta)
}

func TestCalculateElo_NonTerminal(t *testing.T) {
	got := CalculateElo(1300, 1250, models.ResultInProgress)
	assert.Equal(t, RatingChange{NewWhite: 1300, NewBlack: 1250}, got)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 3, roundHalfUp(2.5))
	assert.Equal(t, 0, roundHalfUp(-0.5))
	assert.Equal(t, -2, roundHalfUp(-2.5))
	assert.Equal(t, -3, roundHalfUp(-2.51))
}

func TestProfileResults(t *testing.T) {
	change := CalculateElo(1200, 1200, models.ResultBlackWins)
	white, black := profileResults(models.ResultBlackWins, change)

	assert.Equal(t, models.ProfileResult{NewRating: 1184, Lost: 1}, white)
	assert.Equal(t, models.ProfileResult{NewRating: 1216, Won: 1, ScoreDelta: 1}, black)

	white, black = profileResults(models.ResultDraw, CalculateElo(1200, 1200, models.ResultDraw))
	assert.Equal(t, 1, white.Drawn)
	assert.Equal(t, 0.5, black.ScoreDelta)
}
