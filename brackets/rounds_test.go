package brackets

import (
	"testing"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalRounds(t *testing.T) {
	tests := []struct {
		format models.TournamentFormat
		n      int
		want   int
	}{
		{models.FormatKnockouts, 2, 1},
		{models.FormatKnockouts, 8, 3},
		{models.FormatKnockouts, 9, 4},
		{models.FormatSwiss, 8, 4},
		{models.FormatSwiss, 5, 4},
		{models.FormatSwissPlayoffs, 16, 5},
		{models.FormatSwissSuperLeague, 6, 4},
		{models.FormatRoundRobinPlayoffs, 6, 5},
		{models.FormatArena, 3, 10},
	}
	for _, tt := range tests {
		got, err := TotalRounds(tt.format, tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s with %d players", tt.format, tt.n)
	}
}

func TestTotalRounds_Errors(t *testing.T) {
	_, err := TotalRounds(models.FormatSwiss, 1)
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	_, err = TotalRounds(models.TournamentFormat("blitz"), 4)
	assert.Error(t, err)
}

func TestLastRound(t *testing.T) {
	swiss := &models.Tournament{Format: models.FormatSwiss, TotalRounds: 4}
	assert.Equal(t, 4, LastRound(swiss, 10))

	league := &models.Tournament{Format: models.FormatSwissSuperLeague, TotalRounds: 4}
	assert.Equal(t, 7, LastRound(league, 10))
	assert.Equal(t, 7, LastRound(league, 3))
	assert.Equal(t, 5, LastRound(league, 2))
}
