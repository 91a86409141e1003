package services

import (
	"context"
	"testing"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStandings_Ranking(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	profiles := env.addProfiles(3)

	require.NoError(t, env.profiles.ApplyResult(ctx, nil, profiles[1].ID, models.ProfileResult{NewRating: 1216, Won: 1, ScoreDelta: 1}))
	require.NoError(t, env.profiles.ApplyResult(ctx, nil, profiles[2].ID, models.ProfileResult{NewRating: 1200, Drawn: 1, ScoreDelta: 0.5}))

	svc := NewStandingsService(env.tournaments, env.players, env.games, env.profiles, nil)
	view, err := svc.GetStandings(ctx)
	require.NoError(t, err)

	require.Len(t, view.Standings, 3)
	assert.Equal(t, profiles[1].ID, view.Standings[0].ProfileID)
	assert.Equal(t, 1, view.Standings[0].Position)
	assert.Equal(t, profiles[2].ID, view.Standings[1].ProfileID)
	assert.Equal(t, 3, view.Standings[2].Position)
	require.NotNil(t, view.Standings[0].Initials)
	assert.Equal(t, "P", *view.Standings[0].Initials)

	assert.Nil(t, view.Tournament)
	assert.Nil(t, view.SuperLeague)
}

func TestGetStandings_SuperLeague(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tsvc, tour, _ := setupTournament(t, env, models.FormatSwissSuperLeague, 5)

	res, err := tsvc.StartTournament(ctx, tour.ID)
	require.NoError(t, err)
	total := res.Tournament.TotalRounds

	svc := NewStandingsService(env.tournaments, env.players, env.games, env.profiles, nil)
	view, err := svc.GetStandings(ctx)
	require.NoError(t, err)
	require.NotNil(t, view.Tournament)
	assert.Nil(t, view.SuperLeague)

	for round := 1; round <= total; round++ {
		finishRound(t, env, tour.ID, round, models.ResultWhiteWins)
		_, err = tsvc.AdvanceRound(ctx, tour.ID)
		require.NoError(t, err)
	}

	view, err = svc.GetStandings(ctx)
	require.NoError(t, err)
	require.Len(t, view.SuperLeague, 4)
	for i, row := range view.SuperLeague {
		assert.Equal(t, i+1, row.Position)
		assert.Zero(t, row.SuperLeaguePoints)
		assert.Equal(t, row.SwissScore, row.TotalScore)
	}
}
