package brackets

import (
	"testing"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairKey(a, b uuid.UUID) string {
	if a.String() < b.String() {
		return a.String() + b.String()
	}
	return b.String() + a.String()
}

func TestCircleSchedule_EveryPairOnce(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 6} {
		ids := make([]uuid.UUID, n)
		for i := range ids {
			ids[i] = uuid.New()
		}

		schedule := CircleSchedule(ids)
		assert.Len(t, schedule, SuperLeagueRounds(n))

		met := make(map[string]int)
		for _, round := range schedule {
			inRound := make(map[uuid.UUID]bool)
			for _, p := range round.Pairings {
				assert.NotEqual(t, p.WhiteID, p.BlackID)
				assert.False(t, inRound[p.WhiteID])
				assert.False(t, inRound[p.BlackID])
				inRound[p.WhiteID] = true
				inRound[p.BlackID] = true
				met[pairKey(p.WhiteID, p.BlackID)]++
			}
			if n%2 == 1 {
				assert.NotNil(t, round.ByeID)
				assert.False(t, round.ByeCredited)
			}
		}
		assert.Len(t, met, n*(n-1)/2)
		for _, count := range met {
			assert.Equal(t, 1, count)
		}
	}
}

func TestSuperLeagueGenerator_TopFourAcrossRounds(t *testing.T) {
	players := newPlayers(4, 3.5, 3, 3, 2, 1)
	tournament := &models.Tournament{Format: models.FormatSwissSuperLeague, TotalRounds: 4}
	gen := NewSuperLeagueGenerator()

	top := map[uuid.UUID]bool{}
	for _, p := range players[:4] {
		top[p.PlayerID] = true
	}

	var games []*models.Game
	met := make(map[string]int)
	for round := 5; round <= 7; round++ {
		plan, err := gen.Generate(GeneratePairingsParams{Tournament: tournament, Round: round, Players: players, Games: games})
		require.NoError(t, err)
		assert.Equal(t, round, plan.Round)
		require.Len(t, plan.Pairings, 2)

		for _, p := range plan.Pairings {
			assert.True(t, top[p.WhiteID])
			assert.True(t, top[p.BlackID])
			met[pairKey(p.WhiteID, p.BlackID)]++

			// white wins every game; stored scores move with it
			games = append(games, &models.Game{Round: round, WhitePlayerID: p.WhiteID, BlackPlayerID: p.BlackID, Result: models.ResultWhiteWins})
			for _, pl := range players {
				if pl.PlayerID == p.WhiteID {
					pl.Score++
				}
			}
		}
	}
	assert.Len(t, met, 6)

	_, err := gen.Generate(GeneratePairingsParams{Tournament: tournament, Round: 8, Players: players, Games: games})
	assert.Error(t, err)
}
