package brackets

import (
	"testing"
	"time"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlayers(scores ...float64) []*models.TournamentPlayer {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	players := make([]*models.TournamentPlayer, len(scores))
	for i, s := range scores {
		players[i] = &models.TournamentPlayer{
			ID:           uuid.New(),
			PlayerID:     uuid.New(),
			Score:        s,
			RegisteredAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return players
}

func TestScorePairing_OddCountGivesBye(t *testing.T) {
	players := newPlayers(3, 2, 2, 1, 0)

	plan, err := NewScorePairingGenerator().Generate(GeneratePairingsParams{Round: 3, Players: players})
	require.NoError(t, err)

	assert.Equal(t, 3, plan.Round)
	require.Len(t, plan.Pairings, 2)
	assert.Equal(t, Pairing{WhiteID: players[0].PlayerID, BlackID: players[1].PlayerID}, plan.Pairings[0])
	assert.Equal(t, Pairing{WhiteID: players[2].PlayerID, BlackID: players[3].PlayerID}, plan.Pairings[1])
	require.NotNil(t, plan.ByeID)
	assert.Equal(t, players[4].PlayerID, *plan.ByeID)
	assert.True(t, plan.ByeCredited)
}

func TestScorePairing_EvenCountNoBye(t *testing.T) {
	players := newPlayers(1, 1, 0, 0)

	plan, err := NewScorePairingGenerator().Generate(GeneratePairingsParams{Round: 2, Players: players})
	require.NoError(t, err)

	assert.Len(t, plan.Pairings, 2)
	assert.Nil(t, plan.ByeID)
}

func TestScorePairing_EveryPlayerAppearsOnce(t *testing.T) {
	for n := 2; n <= 11; n++ {
		scores := make([]float64, n)
		players := newPlayers(scores...)

		plan, err := NewScorePairingGenerator().Generate(GeneratePairingsParams{Round: 1, Players: players})
		require.NoError(t, err)

		seen := make(map[uuid.UUID]int)
		for _, p := range plan.Pairings {
			seen[p.WhiteID]++
			seen[p.BlackID]++
		}
		if plan.ByeID != nil {
			seen[*plan.ByeID]++
		}
		assert.Len(t, seen, n)
		for _, count := range seen {
			assert.Equal(t, 1, count)
		}
		assert.Equal(t, n/2, len(plan.Pairings))
	}
}

func TestScorePairing_SkipsEliminated(t *testing.T) {
	players := newPlayers(2, 1, 1, 0)
	players[1].IsEliminated = true
	players[3].IsEliminated = true

	plan, err := NewScorePairingGenerator().Generate(GeneratePairingsParams{Round: 2, Players: players})
	require.NoError(t, err)

	require.Len(t, plan.Pairings, 1)
	assert.Equal(t, players[0].PlayerID, plan.Pairings[0].WhiteID)
	assert.Equal(t, players[2].PlayerID, plan.Pairings[0].BlackID)
}

func TestScorePairing_NotEnoughPlayers(t *testing.T) {
	tests := []struct {
		name    string
		players []*models.TournamentPlayer
	}{
		{name: "empty", players: nil},
		{name: "single", players: newPlayers(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := NewScorePairingGenerator().Generate(GeneratePairingsParams{Round: 1, Players: tt.players})
			require.ErrorIs(t, err, ErrNotEnoughPlayers)
			assert.Nil(t, plan)
		})
	}
}

func TestGeneratorFor(t *testing.T) {
	swiss := &models.Tournament{Format: models.FormatSwiss, TotalRounds: 3}
	league := &models.Tournament{Format: models.FormatSwissSuperLeague, TotalRounds: 3}

	assert.Equal(t, "ScorePairing", GeneratorFor(swiss, 4).GetName())
	assert.Equal(t, "ScorePairing", GeneratorFor(league, 3).GetName())
	assert.Equal(t, "SuperLeagueRoundRobin", GeneratorFor(league, 4).GetName())
}
