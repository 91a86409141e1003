package brackets

import (
	"sort"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/google/uuid"
)

// points returns what each side earned in a finished game.
func points(result models.GameResult) (white, black float64) {
	switch result {
	case models.ResultWhiteWins:
		return 1, 0
	case models.ResultBlackWins:
		return 0, 1
	case models.ResultDraw:
		return 0.5, 0.5
	}
	return 0, 0
}

type superLeagueTally struct {
	points float64
	games  int
}

func tallySuperLeague(totalRounds int, games []*models.Game) map[uuid.UUID]*superLeagueTally {
	tally := make(map[uuid.UUID]*superLeagueTally)
	get := func(id uuid.UUID) *superLeagueTally {
		t, ok := tally[id]
		if !ok {
			t = &superLeagueTally{}
			tally[id] = t
		}
		return t
	}
	for _, g := range games {
		if g == nil || g.Round <= totalRounds || !g.Result.IsTerminal() {
			continue
		}
		w, b := points(g.Result)
		white, black := get(g.WhitePlayerID), get(g.BlackPlayerID)
		white.points += w
		white.games++
		black.points += b
		black.games++
	}
	return tally
}

// superLeagueSeeds returns the top eligible players by Swiss-phase score.
// Ties fall back to registration order and then player id so every round sees the same four.
func superLeagueSeeds(totalRounds int, players []*models.TournamentPlayer, games []*models.Game) ([]*models.TournamentPlayer, map[uuid.UUID]*superLeagueTally) {
	tally := tallySuperLeague(totalRounds, games)
	swiss := func(p *models.TournamentPlayer) float64 {
		if t, ok := tally[p.PlayerID]; ok {
			return p.Score - t.points
		}
		return p.Score
	}

	candidates := Eligible(players)
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := swiss(candidates[i]), swiss(candidates[j])
		if si != sj {
			return si > sj
		}
		if !candidates[i].RegisteredAt.Equal(candidates[j].RegisteredAt) {
			return candidates[i].RegisteredAt.Before(candidates[j].RegisteredAt)
		}
		return candidates[i].PlayerID.String() < candidates[j].PlayerID.String()
	})

	if len(candidates) > SuperLeagueSize {
		candidates = candidates[:SuperLeagueSize]
	}
	return candidates, tally
}

// ComputeSuperLeague builds the Super League table from a snapshot of registrations and games.
// It returns nil until the Swiss phase of a super league format is over.
func ComputeSuperLeague(t *models.Tournament, players []*models.TournamentPlayer, games []*models.Game) []models.SuperLeagueStanding {
	if t == nil || !t.InSuperLeague() {
		return nil
	}

	seeds, tally := superLeagueSeeds(t.TotalRounds, players, games)
	table := make([]models.SuperLeagueStanding, 0, len(seeds))
	for _, p := range seeds {
		entry := models.SuperLeagueStanding{PlayerID: p.PlayerID, SwissScore: p.Score}
		if s, ok := tally[p.PlayerID]; ok {
			entry.SwissScore = p.Score - s.points
			entry.SuperLeaguePoints = s.points
			entry.GamesPlayed = s.games
		}
		entry.TotalScore = entry.SwissScore + entry.SuperLeaguePoints
		table = append(table, entry)
	}

	sort.SliceStable(table, func(i, j int) bool {
		if table[i].TotalScore != table[j].TotalScore {
			return table[i].TotalScore > table[j].TotalScore
		}
		return table[i].SwissScore > table[j].SwissScore
	})
	for i := range table {
		table[i].Position = i + 1
	}
	return table
}
