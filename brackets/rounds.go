package brackets

import (
	"fmt"
	"math"

	"github.com/Dosada05/checkmate-cup/models"
)

const (
	arenaRounds     = 10
	SuperLeagueSize = 4
)

// TotalRounds returns the number of scheduled rounds for a format and player count.
func TotalRounds(format models.TournamentFormat, playerCount int) (int, error) {
	if playerCount < 2 {
		return 0, fmt.Errorf("%w: found %d", ErrNotEnoughPlayers, playerCount)
	}

	base := int(math.Ceil(math.Log2(float64(playerCount))))

	switch format {
	case models.FormatSwiss, models.FormatSwissPlayoffs, models.FormatSwissSuperLeague:
		return base + 1, nil
	case models.FormatRoundRobinPlayoffs:
		return playerCount - 1, nil
	case models.FormatArena:
		return arenaRounds, nil
	case models.FormatKnockouts:
		return base, nil
	default:
		return 0, fmt.Errorf("unknown tournament format %q", format)
	}
}

// SuperLeagueRounds is the length of a single round robin between k players.
func SuperLeagueRounds(k int) int {
	if k < 2 {
		return 0
	}
	if k%2 == 0 {
		return k - 1
	}
	return k
}

// LastRound is the final round number, super league included.
// eligible is the number of players still in the tournament.
func LastRound(t *models.Tournament, eligible int) int {
	if !t.Format.HasSuperLeague() {
		return t.TotalRounds
	}
	k := eligible
	if k > SuperLeagueSize {
		k = SuperLeagueSize
	}
	return t.TotalRounds + SuperLeagueRounds(k)
}
