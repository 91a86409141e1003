package brackets

import (
	"fmt"

	"github.com/google/uuid"
)

// SuperLeagueGenerator schedules a single round robin among the top players
// after the Swiss phase. Every pair meets exactly once.
type SuperLeagueGenerator struct{}

func NewSuperLeagueGenerator() PairingGenerator {
	return &SuperLeagueGenerator{}
}

func (g *SuperLeagueGenerator) GetName() string {
	return "SuperLeagueRoundRobin"
}

func (g *SuperLeagueGenerator) Generate(params GeneratePairingsParams) (*RoundPlan, error) {
	t := params.Tournament
	if t == nil {
		return nil, fmt.Errorf("SuperLeagueGenerator: tournament is required")
	}

	seeds, _ := superLeagueSeeds(t.TotalRounds, params.Players, params.Games)
	if len(seeds) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughPlayers, len(seeds))
	}

	ids := make([]uuid.UUID, len(seeds))
	for i, p := range seeds {
		ids[i] = p.PlayerID
	}

	leagueRound := params.Round - t.TotalRounds
	schedule := CircleSchedule(ids)
	if leagueRound < 1 || leagueRound > len(schedule) {
		return nil, fmt.Errorf("SuperLeagueGenerator: round %d is outside the super league (%d rounds)", params.Round, len(schedule))
	}

	plan := schedule[leagueRound-1]
	plan.Round = params.Round
	return &plan, nil
}

// CircleSchedule builds a full single round robin with the circle method.
// The first player stays fixed and the rest rotate. With an odd count one player
// sits out each round; that sit-out is not credited.
func CircleSchedule(ids []uuid.UUID) []RoundPlan {
	n := len(ids)
	if n < 2 {
		return nil
	}

	slots := make([]*uuid.UUID, 0, n+1)
	for i := range ids {
		id := ids[i]
		slots = append(slots, &id)
	}
	if n%2 == 1 {
		slots = append(slots, nil) // пустое место: соперник отдыхает
	}

	size := len(slots)
	rounds := make([]RoundPlan, 0, size-1)
	for r := 0; r < size-1; r++ {
		plan := RoundPlan{Round: r + 1, Pairings: make([]Pairing, 0, size/2)}
		for i := 0; i < size/2; i++ {
			a, b := slots[i], slots[size-1-i]
			if a == nil || b == nil {
				sitOut := a
				if sitOut == nil {
					sitOut = b
				}
				id := *sitOut
				plan.ByeID = &id
				continue
			}
			white, black := *a, *b
			if (r+i)%2 == 1 {
				white, black = black, white
			}
			plan.Pairings = append(plan.Pairings, Pairing{WhiteID: white, BlackID: black})
		}
		rounds = append(rounds, plan)

		// rotate everything except the first slot
		last := slots[size-1]
		copy(slots[2:], slots[1:size-1])
		slots[1] = last
	}
	return rounds
}
