package brackets

import (
	"fmt"
)

// ScorePairingGenerator pairs neighbours in the score-ordered list: 1-2, 3-4, ...
// An odd player out gets a bye worth one point and no game.
type ScorePairingGenerator struct{}

func NewScorePairingGenerator() PairingGenerator {
	return &ScorePairingGenerator{}
}

func (g *ScorePairingGenerator) GetName() string {
	return "ScorePairing"
}

func (g *ScorePairingGenerator) Generate(params GeneratePairingsParams) (*RoundPlan, error) {
	players := Eligible(params.Players)
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughPlayers, len(players))
	}

	plan := &RoundPlan{
		Round:    params.Round,
		Pairings: make([]Pairing, 0, len(players)/2),
	}

	for i := 0; i+1 < len(players); i += 2 {
		plan.Pairings = append(plan.Pairings, Pairing{
			WhiteID: players[i].PlayerID,
			BlackID: players[i+1].PlayerID,
		})
	}

	if len(players)%2 == 1 {
		byeID := players[len(players)-1].PlayerID
		plan.ByeID = &byeID
		plan.ByeCredited = true
	}

	return plan, nil
}
