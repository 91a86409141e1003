package brackets

import (
	"errors"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/google/uuid"
)

var ErrNotEnoughPlayers = errors.New("not enough eligible players to pair (minimum 2 required)")

// Pairing - одна партия раунда. Игрок с меньшим индексом играет белыми.
type Pairing struct {
	WhiteID uuid.UUID `json:"white_player_id"`
	BlackID uuid.UUID `json:"black_player_id"`
}

// RoundPlan - результат жеребьёвки одного раунда.
type RoundPlan struct {
	Round    int        `json:"round"`
	Pairings []Pairing  `json:"pairings"`
	ByeID    *uuid.UUID `json:"bye_player_id,omitempty"`
	// ByeCredited is false for super league sit-outs.
	ByeCredited bool `json:"bye_credited"`
}

type GeneratePairingsParams struct {
	Tournament *models.Tournament
	Round      int
	// Players must be ordered by score descending.
	Players []*models.TournamentPlayer
	// Games of the tournament so far. Only the super league generator reads them.
	Games []*models.Game
}

type PairingGenerator interface {
	Generate(params GeneratePairingsParams) (*RoundPlan, error)

	GetName() string
}

// GeneratorFor picks the generator for the round about to be created.
func GeneratorFor(t *models.Tournament, round int) PairingGenerator {
	if t.Format.HasSuperLeague() && t.TotalRounds > 0 && round > t.TotalRounds {
		return NewSuperLeagueGenerator()
	}
	return NewScorePairingGenerator()
}

// Eligible filters out eliminated players keeping order.
func Eligible(players []*models.TournamentPlayer) []*models.TournamentPlayer {
	eligible := make([]*models.TournamentPlayer, 0, len(players))
	for _, p := range players {
		if p != nil && !p.IsEliminated {
			eligible = append(eligible, p)
		}
	}
	return eligible
}
