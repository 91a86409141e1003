package brackets

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/google/uuid"
)

var ErrNotKnockout = errors.New("bracket view is only available for knockout tournaments")

// BracketMatch - ячейка сетки. Будущие раунды заполняются заглушками.
type BracketMatch struct {
	Round        int `json:"round"`
	OrderInRound int `json:"order_in_round"`

	GameID  *uuid.UUID        `json:"game_id,omitempty"`
	WhiteID *uuid.UUID        `json:"white_player_id,omitempty"`
	BlackID *uuid.UUID        `json:"black_player_id,omitempty"`
	Result  models.GameResult `json:"result,omitempty"`
	// WinnerID is nil for unfinished games and draws.
	WinnerID *uuid.UUID `json:"winner_id,omitempty"`

	IsPlaceholder bool       `json:"is_placeholder"`
	IsBye         bool       `json:"is_bye"`
	ByePlayerID   *uuid.UUID `json:"bye_player_id,omitempty"`
}

type BracketRound struct {
	Round   int             `json:"round"`
	Matches []*BracketMatch `json:"matches"`
}

func winnerOf(g *models.Game) *uuid.UUID {
	switch g.Result {
	case models.ResultWhiteWins:
		id := g.WhitePlayerID
		return &id
	case models.ResultBlackWins:
		id := g.BlackPlayerID
		return &id
	}
	return nil
}

func loserOf(g *models.Game) (uuid.UUID, bool) {
	switch g.Result {
	case models.ResultWhiteWins:
		return g.BlackPlayerID, true
	case models.ResultBlackWins:
		return g.WhitePlayerID, true
	}
	return uuid.Nil, false
}

// BuildKnockoutBracket восстанавливает сетку на выбывание по сыгранным партиям.
// Players entering a round are the previous round's entrants minus its losers; an
// entrant without a game got the bye. Rounds not yet paired are filled with
// placeholders sized by halving the field.
func BuildKnockoutBracket(t *models.Tournament, players []*models.TournamentPlayer, games []*models.Game) ([]*BracketRound, error) {
	if t.Format != models.FormatKnockouts {
		return nil, ErrNotKnockout
	}
	n := len(players)
	if n < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughPlayers, n)
	}

	numRounds := t.TotalRounds
	if numRounds == 0 {
		numRounds = int(math.Ceil(math.Log2(float64(n))))
	}

	byRound := make(map[int][]*models.Game)
	for _, g := range games {
		byRound[g.Round] = append(byRound[g.Round], g)
	}
	for _, rg := range byRound {
		sort.SliceStable(rg, func(i, j int) bool { return rg[i].CreatedAt.Before(rg[j].CreatedAt) })
	}

	entering := make([]uuid.UUID, 0, n)
	for _, p := range players {
		entering = append(entering, p.PlayerID)
	}
	predicted := n

	rounds := make([]*BracketRound, 0, numRounds)
	for r := 1; r <= numRounds; r++ {
		round := &BracketRound{Round: r}
		roundGames := byRound[r]

		if len(roundGames) == 0 {
			// раунд ещё не разыгран
			if predicted < 2 {
				break
			}
			for i := 0; i < predicted/2; i++ {
				round.Matches = append(round.Matches, &BracketMatch{Round: r, OrderInRound: i + 1, IsPlaceholder: true})
			}
			if predicted%2 == 1 {
				round.Matches = append(round.Matches, &BracketMatch{Round: r, OrderInRound: predicted/2 + 1, IsPlaceholder: true, IsBye: true})
			}
			rounds = append(rounds, round)
			predicted = (predicted + 1) / 2
			continue
		}

		seated := make(map[uuid.UUID]bool, len(roundGames)*2)
		losers := make(map[uuid.UUID]bool, len(roundGames))
		for i, g := range roundGames {
			gameID, white, black := g.ID, g.WhitePlayerID, g.BlackPlayerID
			round.Matches = append(round.Matches, &BracketMatch{
				Round:        r,
				OrderInRound: i + 1,
				GameID:       &gameID,
				WhiteID:      &white,
				BlackID:      &black,
				Result:       g.Result,
				WinnerID:     winnerOf(g),
			})
			seated[white], seated[black] = true, true
			if id, ok := loserOf(g); ok {
				losers[id] = true
			}
		}

		next := make([]uuid.UUID, 0, len(entering))
		for _, id := range entering {
			if !seated[id] {
				byeID := id
				round.Matches = append(round.Matches, &BracketMatch{
					Round:        r,
					OrderInRound: len(round.Matches) + 1,
					IsBye:        true,
					ByePlayerID:  &byeID,
				})
			}
			if !losers[id] {
				next = append(next, id)
			}
		}
		rounds = append(rounds, round)
		entering = next
		predicted = len(next)
	}

	return rounds, nil
}
