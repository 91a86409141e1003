package services

import (
	"math"

	"github.com/Dosada05/checkmate-cup/models"
)

const EloK = 32

// RatingChange is the Elo outcome of one finished game.
type RatingChange struct {
	WhiteDelta int `json:"white_delta"`
	BlackDelta int `json:"black_delta"`
	NewWhite   int `json:"new_white"`
	NewBlack   int `json:"new_black"`
}

// roundHalfUp rounds .5 toward positive infinity, so -0.5 becomes 0 and 2.5 becomes 3.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// ExpectedScore is the expected result of a player rated ra against rb.
func ExpectedScore(ra, rb int) float64 {
	return 1 / (1 + math.Pow(10, float64(rb-ra)/400))
}

// CalculateElo computes both deltas from the same pre-game ratings.
// A non-terminal result yields no change.
func CalculateElo(whiteRating, blackRating int, result models.GameResult) RatingChange {
	whiteActual, blackActual, ok := actualScores(result)
	if !ok {
		return RatingChange{NewWhite: whiteRating, NewBlack: blackRating}
	}

	expectedWhite := ExpectedScore(whiteRating, blackRating)
	expectedBlack := 1 - expectedWhite

	change := RatingChange{
		WhiteDelta: roundHalfUp(EloK * (whiteActual - expectedWhite)),
		BlackDelta: roundHalfUp(EloK * (blackActual - expectedBlack)),
	}
	change.NewWhite = whiteRating + change.WhiteDelta
	change.NewBlack = blackRating + change.BlackDelta
	return change
}

// actualScores also serves as the tournament point table: 1/0, 0/1, 0.5/0.5.
func actualScores(result models.GameResult) (white, black float64, ok bool) {
	switch result {
	case models.ResultWhiteWins:
		return 1, 0, true
	case models.ResultBlackWins:
		return 0, 1, true
	case models.ResultDraw:
		return 0.5, 0.5, true
	}
	return 0, 0, false
}

// profileResults builds the lifetime counter updates for both sides.
func profileResults(result models.GameResult, change RatingChange) (white, black models.ProfileResult) {
	whitePts, blackPts, _ := actualScores(result)
	white = models.ProfileResult{NewRating: change.NewWhite, ScoreDelta: whitePts}
	black = models.ProfileResult{NewRating: change.NewBlack, ScoreDelta: blackPts}
	switch result {
	case models.ResultWhiteWins:
		white.Won, black.Lost = 1, 1
	case models.ResultBlackWins:
		white.Lost, black.Won = 1, 1
	case models.ResultDraw:
		white.Drawn, black.Drawn = 1, 1
	}
	return white, black
}
