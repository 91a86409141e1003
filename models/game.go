package models

import (
	"time"

	"github.com/google/uuid"
)

type GameResult string

const (
	ResultPending    GameResult = "pending"
	ResultInProgress GameResult = "in_progress"
	ResultWhiteWins  GameResult = "white_wins"
	ResultBlackWins  GameResult = "black_wins"
	ResultDraw       GameResult = "draw"
)

// IsTerminal is true for results that end the game.
func (r GameResult) IsTerminal() bool {
	return r == ResultWhiteWins || r == ResultBlackWins || r == ResultDraw
}

func (r GameResult) IsValid() bool {
	return r.IsTerminal() || r == ResultPending || r == ResultInProgress
}

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

const (
	StartingFEN        = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	DefaultClockSecond = 600
)

type Game struct {
	ID                 uuid.UUID  `json:"id"`
	TournamentID       *uuid.UUID `json:"tournament_id,omitempty"`
	Round              int        `json:"round"`
	WhitePlayerID      uuid.UUID  `json:"white_player_id"`
	BlackPlayerID      uuid.UUID  `json:"black_player_id"`
	FEN                string     `json:"fen"`
	PGN                string     `json:"pgn"`
	Result             GameResult `json:"result"`
	WhiteReady         bool       `json:"white_ready"`
	BlackReady         bool       `json:"black_ready"`
	WhiteTimeRemaining int        `json:"white_time_remaining"`
	BlackTimeRemaining int        `json:"black_time_remaining"`
	DrawOfferedBy      *uuid.UUID `json:"draw_offered_by,omitempty"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// ColorOf returns the side played by the profile, or false if it is not a participant.
func (g *Game) ColorOf(profileID uuid.UUID) (Color, bool) {
	switch profileID {
	case g.WhitePlayerID:
		return White, true
	case g.BlackPlayerID:
		return Black, true
	}
	return "", false
}

// Opponent returns the other participant's profile id.
func (g *Game) Opponent(profileID uuid.UUID) uuid.UUID {
	if profileID == g.WhitePlayerID {
		return g.BlackPlayerID
	}
	return g.WhitePlayerID
}

// WinFor returns the result where the given side wins.
func WinFor(c Color) GameResult {
	if c == White {
		return ResultWhiteWins
	}
	return ResultBlackWins
}
