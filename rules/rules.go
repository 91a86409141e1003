// Package rules wraps the chess rules library: legality, positions and outcomes.
package rules

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/notnil/chess"
)

var (
	ErrInvalidPosition = errors.New("invalid FEN position")
	ErrIllegalMove     = errors.New("illegal move")
	ErrNoLegalMoves    = errors.New("position has no legal moves")
)

var uciNotation chess.UCINotation

// MoveResult is the position after a move was applied.
type MoveResult struct {
	UCI    string
	FEN    string
	PGN    string
	Result models.GameResult
	// Method is the library's name for how the game ended, empty while it goes on.
	Method string
}

// Finished reports whether the move ended the game.
func (m *MoveResult) Finished() bool {
	return m.Result.IsTerminal()
}

// Load restores a game from its stored PGN, falling back to the FEN when the
// PGN is empty or disagrees with it.
func Load(fen, pgn string) (*chess.Game, error) {
	if strings.TrimSpace(pgn) != "" {
		if opt, err := chess.PGN(strings.NewReader(pgn)); err == nil {
			g := chess.NewGame(opt)
			if fen == "" || g.Position().String() == fen {
				return g, nil
			}
		}
	}
	if strings.TrimSpace(fen) == "" {
		return chess.NewGame(), nil
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}
	return chess.NewGame(opt), nil
}

func ValidateFEN(fen string) error {
	_, err := chess.FEN(fen)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}
	return nil
}

// SideToMove returns whose turn it is in the position.
func SideToMove(fen string) (models.Color, error) {
	g, err := Load(fen, "")
	if err != nil {
		return "", err
	}
	if g.Position().Turn() == chess.White {
		return models.White, nil
	}
	return models.Black, nil
}

// ApplyMove plays a UCI move (e2e4, e7e8q) on the stored game.
func ApplyMove(fen, pgn, uci string) (*MoveResult, error) {
	g, err := Load(fen, pgn)
	if err != nil {
		return nil, err
	}
	if g.Outcome() != chess.NoOutcome {
		return nil, fmt.Errorf("%w: game is already over", ErrIllegalMove)
	}

	move, err := uciNotation.Decode(g.Position(), strings.ToLower(strings.TrimSpace(uci)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}
	if err := g.Move(move); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}

	res := &MoveResult{
		UCI:    uciNotation.Encode(nil, move),
		FEN:    g.Position().String(),
		PGN:    g.String(),
		Result: models.ResultInProgress,
	}
	if outcome := g.Outcome(); outcome != chess.NoOutcome {
		res.Result = resultOf(outcome)
		res.Method = g.Method().String()
	}
	return res, nil
}

// IsLegal reports whether the UCI move can be played in the position.
func IsLegal(fen, uci string) bool {
	g, err := Load(fen, "")
	if err != nil {
		return false
	}
	uci = strings.ToLower(strings.TrimSpace(uci))
	for _, m := range g.ValidMoves() {
		if uciNotation.Encode(nil, m) == uci {
			return true
		}
	}
	return false
}

// RandomLegalMove picks any legal move, in UCI notation.
func RandomLegalMove(fen string) (string, error) {
	g, err := Load(fen, "")
	if err != nil {
		return "", err
	}
	moves := g.ValidMoves()
	if len(moves) == 0 {
		return "", ErrNoLegalMoves
	}
	return uciNotation.Encode(nil, moves[rand.IntN(len(moves))]), nil
}

func resultOf(outcome chess.Outcome) models.GameResult {
	switch outcome {
	case chess.WhiteWon:
		return models.ResultWhiteWins
	case chess.BlackWon:
		return models.ResultBlackWins
	case chess.Draw:
		return models.ResultDraw
	}
	return models.ResultInProgress
}
