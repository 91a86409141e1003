package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/checkmate-cup/brackets"
	"github.com/Dosada05/checkmate-cup/models"
	"github.com/Dosada05/checkmate-cup/repositories"
	"github.com/Dosada05/checkmate-cup/rules"
	"github.com/google/uuid"
)

type FinalizeGameInput struct {
	GameID             uuid.UUID
	Result             models.GameResult
	FEN                *string
	PGN                *string
	WhiteTimeRemaining *int
	BlackTimeRemaining *int
}

// FinalizeOutcome - ответ финализатора. AlreadyFinalized означает, что партию
// закрыл кто-то раньше и ничего не изменилось.
type FinalizeOutcome struct {
	GameID           uuid.UUID         `json:"game_id"`
	AlreadyFinalized bool              `json:"alreadyFinalized"`
	Result           models.GameResult `json:"result"`
	Rating           *RatingChange     `json:"rating,omitempty"`
}

type MoveInput struct {
	GameID             uuid.UUID
	UCI                string
	WhiteTimeRemaining *int
	BlackTimeRemaining *int
}

type MoveOutcome struct {
	Game      *models.Game     `json:"game"`
	Move      string           `json:"move"`
	Finalized *FinalizeOutcome `json:"finalized,omitempty"`
}

type GameService interface {
	GetGame(ctx context.Context, gameID uuid.UUID) (*models.Game, error)
	FinalizeGame(ctx context.Context, userID uuid.UUID, input FinalizeGameInput) (*FinalizeOutcome, error)
	SetReady(ctx context.Context, userID, gameID uuid.UUID) (*models.Game, error)
	SubmitMove(ctx context.Context, userID uuid.UUID, input MoveInput) (*MoveOutcome, error)
	Resign(ctx context.Context, userID, gameID uuid.UUID) (*FinalizeOutcome, error)
	OfferDraw(ctx context.Context, userID, gameID uuid.UUID) (*models.Game, error)
	AcceptDraw(ctx context.Context, userID, gameID uuid.UUID) (*FinalizeOutcome, error)
}

type gameService struct {
	tx       repositories.Transactor
	games    repositories.GameRepository
	players  repositories.TournamentPlayerRepository
	profiles repositories.ProfileRepository
	archive  GameArchiver
	events   EventPublisher
	logger   *slog.Logger
}

func NewGameService(
	tx repositories.Transactor,
	games repositories.GameRepository,
	players repositories.TournamentPlayerRepository,
	profiles repositories.ProfileRepository,
	archive GameArchiver,
	events EventPublisher,
	logger *slog.Logger,
) GameService {
	return &gameService{
		tx:       tx,
		games:    games,
		players:  players,
		profiles: profiles,
		archive:  archive,
		events:   publisherOrNoop(events),
		logger:   loggerOrDefault(logger),
	}
}

// seat - партия глазами одного из участников.
type seat struct {
	game  *models.Game
	white *models.Profile
	black *models.Profile
	me    *models.Profile
	color models.Color
}

func (s *gameService) GetGame(ctx context.Context, gameID uuid.UUID) (*models.Game, error) {
	g, err := s.games.GetByID(ctx, nil, gameID)
	return g, mapRepositoryError(err)
}

// takeSeat loads the game with both profiles and checks the caller plays in it.
func (s *gameService) takeSeat(ctx context.Context, userID, gameID uuid.UUID) (*seat, error) {
	g, err := s.games.GetByID(ctx, nil, gameID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	white, err := s.profiles.GetByID(ctx, nil, g.WhitePlayerID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	black, err := s.profiles.GetByID(ctx, nil, g.BlackPlayerID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	st := &seat{game: g, white: white, black: black}
	switch userID {
	case white.UserID:
		st.me, st.color = white, models.White
	case black.UserID:
		st.me, st.color = black, models.Black
	default:
		return nil, ErrForbiddenOperation
	}
	return st, nil
}

func opposite(c models.Color) models.Color {
	if c == models.White {
		return models.Black
	}
	return models.White
}

func (s *gameService) FinalizeGame(ctx context.Context, userID uuid.UUID, input FinalizeGameInput) (*FinalizeOutcome, error) {
	if !input.Result.IsTerminal() {
		return nil, fmt.Errorf("%w: result must be white_wins, black_wins or draw", ErrValidationFailed)
	}
	st, err := s.takeSeat(ctx, userID, input.GameID)
	if err != nil {
		return nil, err
	}

	if input.FEN != nil && *input.FEN != "" {
		if err := rules.ValidateFEN(*input.FEN); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
		}
	}

	return s.finalize(ctx, st, repositories.FinalizeParams{
		GameID:             input.GameID,
		Result:             input.Result,
		FEN:                input.FEN,
		PGN:                input.PGN,
		WhiteTimeRemaining: input.WhiteTimeRemaining,
		BlackTimeRemaining: input.BlackTimeRemaining,
	})
}

// finalize closes the game and credits scores, counters and ratings in one transaction.
func (s *gameService) finalize(ctx context.Context, st *seat, params repositories.FinalizeParams) (*FinalizeOutcome, error) {
	g := st.game
	params.EndedAt = time.Now().UTC()
	outcome := &FinalizeOutcome{GameID: g.ID, Result: params.Result}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		ok, err := s.games.Finalize(ctx, exec, params)
		if err != nil {
			return err
		}
		if !ok {
			outcome.AlreadyFinalized = true
			return nil
		}

		whitePts, blackPts, _ := actualScores(params.Result)
		if g.TournamentID != nil {
			credits := []struct {
				id  uuid.UUID
				pts float64
			}{{g.WhitePlayerID, whitePts}, {g.BlackPlayerID, blackPts}}
			for _, c := range credits {
				registered, err := s.players.AddScore(ctx, exec, *g.TournamentID, c.id, c.pts)
				if err != nil {
					return fmt.Errorf("failed to credit tournament score: %w", err)
				}
				if !registered {
					s.logger.DebugContext(ctx, "player not registered, score not credited", slog.String("player_id", c.id.String()))
				}
			}
		}

		locked, err := s.profiles.GetManyForUpdate(ctx, exec, []uuid.UUID{g.WhitePlayerID, g.BlackPlayerID})
		if err != nil {
			return mapRepositoryError(err)
		}
		var white, black *models.Profile
		for _, p := range locked {
			switch p.ID {
			case g.WhitePlayerID:
				white = p
			case g.BlackPlayerID:
				black = p
			}
		}
		if white == nil || black == nil {
			return ErrProfileNotFound
		}

		change := CalculateElo(white.Rating, black.Rating, params.Result)
		whiteRes, blackRes := profileResults(params.Result, change)
		if err := s.profiles.ApplyResult(ctx, exec, white.ID, whiteRes); err != nil {
			return mapRepositoryError(err)
		}
		if err := s.profiles.ApplyResult(ctx, exec, black.ID, blackRes); err != nil {
			return mapRepositoryError(err)
		}
		outcome.Rating = &change
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.AlreadyFinalized {
		s.logger.InfoContext(ctx, "game already finalized", slog.String("game_id", g.ID.String()))
		return outcome, nil
	}

	g.Result = params.Result
	g.EndedAt = &params.EndedAt
	g.DrawOfferedBy = nil
	if params.FEN != nil {
		g.FEN = *params.FEN
	}
	if params.PGN != nil {
		g.PGN = *params.PGN
	}
	if params.WhiteTimeRemaining != nil {
		g.WhiteTimeRemaining = *params.WhiteTimeRemaining
	}
	if params.BlackTimeRemaining != nil {
		g.BlackTimeRemaining = *params.BlackTimeRemaining
	}

	s.logger.InfoContext(ctx, "game finalized",
		slog.String("game_id", g.ID.String()),
		slog.String("result", string(g.Result)),
		slog.Int("white_delta", outcome.Rating.WhiteDelta),
		slog.Int("black_delta", outcome.Rating.BlackDelta),
	)

	s.events.Publish(brackets.GameRoom(g.ID), brackets.EventGameFinalized, outcome)
	if g.TournamentID != nil {
		s.events.Publish(brackets.TournamentRoom(*g.TournamentID), brackets.EventGameFinalized, outcome)
	}
	s.events.Publish(brackets.StandingsRoom, brackets.EventStandingsUpdated, nil)

	if s.archive != nil {
		if _, err := s.archive.StoreGame(ctx, g, displayName(st.white), displayName(st.black)); err != nil {
			s.logger.WarnContext(ctx, "failed to archive game", slog.String("game_id", g.ID.String()), slog.Any("error", err))
		}
	}
	return outcome, nil
}

func (s *gameService) SetReady(ctx context.Context, userID, gameID uuid.UUID) (*models.Game, error) {
	st, err := s.takeSeat(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}
	if st.game.Result != models.ResultPending {
		return nil, ErrGameNotPending
	}

	var g *models.Game
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		ok, err := s.games.SetReady(ctx, exec, gameID, st.color)
		if err != nil {
			return err
		}
		if !ok {
			return ErrGameNotPending
		}
		if _, err := s.games.Start(ctx, exec, gameID, time.Now().UTC()); err != nil {
			return err
		}
		g, err = s.games.GetByID(ctx, exec, gameID)
		return mapRepositoryError(err)
	})
	if err != nil {
		return nil, err
	}

	if g.Result == models.ResultInProgress {
		s.logger.InfoContext(ctx, "game started", slog.String("game_id", gameID.String()))
	}
	s.events.Publish(brackets.GameRoom(gameID), brackets.EventGameUpdated, g)
	return g, nil
}

func (s *gameService) SubmitMove(ctx context.Context, userID uuid.UUID, input MoveInput) (*MoveOutcome, error) {
	st, err := s.takeSeat(ctx, userID, input.GameID)
	if err != nil {
		return nil, err
	}
	g := st.game
	if g.Result != models.ResultInProgress {
		return nil, ErrGameNotInProgress
	}

	turn, err := rules.SideToMove(g.FEN)
	if err != nil {
		return nil, ErrInvalidPosition
	}
	if turn != st.color {
		return nil, ErrNotYourTurn
	}

	move, err := rules.ApplyMove(g.FEN, g.PGN, input.UCI)
	switch {
	case errors.Is(err, rules.ErrIllegalMove):
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, input.UCI)
	case errors.Is(err, rules.ErrInvalidPosition):
		return nil, ErrInvalidPosition
	case err != nil:
		return nil, err
	}

	if move.Finished() {
		finalized, err := s.finalize(ctx, st, repositories.FinalizeParams{
			GameID:             g.ID,
			Result:             move.Result,
			FEN:                &move.FEN,
			PGN:                &move.PGN,
			WhiteTimeRemaining: input.WhiteTimeRemaining,
			BlackTimeRemaining: input.BlackTimeRemaining,
		})
		if err != nil {
			return nil, err
		}
		return &MoveOutcome{Game: g, Move: move.UCI, Finalized: finalized}, nil
	}

	ok, err := s.games.UpdatePosition(ctx, nil, repositories.PositionUpdate{
		GameID:             g.ID,
		PrevFEN:            g.FEN,
		FEN:                move.FEN,
		PGN:                move.PGN,
		WhiteTimeRemaining: input.WhiteTimeRemaining,
		BlackTimeRemaining: input.BlackTimeRemaining,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store move: %w", err)
	}
	if !ok {
		return nil, ErrGameMoveConflict
	}

	g.FEN = move.FEN
	g.PGN = move.PGN
	g.DrawOfferedBy = nil
	if input.WhiteTimeRemaining != nil {
		g.WhiteTimeRemaining = *input.WhiteTimeRemaining
	}
	if input.BlackTimeRemaining != nil {
		g.BlackTimeRemaining = *input.BlackTimeRemaining
	}

	s.events.Publish(brackets.GameRoom(g.ID), brackets.EventGameUpdated, g)
	return &MoveOutcome{Game: g, Move: move.UCI}, nil
}

func (s *gameService) Resign(ctx context.Context, userID, gameID uuid.UUID) (*FinalizeOutcome, error) {
	st, err := s.takeSeat(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}
	if st.game.Result != models.ResultInProgress {
		return nil, ErrGameNotInProgress
	}

	s.logger.InfoContext(ctx, "player resigned", slog.String("game_id", gameID.String()), slog.String("color", string(st.color)))
	return s.finalize(ctx, st, repositories.FinalizeParams{
		GameID: gameID,
		Result: models.WinFor(opposite(st.color)),
	})
}

func (s *gameService) OfferDraw(ctx context.Context, userID, gameID uuid.UUID) (*models.Game, error) {
	st, err := s.takeSeat(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}
	if st.game.Result != models.ResultInProgress {
		return nil, ErrGameNotInProgress
	}

	offeredBy := st.me.ID
	ok, err := s.games.SetDrawOffer(ctx, nil, gameID, &offeredBy)
	if err != nil {
		return nil, fmt.Errorf("failed to offer draw: %w", err)
	}
	if !ok {
		return nil, ErrGameNotInProgress
	}

	st.game.DrawOfferedBy = &offeredBy
	s.events.Publish(brackets.GameRoom(gameID), brackets.EventGameUpdated, st.game)
	return st.game, nil
}

func (s *gameService) AcceptDraw(ctx context.Context, userID, gameID uuid.UUID) (*FinalizeOutcome, error) {
	st, err := s.takeSeat(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}
	if st.game.Result != models.ResultInProgress {
		return nil, ErrGameNotInProgress
	}
	// принять можно только предложение соперника
	if st.game.DrawOfferedBy == nil || *st.game.DrawOfferedBy != st.game.Opponent(st.me.ID) {
		return nil, ErrNoDrawOffer
	}

	return s.finalize(ctx, st, repositories.FinalizeParams{
		GameID: gameID,
		Result: models.ResultDraw,
	})
}
