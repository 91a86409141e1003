package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/google/uuid"
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameInvalidPlayer = errors.New("invalid player or tournament reference for game")
)

// FinalizeParams - терминальный результат партии. Nil-поля не меняют сохранённые значения.
type FinalizeParams struct {
	GameID             uuid.UUID
	Result             models.GameResult
	FEN                *string
	PGN                *string
	WhiteTimeRemaining *int
	BlackTimeRemaining *int
	EndedAt            time.Time
}

// PositionUpdate stores a move. PrevFEN guards against concurrent writers.
type PositionUpdate struct {
	GameID             uuid.UUID
	PrevFEN            string
	FEN                string
	PGN                string
	WhiteTimeRemaining *int
	BlackTimeRemaining *int
}

type GameRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, games []*models.Game) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Game, error)
	// ListByTournament returns games of the tournament, optionally of a single round.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, round *int) ([]*models.Game, error)
	CountUnfinished(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, round int) (int, error)
	// Finalize applies a terminal result only if the game is still pending or in progress.
	// It reports false when another writer finalized the game first.
	Finalize(ctx context.Context, exec SQLExecutor, params FinalizeParams) (bool, error)
	SetReady(ctx context.Context, exec SQLExecutor, id uuid.UUID, side models.Color) (bool, error)
	// Start moves a pending game with both ready flags to in_progress.
	Start(ctx context.Context, exec SQLExecutor, id uuid.UUID, startedAt time.Time) (bool, error)
	UpdatePosition(ctx context.Context, exec SQLExecutor, update PositionUpdate) (bool, error)
	SetDrawOffer(ctx context.Context, exec SQLExecutor, id uuid.UUID, offeredBy *uuid.UUID) (bool, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const gameColumns = `
	id, tournament_id, COALESCE(round, 0), white_player_id, black_player_id,
	COALESCE(fen, ''), COALESCE(pgn, ''), result,
	COALESCE(white_ready, FALSE), COALESCE(black_ready, FALSE),
	COALESCE(white_time_remaining, 0), COALESCE(black_time_remaining, 0),
	draw_offered_by, started_at, ended_at, created_at`

func scanGame(row interface{ Scan(...interface{}) error }) (*models.Game, error) {
	g := &models.Game{}
	var tournamentID, drawOfferedBy uuid.NullUUID
	var startedAt, endedAt sql.NullTime
	err := row.Scan(
		&g.ID, &tournamentID, &g.Round, &g.WhitePlayerID, &g.BlackPlayerID,
		&g.FEN, &g.PGN, &g.Result,
		&g.WhiteReady, &g.BlackReady,
		&g.WhiteTimeRemaining, &g.BlackTimeRemaining,
		&drawOfferedBy, &startedAt, &endedAt, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tournamentID.Valid {
		g.TournamentID = &tournamentID.UUID
	}
	if drawOfferedBy.Valid {
		g.DrawOfferedBy = &drawOfferedBy.UUID
	}
	if startedAt.Valid {
		g.StartedAt = &startedAt.Time
	}
	if endedAt.Valid {
		g.EndedAt = &endedAt.Time
	}
	return g, nil
}

func (r *postgresGameRepository) CreateBatch(ctx context.Context, exec SQLExecutor, games []*models.Game) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO games (
			tournament_id, round, white_player_id, black_player_id, fen, pgn, result,
			white_time_remaining, black_time_remaining
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	for _, g := range games {
		err := executor.QueryRowContext(ctx, query,
			g.TournamentID, g.Round, g.WhitePlayerID, g.BlackPlayerID, g.FEN, g.PGN, g.Result,
			g.WhiteTimeRemaining, g.BlackTimeRemaining,
		).Scan(&g.ID, &g.CreatedAt)
		if err != nil {
			if code, ok := pqErrorCode(err); ok && code == pqForeignKeyViolation {
				return ErrGameInvalidPlayer
			}
			return fmt.Errorf("failed to create game for round %d: %w", g.Round, err)
		}
	}
	return nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	g, err := scanGame(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	return g, err
}

func (r *postgresGameRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, round *int) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if round != nil {
		query += ` AND round = $2`
		args = append(args, *round)
	}
	query += ` ORDER BY round ASC, created_at ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (r *postgresGameRepository) CountUnfinished(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, round int) (int, error) {
	query := `
		SELECT COUNT(*) FROM games
		WHERE tournament_id = $1 AND round = $2 AND result IN ('pending', 'in_progress')`

	var n int
	err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, round).Scan(&n)
	return n, err
}

func (r *postgresGameRepository) Finalize(ctx context.Context, exec SQLExecutor, p FinalizeParams) (bool, error) {
	query := `
		UPDATE games SET
			result = $2,
			fen = COALESCE($3, fen),
			pgn = COALESCE($4, pgn),
			white_time_remaining = COALESCE($5, white_time_remaining),
			black_time_remaining = COALESCE($6, black_time_remaining),
			ended_at = $7,
			draw_offered_by = NULL
		WHERE id = $1 AND result IN ('pending', 'in_progress')`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		p.GameID, p.Result, p.FEN, p.PGN, p.WhiteTimeRemaining, p.BlackTimeRemaining, p.EndedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to finalize game %s: %w", p.GameID, err)
	}
	return applied(result)
}

func (r *postgresGameRepository) SetReady(ctx context.Context, exec SQLExecutor, id uuid.UUID, side models.Color) (bool, error) {
	column := "white_ready"
	if side == models.Black {
		column = "black_ready"
	}
	query := `UPDATE games SET ` + column + ` = TRUE WHERE id = $1 AND result = 'pending'`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	return applied(result)
}

func (r *postgresGameRepository) Start(ctx context.Context, exec SQLExecutor, id uuid.UUID, startedAt time.Time) (bool, error) {
	query := `
		UPDATE games SET result = 'in_progress', started_at = $2
		WHERE id = $1 AND result = 'pending' AND white_ready AND black_ready`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, id, startedAt)
	if err != nil {
		return false, err
	}
	return applied(result)
}

func (r *postgresGameRepository) UpdatePosition(ctx context.Context, exec SQLExecutor, u PositionUpdate) (bool, error) {
	query := `
		UPDATE games SET
			fen = $3,
			pgn = $4,
			white_time_remaining = COALESCE($5, white_time_remaining),
			black_time_remaining = COALESCE($6, black_time_remaining),
			draw_offered_by = NULL
		WHERE id = $1 AND result = 'in_progress' AND COALESCE(fen, '') = $2`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		u.GameID, u.PrevFEN, u.FEN, u.PGN, u.WhiteTimeRemaining, u.BlackTimeRemaining,
	)
	if err != nil {
		return false, err
	}
	return applied(result)
}

func (r *postgresGameRepository) SetDrawOffer(ctx context.Context, exec SQLExecutor, id uuid.UUID, offeredBy *uuid.UUID) (bool, error) {
	query := `UPDATE games SET draw_offered_by = $2 WHERE id = $1 AND result = 'in_progress'`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, id, offeredBy)
	if err != nil {
		return false, err
	}
	return applied(result)
}

func (r *postgresGameRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM games WHERE tournament_id = $1`, tournamentID)
	return err
}

func applied(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n > 0, nil
}
