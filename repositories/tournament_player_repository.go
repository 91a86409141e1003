package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrTournamentPlayerNotFound   = errors.New("tournament registration not found")
	ErrTournamentPlayerInvalidRef = errors.New("invalid tournament or player reference")
)

type TournamentPlayerRepository interface {
	// Register inserts missing registrations with score 0 and returns how many were added.
	Register(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, playerIDs []uuid.UUID) (int, error)
	// ListByTournament returns registrations ordered by score descending, ties by registration time.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]*models.TournamentPlayer, error)
	Get(ctx context.Context, exec SQLExecutor, tournamentID, playerID uuid.UUID) (*models.TournamentPlayer, error)
	// AddScore reports false when the player is not registered.
	AddScore(ctx context.Context, exec SQLExecutor, tournamentID, playerID uuid.UUID, delta float64) (bool, error)
	SetScore(ctx context.Context, exec SQLExecutor, tournamentID, playerID uuid.UUID, score float64) error
	MarkEliminated(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, playerIDs []uuid.UUID) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) error
}

type postgresTournamentPlayerRepository struct {
	db *sql.DB
}

func NewPostgresTournamentPlayerRepository(db *sql.DB) TournamentPlayerRepository {
	return &postgresTournamentPlayerRepository{db: db}
}

func (r *postgresTournamentPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func uuidStrings(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

const tournamentPlayerColumns = `
	id, tournament_id, player_id, COALESCE(score, 0), COALESCE(is_eliminated, FALSE),
	buchholz, sonneborn_berger, rank, registered_at`

func scanTournamentPlayer(row interface{ Scan(...interface{}) error }) (*models.TournamentPlayer, error) {
	tp := &models.TournamentPlayer{}
	var buchholz, sb sql.NullFloat64
	var rank sql.NullInt64
	err := row.Scan(
		&tp.ID, &tp.TournamentID, &tp.PlayerID, &tp.Score, &tp.IsEliminated,
		&buchholz, &sb, &rank, &tp.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	if buchholz.Valid {
		tp.Buchholz = &buchholz.Float64
	}
	if sb.Valid {
		tp.SonnebornBerger = &sb.Float64
	}
	if rank.Valid {
		v := int(rank.Int64)
		tp.Rank = &v
	}
	return tp, nil
}

func (r *postgresTournamentPlayerRepository) Register(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, playerIDs []uuid.UUID) (int, error) {
	if len(playerIDs) == 0 {
		return 0, nil
	}
	query := `
		INSERT INTO tournament_players (tournament_id, player_id, score)
		SELECT $1, p, 0 FROM unnest($2::uuid[]) AS p
		ON CONFLICT (tournament_id, player_id) DO NOTHING`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID, uuidStrings(playerIDs))
	if err != nil {
		if code, ok := pqErrorCode(err); ok && code == pqForeignKeyViolation {
			return 0, ErrTournamentPlayerInvalidRef
		}
		return 0, fmt.Errorf("failed to register players: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(n), nil
}

func (r *postgresTournamentPlayerRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]*models.TournamentPlayer, error) {
	query := `SELECT ` + tournamentPlayerColumns + `
		FROM tournament_players
		WHERE tournament_id = $1
		ORDER BY score DESC, registered_at ASC, player_id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.TournamentPlayer, 0)
	for rows.Next() {
		tp, err := scanTournamentPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, tp)
	}
	return players, rows.Err()
}

func (r *postgresTournamentPlayerRepository) Get(ctx context.Context, exec SQLExecutor, tournamentID, playerID uuid.UUID) (*models.TournamentPlayer, error) {
	query := `SELECT ` + tournamentPlayerColumns + `
		FROM tournament_players
		WHERE tournament_id = $1 AND player_id = $2`

	tp, err := scanTournamentPlayer(r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, playerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournamentPlayerNotFound
	}
	return tp, err
}

func (r *postgresTournamentPlayerRepository) AddScore(ctx context.Context, exec SQLExecutor, tournamentID, playerID uuid.UUID, delta float64) (bool, error) {
	query := `
		UPDATE tournament_players SET score = COALESCE(score, 0) + $1
		WHERE tournament_id = $2 AND player_id = $3`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, delta, tournamentID, playerID)
	if err != nil {
		return false, err
	}
	if err := checkAffectedRows(result, ErrTournamentPlayerNotFound); err != nil {
		if errors.Is(err, ErrTournamentPlayerNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *postgresTournamentPlayerRepository) SetScore(ctx context.Context, exec SQLExecutor, tournamentID, playerID uuid.UUID, score float64) error {
	query := `UPDATE tournament_players SET score = $1 WHERE tournament_id = $2 AND player_id = $3`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, score, tournamentID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentPlayerNotFound)
}

func (r *postgresTournamentPlayerRepository) MarkEliminated(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, playerIDs []uuid.UUID) error {
	if len(playerIDs) == 0 {
		return nil
	}
	query := `
		UPDATE tournament_players SET is_eliminated = TRUE
		WHERE tournament_id = $1 AND player_id = ANY($2::uuid[])`

	_, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID, uuidStrings(playerIDs))
	return err
}

func (r *postgresTournamentPlayerRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM tournament_players WHERE tournament_id = $1`, tournamentID)
	return err
}
