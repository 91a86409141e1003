package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/google/uuid"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error)
	GetLatest(ctx context.Context, exec SQLExecutor) (*models.Tournament, error)
	Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, format, status, time_control,
	COALESCE(current_round, 0), COALESCE(total_rounds, 0), created_at, updated_at`

func scanTournament(row interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Format, &t.Status, &t.TimeControl,
		&t.CurrentRound, &t.TotalRounds, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, format, status, time_control, current_round, total_rounds)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return r.getExecutor(exec).QueryRowContext(ctx, query,
		t.Name, t.Format, t.Status, t.TimeControl, t.CurrentRound, t.TotalRounds,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) GetLatest(ctx context.Context, exec SQLExecutor) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY created_at DESC LIMIT 1`
	return scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query))
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1,
			format = $2,
			status = $3,
			time_control = $4,
			current_round = $5,
			total_rounds = $6,
			updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		t.Name, t.Format, t.Status, t.TimeControl, t.CurrentRound, t.TotalRounds, t.ID,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTournamentNotFound
	}
	return err
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
