package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/google/uuid"
)

var (
	ErrChampionNotFound        = errors.New("champions not found")
	ErrChampionAlreadyRecorded = errors.New("champions already recorded for this tournament")
)

type ChampionRepository interface {
	// Create fails with ErrChampionAlreadyRecorded when the tournament already has a record.
	Create(ctx context.Context, exec SQLExecutor, champion *models.Champion) error
	GetByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) (*models.Champion, error)
	ListPublished(ctx context.Context, exec SQLExecutor) ([]*models.Champion, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) error
}

type postgresChampionRepository struct {
	db *sql.DB
}

func NewPostgresChampionRepository(db *sql.DB) ChampionRepository {
	return &postgresChampionRepository{db: db}
}

func (r *postgresChampionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const championColumns = `id, tournament_id, first_place_id, second_place_id, third_place_id, COALESCE(published, FALSE), created_at`

func scanChampion(row interface{ Scan(...interface{}) error }) (*models.Champion, error) {
	c := &models.Champion{}
	var first, second, third uuid.NullUUID
	if err := row.Scan(&c.ID, &c.TournamentID, &first, &second, &third, &c.Published, &c.CreatedAt); err != nil {
		return nil, err
	}
	if first.Valid {
		c.FirstPlaceID = &first.UUID
	}
	if second.Valid {
		c.SecondPlaceID = &second.UUID
	}
	if third.Valid {
		c.ThirdPlaceID = &third.UUID
	}
	return c, nil
}

func (r *postgresChampionRepository) Create(ctx context.Context, exec SQLExecutor, c *models.Champion) error {
	query := `
		INSERT INTO champions (tournament_id, first_place_id, second_place_id, third_place_id, published)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		c.TournamentID, c.FirstPlaceID, c.SecondPlaceID, c.ThirdPlaceID, c.Published,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if code, ok := pqErrorCode(err); ok {
			switch code {
			case pqUniqueViolation:
				return ErrChampionAlreadyRecorded
			case pqForeignKeyViolation:
				return ErrTournamentNotFound
			}
		}
		return fmt.Errorf("failed to create champions record: %w", err)
	}
	return nil
}

func (r *postgresChampionRepository) GetByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) (*models.Champion, error) {
	query := `SELECT ` + championColumns + ` FROM champions WHERE tournament_id = $1`

	c, err := scanChampion(r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChampionNotFound
	}
	return c, err
}

func (r *postgresChampionRepository) ListPublished(ctx context.Context, exec SQLExecutor) ([]*models.Champion, error) {
	query := `SELECT ` + championColumns + ` FROM champions WHERE published ORDER BY created_at DESC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	champions := make([]*models.Champion, 0)
	for rows.Next() {
		c, err := scanChampion(rows)
		if err != nil {
			return nil, err
		}
		champions = append(champions, c)
	}
	return champions, rows.Err()
}

func (r *postgresChampionRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM champions WHERE tournament_id = $1`, tournamentID)
	return err
}
