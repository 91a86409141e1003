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
	ErrProfileNotFound         = errors.New("profile not found")
	ErrProfileUsernameConflict = errors.New("username is already in use")
	ErrProfileUserConflict     = errors.New("profile already exists for this user")
)

type ProfileRepository interface {
	Create(ctx context.Context, exec SQLExecutor, profile *models.Profile) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Profile, error)
	GetByUserID(ctx context.Context, exec SQLExecutor, userID uuid.UUID) (*models.Profile, error)
	// GetManyForUpdate locks the rows in id order so two finalizers never deadlock.
	GetManyForUpdate(ctx context.Context, exec SQLExecutor, ids []uuid.UUID) ([]*models.Profile, error)
	ListIDs(ctx context.Context, exec SQLExecutor) ([]uuid.UUID, error)
	// ListStandings orders by score, then games won, both descending.
	ListStandings(ctx context.Context, exec SQLExecutor) ([]*models.Profile, error)
	ApplyResult(ctx context.Context, exec SQLExecutor, id uuid.UUID, res models.ProfileResult) error
	// DeleteAll removes every profile and returns their user ids.
	DeleteAll(ctx context.Context, exec SQLExecutor) ([]uuid.UUID, error)
}

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

func (r *postgresProfileRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const profileColumns = `
	id, user_id, username, full_name, avatar_url, avatar_initials,
	COALESCE(games_played, 0), COALESCE(games_won, 0), COALESCE(games_lost, 0), COALESCE(games_drawn, 0),
	COALESCE(rating, 1200), COALESCE(score, 0), rank, created_at, updated_at`

func scanProfile(row interface{ Scan(...interface{}) error }) (*models.Profile, error) {
	p := &models.Profile{}
	var fullName, avatarURL, initials sql.NullString
	var rank sql.NullInt64
	err := row.Scan(
		&p.ID, &p.UserID, &p.Username, &fullName, &avatarURL, &initials,
		&p.GamesPlayed, &p.GamesWon, &p.GamesLost, &p.GamesDrawn,
		&p.Rating, &p.Score, &rank, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if fullName.Valid {
		p.FullName = &fullName.String
	}
	if avatarURL.Valid {
		p.AvatarURL = &avatarURL.String
	}
	if initials.Valid {
		p.AvatarInitials = &initials.String
	}
	if rank.Valid {
		v := int(rank.Int64)
		p.Rank = &v
	}
	return p, nil
}

func (r *postgresProfileRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Profile) error {
	query := `
		INSERT INTO profiles (user_id, username, full_name, avatar_url, avatar_initials, rating)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		p.UserID, p.Username, p.FullName, p.AvatarURL, p.AvatarInitials, p.Rating,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if code, ok := pqErrorCode(err); ok && code == pqUniqueViolation {
			if pqConstraint(err) == "profiles_user_id_key" {
				return ErrProfileUserConflict
			}
			return ErrProfileUsernameConflict
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *postgresProfileRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	p, err := scanProfile(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

func (r *postgresProfileRepository) GetByUserID(ctx context.Context, exec SQLExecutor, userID uuid.UUID) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	p, err := scanProfile(r.getExecutor(exec).QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

func (r *postgresProfileRepository) GetManyForUpdate(ctx context.Context, exec SQLExecutor, ids []uuid.UUID) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + `
		FROM profiles
		WHERE id = ANY($1::uuid[])
		ORDER BY id
		FOR UPDATE`

	return r.list(ctx, exec, query, uuidStrings(ids))
}

func (r *postgresProfileRepository) ListStandings(ctx context.Context, exec SQLExecutor) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + `
		FROM profiles
		ORDER BY score DESC NULLS LAST, games_won DESC NULLS LAST`

	return r.list(ctx, exec, query)
}

func (r *postgresProfileRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Profile, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]*models.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *postgresProfileRepository) ListIDs(ctx context.Context, exec SQLExecutor) ([]uuid.UUID, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, `SELECT id FROM profiles ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresProfileRepository) ApplyResult(ctx context.Context, exec SQLExecutor, id uuid.UUID, res models.ProfileResult) error {
	query := `
		UPDATE profiles SET
			rating = $2,
			games_played = COALESCE(games_played, 0) + 1,
			games_won = COALESCE(games_won, 0) + $3,
			games_lost = COALESCE(games_lost, 0) + $4,
			games_drawn = COALESCE(games_drawn, 0) + $5,
			score = COALESCE(score, 0) + $6,
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		id, res.NewRating, res.Won, res.Lost, res.Drawn, res.ScoreDelta,
	)
	if err != nil {
		return fmt.Errorf("failed to apply result to profile %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}

func (r *postgresProfileRepository) DeleteAll(ctx context.Context, exec SQLExecutor) ([]uuid.UUID, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, `DELETE FROM profiles RETURNING user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	userIDs := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}
