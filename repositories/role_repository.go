package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/google/uuid"
)

type RoleRepository interface {
	HasRole(ctx context.Context, exec SQLExecutor, userID uuid.UUID, role models.UserRole) (bool, error)
	// Grant is idempotent.
	Grant(ctx context.Context, exec SQLExecutor, userID uuid.UUID, role models.UserRole) error
	DeleteByRole(ctx context.Context, exec SQLExecutor, role models.UserRole) (int, error)
}

type postgresRoleRepository struct {
	db *sql.DB
}

func NewPostgresRoleRepository(db *sql.DB) RoleRepository {
	return &postgresRoleRepository{db: db}
}

func (r *postgresRoleRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoleRepository) HasRole(ctx context.Context, exec SQLExecutor, userID uuid.UUID, role models.UserRole) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`

	var exists bool
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, userID, role).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check role %s for user %s: %w", role, userID, err)
	}
	return exists, nil
}

func (r *postgresRoleRepository) Grant(ctx context.Context, exec SQLExecutor, userID uuid.UUID, role models.UserRole) error {
	query := `
		INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING`

	_, err := r.getExecutor(exec).ExecContext(ctx, query, userID, role)
	return err
}

func (r *postgresRoleRepository) DeleteByRole(ctx context.Context, exec SQLExecutor, role models.UserRole) (int, error) {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM user_roles WHERE role = $1`, role)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(n), nil
}
