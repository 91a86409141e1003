package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/Dosada05/checkmate-cup/repositories"
	"github.com/Dosada05/checkmate-cup/utils"
	"github.com/google/uuid"
)

type AccessService interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	// AuthorizeAdmin accepts an admin identity or, when a hash is configured, the legacy admin key.
	// No identity and no valid key gives ErrAuthenticationFailed; a non-admin identity gives ErrAdminRequired.
	AuthorizeAdmin(ctx context.Context, userID *uuid.UUID, adminKey string) error
	// EnsureAdmin grants the admin role, used to bootstrap the first operator.
	EnsureAdmin(ctx context.Context, userID uuid.UUID) error
}

type accessService struct {
	roles        repositories.RoleRepository
	adminKeyHash string
	logger       *slog.Logger
}

func NewAccessService(roles repositories.RoleRepository, adminKeyHash string, logger *slog.Logger) AccessService {
	return &accessService{roles: roles, adminKeyHash: adminKeyHash, logger: loggerOrDefault(logger)}
}

func (s *accessService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	ok, err := s.roles.HasRole(ctx, nil, userID, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return ok, nil
}

func (s *accessService) AuthorizeAdmin(ctx context.Context, userID *uuid.UUID, adminKey string) error {
	if userID != nil {
		ok, err := s.IsAdmin(ctx, *userID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	if adminKey != "" && utils.CheckSecretHash(adminKey, s.adminKeyHash) {
		s.logger.InfoContext(ctx, "admin action authorized by legacy key")
		return nil
	}

	if userID == nil {
		return ErrAuthenticationFailed
	}
	s.logger.WarnContext(ctx, "admin action denied", slog.String("user_id", userID.String()))
	return ErrAdminRequired
}

func (s *accessService) EnsureAdmin(ctx context.Context, userID uuid.UUID) error {
	if err := s.roles.Grant(ctx, nil, userID, models.RoleAdmin); err != nil {
		return fmt.Errorf("failed to grant admin role: %w", err)
	}
	s.logger.Info("admin role ensured", slog.String("user_id", userID.String()))
	return nil
}
