package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/Dosada05/checkmate-cup/repositories"
	"github.com/google/uuid"
)

// Identity - данные пользователя из проверенного токена.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	Username  string
	FullName  string
	AvatarURL string
}

type ProfileService interface {
	// EnsureProfile returns the caller's profile, creating it on first sign-in.
	EnsureProfile(ctx context.Context, identity Identity) (*models.Profile, error)
	GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
}

type profileService struct {
	tx       repositories.Transactor
	profiles repositories.ProfileRepository
	roles    repositories.RoleRepository
	logger   *slog.Logger
}

func NewProfileService(tx repositories.Transactor, profiles repositories.ProfileRepository, roles repositories.RoleRepository, logger *slog.Logger) ProfileService {
	return &profileService{tx: tx, profiles: profiles, roles: roles, logger: loggerOrDefault(logger)}
}

// baseUsername picks the claimed username, then the e-mail local part, then a short id.
func baseUsername(identity Identity) string {
	if u := strings.TrimSpace(identity.Username); u != "" {
		return u
	}
	if local, _, ok := strings.Cut(identity.Email, "@"); ok && local != "" {
		return local
	}
	return "player-" + identity.UserID.String()[:8]
}

func (s *profileService) EnsureProfile(ctx context.Context, identity Identity) (*models.Profile, error) {
	if identity.UserID == uuid.Nil {
		return nil, ErrAuthenticationFailed
	}

	existing, err := s.profiles.GetByUserID(ctx, nil, identity.UserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	base := baseUsername(identity)
	p := &models.Profile{
		UserID:   identity.UserID,
		Username: base,
		Rating:   models.DefaultRating,
	}
	if identity.FullName != "" {
		p.FullName = &identity.FullName
	}
	if identity.AvatarURL != "" {
		p.AvatarURL = &identity.AvatarURL
	}
	initials := models.Initials(displayName(p))
	p.AvatarInitials = &initials

	// имя может быть занято, пробуем суффикс из user id
	candidates := []string{base, base + "-" + identity.UserID.String()[:4], base + "-" + identity.UserID.String()[:8]}
	for _, name := range candidates {
		p.Username = name
		err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if err := s.profiles.Create(ctx, exec, p); err != nil {
				return err
			}
			return s.roles.Grant(ctx, exec, identity.UserID, models.RolePlayer)
		})
		if err == nil {
			s.logger.InfoContext(ctx, "profile created", slog.String("profile_id", p.ID.String()), slog.String("username", p.Username))
			return p, nil
		}
		if errors.Is(err, repositories.ErrProfileUserConflict) {
			// параллельный запрос успел создать профиль
			return s.profiles.GetByUserID(ctx, nil, identity.UserID)
		}
		if !errors.Is(err, repositories.ErrProfileUsernameConflict) {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
	}
	return nil, ErrUsernameConflict
}

func (s *profileService) GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	p, err := s.profiles.GetByID(ctx, nil, profileID)
	return p, mapRepositoryError(err)
}
