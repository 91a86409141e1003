package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/checkmate-cup/brackets"
	"github.com/Dosada05/checkmate-cup/models"
	"github.com/Dosada05/checkmate-cup/repositories"
	"golang.org/x/sync/errgroup"
)

// StandingsView - общая таблица и, после швейцарского этапа, таблица Super League.
type StandingsView struct {
	Standings   []models.Standing            `json:"standings"`
	Tournament  *models.Tournament           `json:"tournament,omitempty"`
	SuperLeague []models.SuperLeagueStanding `json:"super_league,omitempty"`
}

type StandingsService interface {
	GetStandings(ctx context.Context) (*StandingsView, error)
}

type standingsService struct {
	tournaments repositories.TournamentRepository
	players     repositories.TournamentPlayerRepository
	games       repositories.GameRepository
	profiles    repositories.ProfileRepository
	logger      *slog.Logger
}

func NewStandingsService(
	tournaments repositories.TournamentRepository,
	players repositories.TournamentPlayerRepository,
	games repositories.GameRepository,
	profiles repositories.ProfileRepository,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		tournaments: tournaments,
		players:     players,
		games:       games,
		profiles:    profiles,
		logger:      loggerOrDefault(logger),
	}
}

func (s *standingsService) GetStandings(ctx context.Context) (*StandingsView, error) {
	var profiles []*models.Profile
	var latest *models.Tournament

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Профили
	g.Go(func() error {
		var err error
		profiles, err = s.profiles.ListStandings(gCtx, nil)
		if err != nil {
			return fmt.Errorf("failed to list profiles: %w", err)
		}
		return nil
	})

	// 2. Последний турнир
	g.Go(func() error {
		t, err := s.tournaments.GetLatest(gCtx, nil)
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load latest tournament: %w", err)
		}
		latest = t
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "standings load failed", slog.Any("error", err))
		return nil, err
	}

	view := &StandingsView{Standings: rankProfiles(profiles), Tournament: latest}
	if latest == nil || !latest.InSuperLeague() {
		return view, nil
	}

	var players []*models.TournamentPlayer
	var games []*models.Game
	g, gCtx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.players.ListByTournament(gCtx, nil, latest.ID)
		return err
	})
	g.Go(func() error {
		var err error
		games, err = s.games.ListByTournament(gCtx, nil, latest.ID, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load super league data: %w", err)
	}

	view.SuperLeague = brackets.ComputeSuperLeague(latest, players, games)
	return view, nil
}

// rankProfiles expects profiles already ordered by score, then games won.
func rankProfiles(profiles []*models.Profile) []models.Standing {
	rows := make([]models.Standing, 0, len(profiles))
	for i, p := range profiles {
		initials := p.AvatarInitials
		if initials == nil || *initials == "" {
			v := models.Initials(displayName(p))
			initials = &v
		}
		rows = append(rows, models.Standing{
			Position:    i + 1,
			ProfileID:   p.ID,
			Username:    p.Username,
			FullName:    p.FullName,
			Initials:    initials,
			Score:       p.Score,
			Rating:      p.Rating,
			GamesPlayed: p.GamesPlayed,
			GamesWon:    p.GamesWon,
			GamesLost:   p.GamesLost,
			GamesDrawn:  p.GamesDrawn,
		})
	}
	return rows
}
