package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/checkmate-cup/brackets"
	"github.com/Dosada05/checkmate-cup/models"
	"github.com/Dosada05/checkmate-cup/repositories"
	"github.com/google/uuid"
)

type CreateTournamentInput struct {
	Name        string
	Format      models.TournamentFormat
	TimeControl string
}

type UpdateTournamentInput struct {
	TournamentID uuid.UUID
	Format       *models.TournamentFormat
	TimeControl  *string
}

type CreateGameInput struct {
	TournamentID  uuid.UUID
	Round         int
	WhitePlayerID uuid.UUID
	BlackPlayerID uuid.UUID
}

type UpdatePlayerScoreInput struct {
	TournamentID uuid.UUID
	PlayerID     uuid.UUID
	Score        float64
}

// RoundResult - итог жеребьёвки: новый раунд и созданные партии.
type RoundResult struct {
	Tournament *models.Tournament  `json:"tournament"`
	Round      int                 `json:"round"`
	Games      []*models.Game      `json:"games"`
	Bye        *uuid.UUID          `json:"bye_player_id,omitempty"`
	Plan       *brackets.RoundPlan `json:"-"`
}

type RegisterResult struct {
	Count int `json:"count"`
	Added int `json:"added"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	UpdateTournament(ctx context.Context, input UpdateTournamentInput) (*models.Tournament, error)
	StartTournament(ctx context.Context, tournamentID uuid.UUID) (*RoundResult, error)
	AdvanceRound(ctx context.Context, tournamentID uuid.UUID) (*RoundResult, error)
	CreateGame(ctx context.Context, input CreateGameInput) (*models.Game, error)
	UpdatePlayerScore(ctx context.Context, input UpdatePlayerScoreInput) error
	PublishResults(ctx context.Context, tournamentID uuid.UUID) (*models.Champion, error)
	RegisterAllPlayers(ctx context.Context, tournamentID uuid.UUID) (*RegisterResult, error)
	ResetTournament(ctx context.Context, tournamentID uuid.UUID) error
	DeleteAllAccounts(ctx context.Context) (int, error)

	GetCurrentTournament(ctx context.Context) (*models.Tournament, error)
	GetTournament(ctx context.Context, tournamentID uuid.UUID) (*models.Tournament, error)
	ListPlayers(ctx context.Context, tournamentID uuid.UUID) ([]*models.TournamentPlayer, error)
	ListGames(ctx context.Context, tournamentID uuid.UUID, round *int) ([]*models.Game, error)
	ListChampions(ctx context.Context) ([]*models.Champion, error)
	GetBracket(ctx context.Context, tournamentID uuid.UUID) ([]*brackets.BracketRound, error)
}

type tournamentService struct {
	tx          repositories.Transactor
	tournaments repositories.TournamentRepository
	players     repositories.TournamentPlayerRepository
	games       repositories.GameRepository
	profiles    repositories.ProfileRepository
	champions   repositories.ChampionRepository
	roles       repositories.RoleRepository
	archive     GameArchiver
	events      EventPublisher
	logger      *slog.Logger
}

func NewTournamentService(
	tx repositories.Transactor,
	tournaments repositories.TournamentRepository,
	players repositories.TournamentPlayerRepository,
	games repositories.GameRepository,
	profiles repositories.ProfileRepository,
	champions repositories.ChampionRepository,
	roles repositories.RoleRepository,
	archive GameArchiver,
	events EventPublisher,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:          tx,
		tournaments: tournaments,
		players:     players,
		games:       games,
		profiles:    profiles,
		champions:   champions,
		roles:       roles,
		archive:     archive,
		events:      publisherOrNoop(events),
		logger:      loggerOrDefault(logger),
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	t := &models.Tournament{
		Name:        input.Name,
		Format:      input.Format,
		Status:      models.StatusRegistration,
		TimeControl: input.TimeControl,
	}
	if t.Name == "" {
		t.Name = models.DefaultTournamentName
	}
	if t.Format == "" {
		t.Format = models.FormatSwiss
	}
	if t.TimeControl == "" {
		t.TimeControl = models.DefaultTimeControl
	}
	if !t.Format.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidFormat, t.Format)
	}

	if err := s.tournaments.Create(ctx, nil, t); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.logger.InfoContext(ctx, "tournament created", slog.String("tournament_id", t.ID.String()), slog.String("format", string(t.Format)))
	s.events.Publish(brackets.TournamentRoom(t.ID), brackets.EventTournamentUpdated, t)
	return t, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, input UpdateTournamentInput) (*models.Tournament, error) {
	var updated *models.Tournament
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournaments.GetByIDForUpdate(ctx, exec, input.TournamentID)
		if err != nil {
			return mapRepositoryError(err)
		}
		if t.Status == models.StatusCompleted {
			return ErrTournamentCompleted
		}

		if input.Format != nil && *input.Format != t.Format {
			if !input.Format.IsValid() {
				return fmt.Errorf("%w: %q", ErrTournamentInvalidFormat, *input.Format)
			}
			// число раундов уже зафиксировано
			if t.Status != models.StatusRegistration {
				return ErrTournamentAlreadyStarted
			}
			t.Format = *input.Format
		}
		if input.TimeControl != nil && *input.TimeControl != "" {
			t.TimeControl = *input.TimeControl
		}

		if err := s.tournaments.Update(ctx, exec, t); err != nil {
			return mapRepositoryError(err)
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(brackets.TournamentRoom(updated.ID), brackets.EventTournamentUpdated, updated)
	return updated, nil
}

func (s *tournamentService) StartTournament(ctx context.Context, tournamentID uuid.UUID) (*RoundResult, error) {
	var result *RoundResult
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournaments.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return mapRepositoryError(err)
		}
		switch t.Status {
		case models.StatusRegistration:
		case models.StatusCompleted:
			return ErrTournamentCompleted
		default:
			return ErrTournamentAlreadyStarted
		}

		players, err := s.players.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return fmt.Errorf("failed to list players: %w", err)
		}
		eligible := brackets.Eligible(players)
		if len(eligible) < 2 {
			return fmt.Errorf("%w: found %d", ErrNotEnoughPlayers, len(eligible))
		}

		total, err := brackets.TotalRounds(t.Format, len(eligible))
		if err != nil {
			return mapRepositoryError(err)
		}
		t.Status = models.StatusInProgress
		t.CurrentRound = 1
		t.TotalRounds = total

		result, err = s.createRound(ctx, exec, t, players, nil)
		if err != nil {
			return err
		}
		return mapRepositoryError(s.tournaments.Update(ctx, exec, t))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament started",
		slog.String("tournament_id", tournamentID.String()),
		slog.Int("total_rounds", result.Tournament.TotalRounds),
		slog.Int("games", len(result.Games)),
	)
	s.announceRound(result)
	return result, nil
}

func (s *tournamentService) AdvanceRound(ctx context.Context, tournamentID uuid.UUID) (*RoundResult, error) {
	var result *RoundResult
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournaments.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return mapRepositoryError(err)
		}
		if t.Status != models.StatusInProgress {
			return ErrTournamentNotInProgress
		}

		unfinished, err := s.games.CountUnfinished(ctx, exec, t.ID, t.CurrentRound)
		if err != nil {
			return fmt.Errorf("failed to count unfinished games: %w", err)
		}
		if unfinished > 0 {
			return fmt.Errorf("%w: %d game(s) in round %d", ErrRoundNotComplete, unfinished, t.CurrentRound)
		}

		var games []*models.Game
		if t.Format == models.FormatKnockouts || t.Format.HasSuperLeague() {
			games, err = s.games.ListByTournament(ctx, exec, t.ID, nil)
			if err != nil {
				return fmt.Errorf("failed to list games: %w", err)
			}
		}

		if t.Format == models.FormatKnockouts {
			losers := roundLosers(games, t.CurrentRound)
			if err := s.players.MarkEliminated(ctx, exec, t.ID, losers); err != nil {
				return fmt.Errorf("failed to eliminate players: %w", err)
			}
		}

		players, err := s.players.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return fmt.Errorf("failed to list players: %w", err)
		}
		if t.CurrentRound >= brackets.LastRound(t, len(brackets.Eligible(players))) {
			return ErrNoMoreRounds
		}

		t.CurrentRound++
		result, err = s.createRound(ctx, exec, t, players, games)
		if err != nil {
			return err
		}
		return mapRepositoryError(s.tournaments.Update(ctx, exec, t))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "round advanced",
		slog.String("tournament_id", tournamentID.String()),
		slog.Int("round", result.Round),
		slog.Int("games", len(result.Games)),
	)
	s.announceRound(result)
	return result, nil
}

// createRound pairs t.CurrentRound, stores its games and credits a bye.
func (s *tournamentService) createRound(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, players []*models.TournamentPlayer, games []*models.Game) (*RoundResult, error) {
	generator := brackets.GeneratorFor(t, t.CurrentRound)
	plan, err := generator.Generate(brackets.GeneratePairingsParams{
		Tournament: t,
		Round:      t.CurrentRound,
		Players:    players,
		Games:      games,
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	clock := clockSeconds(t.TimeControl)
	tournamentID := t.ID
	newGames := make([]*models.Game, 0, len(plan.Pairings))
	for _, p := range plan.Pairings {
		newGames = append(newGames, &models.Game{
			TournamentID:       &tournamentID,
			Round:              plan.Round,
			WhitePlayerID:      p.WhiteID,
			BlackPlayerID:      p.BlackID,
			FEN:                models.StartingFEN,
			Result:             models.ResultPending,
			WhiteTimeRemaining: clock,
			BlackTimeRemaining: clock,
		})
	}
	if err := s.games.CreateBatch(ctx, exec, newGames); err != nil {
		return nil, mapRepositoryError(err)
	}

	if plan.ByeID != nil && plan.ByeCredited {
		if _, err := s.players.AddScore(ctx, exec, t.ID, *plan.ByeID, 1); err != nil {
			return nil, fmt.Errorf("failed to credit bye: %w", err)
		}
	}

	s.logger.DebugContext(ctx, "round paired",
		slog.String("tournament_id", t.ID.String()),
		slog.String("generator", generator.GetName()),
		slog.Int("round", plan.Round),
	)
	return &RoundResult{Tournament: t, Round: plan.Round, Games: newGames, Bye: plan.ByeID, Plan: plan}, nil
}

func (s *tournamentService) announceRound(result *RoundResult) {
	s.events.Publish(brackets.TournamentRoom(result.Tournament.ID), brackets.EventRoundStarted, result)
	s.events.Publish(brackets.StandingsRoom, brackets.EventStandingsUpdated, nil)
}

// roundLosers returns the players who lost a decisive game in the round. Draws eliminate nobody.
func roundLosers(games []*models.Game, round int) []uuid.UUID {
	losers := make([]uuid.UUID, 0)
	for _, g := range games {
		if g.Round != round {
			continue
		}
		switch g.Result {
		case models.ResultWhiteWins:
			losers = append(losers, g.BlackPlayerID)
		case models.ResultBlackWins:
			losers = append(losers, g.WhitePlayerID)
		}
	}
	return losers
}

func (s *tournamentService) CreateGame(ctx context.Context, input CreateGameInput) (*models.Game, error) {
	if input.WhitePlayerID == input.BlackPlayerID {
		return nil, ErrSamePlayer
	}

	t, err := s.tournaments.GetByID(ctx, nil, input.TournamentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if t.Status == models.StatusCompleted {
		return nil, ErrTournamentCompleted
	}

	round := input.Round
	if round <= 0 {
		round = t.CurrentRound
	}
	if round <= 0 {
		round = 1
	}

	clock := clockSeconds(t.TimeControl)
	g := &models.Game{
		TournamentID:       &t.ID,
		Round:              round,
		WhitePlayerID:      input.WhitePlayerID,
		BlackPlayerID:      input.BlackPlayerID,
		FEN:                models.StartingFEN,
		Result:             models.ResultPending,
		WhiteTimeRemaining: clock,
		BlackTimeRemaining: clock,
	}
	if err := s.games.CreateBatch(ctx, nil, []*models.Game{g}); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.events.Publish(brackets.TournamentRoom(t.ID), brackets.EventGameUpdated, g)
	return g, nil
}

func (s *tournamentService) UpdatePlayerScore(ctx context.Context, input UpdatePlayerScoreInput) error {
	if input.Score < 0 {
		return fmt.Errorf("%w: score must not be negative", ErrValidationFailed)
	}
	if err := s.players.SetScore(ctx, nil, input.TournamentID, input.PlayerID, input.Score); err != nil {
		return mapRepositoryError(err)
	}
	s.events.Publish(brackets.StandingsRoom, brackets.EventStandingsUpdated, nil)
	return nil
}

func (s *tournamentService) PublishResults(ctx context.Context, tournamentID uuid.UUID) (*models.Champion, error) {
	var champion *models.Champion
	var standing []*models.TournamentPlayer
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournaments.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return mapRepositoryError(err)
		}
		switch t.Status {
		case models.StatusCompleted:
			return ErrChampionsAlreadyPublished
		case models.StatusRegistration:
			return ErrTournamentNotInProgress
		}

		standing, err = s.players.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return fmt.Errorf("failed to list players: %w", err)
		}
		if len(standing) == 0 {
			return ErrNotEnoughPlayers
		}

		champion = &models.Champion{TournamentID: t.ID, Published: true}
		places := []**uuid.UUID{&champion.FirstPlaceID, &champion.SecondPlaceID, &champion.ThirdPlaceID}
		for i := 0; i < len(places) && i < len(standing); i++ {
			id := standing[i].PlayerID
			*places[i] = &id
		}
		if err := s.champions.Create(ctx, exec, champion); err != nil {
			return mapRepositoryError(err)
		}

		t.Status = models.StatusCompleted
		return mapRepositoryError(s.tournaments.Update(ctx, exec, t))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "results published", slog.String("tournament_id", tournamentID.String()))
	if s.archive != nil {
		if _, err := s.archive.StoreChampions(ctx, champion, standing); err != nil {
			s.logger.WarnContext(ctx, "failed to archive champions", slog.String("tournament_id", tournamentID.String()), slog.Any("error", err))
		}
	}
	s.events.Publish(brackets.TournamentRoom(tournamentID), brackets.EventChampionsReady, champion)
	return champion, nil
}

func (s *tournamentService) RegisterAllPlayers(ctx context.Context, tournamentID uuid.UUID) (*RegisterResult, error) {
	result := &RegisterResult{}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournaments.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return mapRepositoryError(err)
		}
		if t.Status == models.StatusCompleted {
			return ErrTournamentCompleted
		}

		ids, err := s.profiles.ListIDs(ctx, exec)
		if err != nil {
			return fmt.Errorf("failed to list profiles: %w", err)
		}
		added, err := s.players.Register(ctx, exec, t.ID, ids)
		if err != nil {
			return mapRepositoryError(err)
		}
		result.Count = len(ids)
		result.Added = added
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(brackets.TournamentRoom(tournamentID), brackets.EventTournamentUpdated, result)
	return result, nil
}

func (s *tournamentService) ResetTournament(ctx context.Context, tournamentID uuid.UUID) error {
	var gameIDs []uuid.UUID
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.tournaments.GetByIDForUpdate(ctx, exec, tournamentID); err != nil {
			return mapRepositoryError(err)
		}

		games, err := s.games.ListByTournament(ctx, exec, tournamentID, nil)
		if err != nil {
			return fmt.Errorf("failed to list games: %w", err)
		}
		for _, g := range games {
			gameIDs = append(gameIDs, g.ID)
		}

		if err := s.games.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return fmt.Errorf("failed to delete games: %w", err)
		}
		if err := s.players.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return fmt.Errorf("failed to delete registrations: %w", err)
		}
		if err := s.champions.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return fmt.Errorf("failed to delete champions: %w", err)
		}
		return mapRepositoryError(s.tournaments.Delete(ctx, exec, tournamentID))
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "tournament reset", slog.String("tournament_id", tournamentID.String()), slog.Int("games_deleted", len(gameIDs)))
	if s.archive != nil {
		if err := s.archive.PurgeTournament(ctx, tournamentID, gameIDs); err != nil {
			s.logger.WarnContext(ctx, "failed to purge tournament archive", slog.String("tournament_id", tournamentID.String()), slog.Any("error", err))
		}
	}
	s.events.Publish(brackets.TournamentRoom(tournamentID), brackets.EventTournamentUpdated, nil)
	s.events.Publish(brackets.StandingsRoom, brackets.EventStandingsUpdated, nil)
	return nil
}

func (s *tournamentService) DeleteAllAccounts(ctx context.Context) (int, error) {
	var deleted int
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		userIDs, err := s.profiles.DeleteAll(ctx, exec)
		if err != nil {
			return fmt.Errorf("failed to delete profiles: %w", err)
		}
		if _, err := s.roles.DeleteByRole(ctx, exec, models.RolePlayer); err != nil {
			return fmt.Errorf("failed to delete player roles: %w", err)
		}
		deleted = len(userIDs)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.WarnContext(ctx, "all accounts deleted", slog.Int("count", deleted))
	s.events.Publish(brackets.StandingsRoom, brackets.EventStandingsUpdated, nil)
	return deleted, nil
}

func (s *tournamentService) GetCurrentTournament(ctx context.Context) (*models.Tournament, error) {
	t, err := s.tournaments.GetLatest(ctx, nil)
	return t, mapRepositoryError(err)
}

func (s *tournamentService) GetTournament(ctx context.Context, tournamentID uuid.UUID) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, nil, tournamentID)
	return t, mapRepositoryError(err)
}

func (s *tournamentService) ListPlayers(ctx context.Context, tournamentID uuid.UUID) ([]*models.TournamentPlayer, error) {
	if _, err := s.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.players.ListByTournament(ctx, nil, tournamentID)
}

func (s *tournamentService) ListGames(ctx context.Context, tournamentID uuid.UUID, round *int) ([]*models.Game, error) {
	if _, err := s.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.games.ListByTournament(ctx, nil, tournamentID, round)
}

// GetBracket строит сетку турнира на выбывание по сыгранным партиям.
func (s *tournamentService) GetBracket(ctx context.Context, tournamentID uuid.UUID) ([]*brackets.BracketRound, error) {
	t, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Format != models.FormatKnockouts {
		return nil, fmt.Errorf("%w: %s has no bracket", ErrTournamentInvalidFormat, t.Format)
	}
	players, err := s.players.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	games, err := s.games.ListByTournament(ctx, nil, tournamentID, nil)
	if err != nil {
		return nil, err
	}
	rounds, err := brackets.BuildKnockoutBracket(t, players, games)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return rounds, nil
}

func (s *tournamentService) ListChampions(ctx context.Context) ([]*models.Champion, error) {
	return s.champions.ListPublished(ctx, nil)
}

