package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Dosada05/checkmate-cup/brackets"
	"github.com/Dosada05/checkmate-cup/models"
	"github.com/Dosada05/checkmate-cup/repositories"
	"github.com/Dosada05/checkmate-cup/storage"
	"github.com/google/uuid"
)

// EventPublisher рассылает события подписчикам websocket-комнат.
type EventPublisher interface {
	Publish(roomID, eventType string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, string, interface{}) {}

// GameArchiver хранит PGN и снимки чемпионов вне базы.
type GameArchiver interface {
	StoreGame(ctx context.Context, g *models.Game, white, black string) (*storage.UploadResult, error)
	StoreChampions(ctx context.Context, c *models.Champion, standing []*models.TournamentPlayer) (*storage.UploadResult, error)
	PurgeTournament(ctx context.Context, tournamentID uuid.UUID, gameIDs []uuid.UUID) error
}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// mapRepositoryError переводит ошибки репозиториев в ошибки сервисного слоя.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrGameNotFound):
		return ErrGameNotFound
	case errors.Is(err, repositories.ErrProfileNotFound):
		return ErrProfileNotFound
	case errors.Is(err, repositories.ErrTournamentPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrChampionNotFound):
		return ErrChampionsNotFound
	case errors.Is(err, repositories.ErrChampionAlreadyRecorded):
		return ErrChampionsAlreadyPublished
	case errors.Is(err, repositories.ErrGameInvalidPlayer),
		errors.Is(err, repositories.ErrTournamentPlayerInvalidRef):
		return ErrProfileNotFound
	case errors.Is(err, repositories.ErrProfileUsernameConflict):
		return ErrUsernameConflict
	case errors.Is(err, brackets.ErrNotEnoughPlayers):
		return ErrNotEnoughPlayers
	}
	return err
}

// clockSeconds reads the base minutes of a time control such as "10 | 5".
func clockSeconds(timeControl string) int {
	head := strings.TrimSpace(strings.SplitN(timeControl, "|", 2)[0])
	minutes, err := strconv.Atoi(head)
	if err != nil || minutes <= 0 {
		return models.DefaultClockSecond
	}
	return minutes * 60
}

func displayName(p *models.Profile) string {
	if p == nil {
		return "?"
	}
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Username
}
