package models

import (
	"time"

	"github.com/google/uuid"
)

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusInProgress   TournamentStatus = "in_progress"
	StatusCompleted    TournamentStatus = "completed"
)

// TournamentFormat соответствует ENUM tournament_format.
type TournamentFormat string

const (
	FormatSwiss              TournamentFormat = "swiss"
	FormatKnockouts          TournamentFormat = "knockouts"
	FormatRoundRobinPlayoffs TournamentFormat = "round_robin_playoffs"
	FormatSwissPlayoffs      TournamentFormat = "swiss_playoffs"
	FormatSwissSuperLeague   TournamentFormat = "swiss_super_league"
	FormatArena              TournamentFormat = "arena"
)

const (
	DefaultTournamentName = "Checkmate Cup 2K25"
	DefaultTimeControl    = "10 | 5"
)

func (f TournamentFormat) IsValid() bool {
	switch f {
	case FormatSwiss, FormatKnockouts, FormatRoundRobinPlayoffs,
		FormatSwissPlayoffs, FormatSwissSuperLeague, FormatArena:
		return true
	}
	return false
}

// HasSuperLeague reports whether the format finishes with a round robin among the top players.
func (f TournamentFormat) HasSuperLeague() bool {
	return f == FormatSwissSuperLeague || f == FormatSwissPlayoffs
}

func (s TournamentStatus) IsValid() bool {
	switch s {
	case StatusRegistration, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Tournament представляет турнир.
type Tournament struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	Format       TournamentFormat `json:"format"`
	Status       TournamentStatus `json:"status"`
	TimeControl  string           `json:"time_control"`
	CurrentRound int              `json:"current_round"`
	TotalRounds  int              `json:"total_rounds"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// InSuperLeague is true once the Swiss phase is over for a super league format.
func (t *Tournament) InSuperLeague() bool {
	return t.Format.HasSuperLeague() && t.TotalRounds > 0 && t.CurrentRound > t.TotalRounds
}
