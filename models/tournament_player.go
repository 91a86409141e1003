package models

import (
	"time"

	"github.com/google/uuid"
)

// TournamentPlayer - регистрация игрока в турнире.
type TournamentPlayer struct {
	ID              uuid.UUID `json:"id"`
	TournamentID    uuid.UUID `json:"tournament_id"`
	PlayerID        uuid.UUID `json:"player_id"`
	Score           float64   `json:"score"`
	IsEliminated    bool      `json:"is_eliminated"`
	Buchholz        *float64  `json:"buchholz,omitempty"`
	SonnebornBerger *float64  `json:"sonneborn_berger,omitempty"`
	Rank            *int      `json:"rank,omitempty"`
	RegisteredAt    time.Time `json:"registered_at"`
}
