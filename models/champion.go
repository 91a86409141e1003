package models

import (
	"time"

	"github.com/google/uuid"
)

// Champion - опубликованный снимок призёров турнира. Создаётся один раз.
type Champion struct {
	ID            uuid.UUID  `json:"id"`
	TournamentID  uuid.UUID  `json:"tournament_id"`
	FirstPlaceID  *uuid.UUID `json:"first_place_id,omitempty"`
	SecondPlaceID *uuid.UUID `json:"second_place_id,omitempty"`
	ThirdPlaceID  *uuid.UUID `json:"third_place_id,omitempty"`
	Published     bool       `json:"published"`
	CreatedAt     time.Time  `json:"created_at"`
}
