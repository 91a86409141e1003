package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const DefaultRating = 1200

// Profile - публичный профиль игрока. UserID - subject из токена.
type Profile struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Username       string    `json:"username"`
	FullName       *string   `json:"full_name,omitempty"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	AvatarInitials *string   `json:"avatar_initials,omitempty"`
	GamesPlayed    int       `json:"games_played"`
	GamesWon       int       `json:"games_won"`
	GamesLost      int       `json:"games_lost"`
	GamesDrawn     int       `json:"games_drawn"`
	Rating         int       `json:"rating"`
	Score          float64   `json:"score"`
	Rank           *int      `json:"rank,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProfileResult is one finished game applied to a profile's lifetime counters.
type ProfileResult struct {
	NewRating  int
	Won        int
	Lost       int
	Drawn      int
	ScoreDelta float64
}

// Initials takes the first letter of up to two words of the name.
func Initials(name string) string {
	initials := make([]rune, 0, 2)
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				initials = append(initials, unicode.ToUpper(r))
				break
			}
		}
		if len(initials) == 2 {
			break
		}
	}
	return string(initials)
}
