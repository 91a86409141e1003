package models

import "github.com/google/uuid"

// Standing - строка общей таблицы (все профили).
type Standing struct {
	Position    int       `json:"position"`
	ProfileID   uuid.UUID `json:"profile_id"`
	Username    string    `json:"username"`
	FullName    *string   `json:"full_name,omitempty"`
	Initials    *string   `json:"avatar_initials,omitempty"`
	Score       float64   `json:"score"`
	Rating      int       `json:"rating"`
	GamesPlayed int       `json:"games_played"`
	GamesWon    int       `json:"games_won"`
	GamesLost   int       `json:"games_lost"`
	GamesDrawn  int       `json:"games_drawn"`
}

// SuperLeagueStanding - строка таблицы Super League.
type SuperLeagueStanding struct {
	Position          int       `json:"position"`
	PlayerID          uuid.UUID `json:"player_id"`
	SwissScore        float64   `json:"swiss_score"`
	SuperLeaguePoints float64   `json:"super_league_points"`
	TotalScore        float64   `json:"total_score"`
	GamesPlayed       int       `json:"games_played"`
}
