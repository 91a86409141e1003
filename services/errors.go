package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidPayload   = errors.New("Invalid payload")

	// Аутентификация и авторизация
	ErrAuthenticationFailed = errors.New("Unauthorized")
	ErrForbiddenOperation   = errors.New("Forbidden")
	ErrAdminRequired        = errors.New("admin role required")

	// Сущности
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrPlayerNotFound     = errors.New("player is not registered in this tournament")
	ErrChampionsNotFound  = errors.New("champions not published")

	// Состояние турнира
	ErrTournamentInvalidFormat           = errors.New("invalid tournament format")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentAlreadyStarted          = errors.New("tournament has already started")
	ErrTournamentNotInProgress           = errors.New("tournament is not in progress")
	ErrTournamentCompleted               = errors.New("tournament is completed")
	ErrNotEnoughPlayers                  = errors.New("not enough players (minimum 2 required)")
	ErrRoundNotComplete                  = errors.New("current round still has unfinished games")
	ErrNoMoreRounds                      = errors.New("all rounds have been played")
	ErrChampionsAlreadyPublished         = errors.New("results have already been published for this tournament")

	// Состояние партии
	ErrGameNotPending    = errors.New("game is not waiting for players")
	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrNotYourTurn       = errors.New("it is not your turn")
	ErrIllegalMove       = errors.New("illegal move")
	ErrInvalidPosition   = errors.New("invalid position")
	ErrGameMoveConflict  = errors.New("game position changed, reload and retry")
	ErrNoDrawOffer       = errors.New("there is no draw offer from the opponent")
	ErrSamePlayer        = errors.New("a player cannot play against themselves")
	ErrUsernameConflict  = errors.New("username is already in use")

	// Бот
	ErrBotNotConfigured    = errors.New("AI gateway is not configured")
	ErrBotRateLimited      = errors.New("Rate limit exceeded. Please try again later.")
	ErrBotCreditsExhausted = errors.New("AI credits exhausted. Please add credits to continue.")
	ErrBotUnavailable      = errors.New("AI gateway error")
)
