package handlers

import (
	"net/http"

	"github.com/Dosada05/checkmate-cup/middleware"
	"github.com/Dosada05/checkmate-cup/models"
	"github.com/Dosada05/checkmate-cup/services"
	"github.com/google/uuid"
)

type finalizeGameRequest struct {
	GameID             uuid.UUID         `json:"gameId" validate:"required"`
	Result             models.GameResult `json:"result" validate:"required,oneof=white_wins black_wins draw"`
	FEN                *string           `json:"fen"`
	PGN                *string           `json:"pgn"`
	WhiteTimeRemaining *int              `json:"whiteTimeRemaining" validate:"omitempty,min=0"`
	BlackTimeRemaining *int              `json:"blackTimeRemaining" validate:"omitempty,min=0"`
}

type moveRequest struct {
	Move               string `json:"move" validate:"required,min=4,max=5"`
	WhiteTimeRemaining *int   `json:"whiteTimeRemaining" validate:"omitempty,min=0"`
	BlackTimeRemaining *int   `json:"blackTimeRemaining" validate:"omitempty,min=0"`
}

type GameHandler struct {
	gameService services.GameService
}

func NewGameHandler(gs services.GameService) *GameHandler {
	return &GameHandler{gameService: gs}
}

func finalizeResponse(outcome *services.FinalizeOutcome) jsonResponse {
	if outcome.AlreadyFinalized {
		return jsonResponse{"alreadyFinalized": true}
	}
	return jsonResponse{"success": true, "result": outcome.Result, "rating": outcome.Rating}
}

// FinalizeHandler обрабатывает POST /functions/v1/finalize-game.
// @Summary      Finalize game
// @Description  Records the final result of a game played by the caller. A second call is a no-op.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        request  body      finalizeGameRequest  true  "Game result"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Security     BearerAuth
// @Router       /functions/v1/finalize-game [post]
func (h *GameHandler) FinalizeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "Unauthorized")
		return
	}

	var req finalizeGameRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.gameService.FinalizeGame(r.Context(), userID, services.FinalizeGameInput{
		GameID:             req.GameID,
		Result:             req.Result,
		FEN:                req.FEN,
		PGN:                req.PGN,
		WhiteTimeRemaining: req.WhiteTimeRemaining,
		BlackTimeRemaining: req.BlackTimeRemaining,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, finalizeResponse(outcome), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /api/games/{gameID}.
// @Summary  Get game
// @Tags     games
// @Produce  json
// @Param    gameID  path      string  true  "Game ID"
// @Success  200     {object}  map[string]interface{}
// @Failure  404     {object}  map[string]string
// @Router   /api/games/{gameID} [get]
func (h *GameHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getUUIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.GetGame(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// seatRequest достаёт пользователя и id партии для действий игрока.
func seatRequest(w http.ResponseWriter, r *http.Request) (userID, gameID uuid.UUID, ok bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	gameID, err = getUUIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, gameID, true
}

// ReadyHandler обрабатывает POST /api/games/{gameID}/ready.
// @Summary   Mark ready
// @Tags      games
// @Produce   json
// @Param     gameID  path      string  true  "Game ID"
// @Success   200     {object}  map[string]interface{}
// @Failure   409     {object}  map[string]string
// @Security  BearerAuth
// @Router    /api/games/{gameID}/ready [post]
func (h *GameHandler) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	userID, gameID, ok := seatRequest(w, r)
	if !ok {
		return
	}

	game, err := h.gameService.SetReady(r.Context(), userID, gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MoveHandler обрабатывает POST /api/games/{gameID}/moves.
// @Summary   Submit move
// @Tags      games
// @Accept    json
// @Produce   json
// @Param     gameID   path      string       true  "Game ID"
// @Param     request  body      moveRequest  true  "UCI move"
// @Success   200      {object}  services.MoveOutcome
// @Failure   400      {object}  map[string]string
// @Failure   409      {object}  map[string]string
// @Security  BearerAuth
// @Router    /api/games/{gameID}/moves [post]
func (h *GameHandler) MoveHandler(w http.ResponseWriter, r *http.Request) {
	userID, gameID, ok := seatRequest(w, r)
	if !ok {
		return
	}

	var req moveRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.gameService.SubmitMove(r.Context(), userID, services.MoveInput{
		GameID:             gameID,
		UCI:                req.Move,
		WhiteTimeRemaining: req.WhiteTimeRemaining,
		BlackTimeRemaining: req.BlackTimeRemaining,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, outcome, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResignHandler обрабатывает POST /api/games/{gameID}/resign.
// @Summary   Resign
// @Tags      games
// @Produce   json
// @Param     gameID  path      string  true  "Game ID"
// @Success   200     {object}  map[string]interface{}
// @Security  BearerAuth
// @Router    /api/games/{gameID}/resign [post]
func (h *GameHandler) ResignHandler(w http.ResponseWriter, r *http.Request) {
	userID, gameID, ok := seatRequest(w, r)
	if !ok {
		return
	}

	outcome, err := h.gameService.Resign(r.Context(), userID, gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, finalizeResponse(outcome), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// OfferDrawHandler обрабатывает POST /api/games/{gameID}/draw/offer.
// @Summary   Offer draw
// @Tags      games
// @Produce   json
// @Param     gameID  path      string  true  "Game ID"
// @Success   200     {object}  map[string]interface{}
// @Security  BearerAuth
// @Router    /api/games/{gameID}/draw/offer [post]
func (h *GameHandler) OfferDrawHandler(w http.ResponseWriter, r *http.Request) {
	userID, gameID, ok := seatRequest(w, r)
	if !ok {
		return
	}

	game, err := h.gameService.OfferDraw(r.Context(), userID, gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AcceptDrawHandler обрабатывает POST /api/games/{gameID}/draw/accept.
// @Summary   Accept draw
// @Tags      games
// @Produce   json
// @Param     gameID  path      string  true  "Game ID"
// @Success   200     {object}  map[string]interface{}
// @Security  BearerAuth
// @Router    /api/games/{gameID}/draw/accept [post]
func (h *GameHandler) AcceptDrawHandler(w http.ResponseWriter, r *http.Request) {
	userID, gameID, ok := seatRequest(w, r)
	if !ok {
		return
	}

	outcome, err := h.gameService.AcceptDraw(r.Context(), userID, gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, finalizeResponse(outcome), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
