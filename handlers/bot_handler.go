package handlers

import (
	"net/http"

	"github.com/Dosada05/checkmate-cup/services"
)

type botMoveRequest struct {
	FEN        string              `json:"fen" validate:"required"`
	Difficulty services.Difficulty `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced master"`
}

type commentaryRequest struct {
	MoveCount int    `json:"moveCount"`
	LastMove  string `json:"lastMove"`
}

type BotHandler struct {
	botService services.BotService
}

func NewBotHandler(bs services.BotService) *BotHandler {
	return &BotHandler{botService: bs}
}

// MoveHandler обрабатывает POST /functions/v1/chess-bot.
// Ход возвращается как есть, легальность проверяет клиент.
// @Summary  Bot move
// @Tags     bot
// @Accept   json
// @Produce  json
// @Param    request  body      botMoveRequest  true  "Position and difficulty"
// @Success  200      {object}  map[string]string
// @Failure  402      {object}  map[string]string
// @Failure  429      {object}  map[string]string
// @Router   /functions/v1/chess-bot [post]
func (h *BotHandler) MoveHandler(w http.ResponseWriter, r *http.Request) {
	var req botMoveRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	move, err := h.botService.SuggestMove(r.Context(), req.FEN, req.Difficulty)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"move": move}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PracticeMoveHandler обрабатывает POST /api/practice/move.
// @Summary  Practice move
// @Description  Bot move checked against the rules, with a random legal move as fallback.
// @Tags     bot
// @Accept   json
// @Produce  json
// @Param    request  body      botMoveRequest  true  "Position and difficulty"
// @Success  200      {object}  services.PracticeMove
// @Router   /api/practice/move [post]
func (h *BotHandler) PracticeMoveHandler(w http.ResponseWriter, r *http.Request) {
	var req botMoveRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	move, err := h.botService.PracticeMove(r.Context(), req.FEN, req.Difficulty)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, move, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CommentaryHandler обрабатывает POST /functions/v1/chess-commentary. Никогда не падает
// на содержимом тела.
// @Summary  Commentary line
// @Tags     bot
// @Accept   json
// @Produce  json
// @Param    request  body      commentaryRequest  false  "Move count and last move"
// @Success  200      {object}  map[string]string
// @Router   /functions/v1/chess-commentary [post]
func (h *BotHandler) CommentaryHandler(w http.ResponseWriter, r *http.Request) {
	var req commentaryRequest
	_ = readJSON(w, r, &req)

	commentary := h.botService.Commentary(req.MoveCount, req.LastMove)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"commentary": commentary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
