package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/checkmate-cup/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// CurrentHandler обрабатывает GET /api/tournaments/current.
// Пока турнира нет, отдаёт {"tournament": null}.
// @Summary  Current tournament
// @Tags     tournaments
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Router   /api/tournaments/current [get]
func (h *TournamentHandler) CurrentHandler(w http.ResponseWriter, r *http.Request) {
	tournament, err := h.tournamentService.GetCurrentTournament(r.Context())
	if err != nil && !errors.Is(err, services.ErrTournamentNotFound) {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /api/tournaments/{tournamentID}.
// @Summary  Get tournament
// @Tags     tournaments
// @Produce  json
// @Param    tournamentID  path      string  true  "Tournament ID"
// @Success  200           {object}  map[string]interface{}
// @Failure  404           {object}  map[string]string
// @Router   /api/tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListPlayersHandler обрабатывает GET /api/tournaments/{tournamentID}/players.
// @Summary  Tournament players
// @Tags     tournaments
// @Produce  json
// @Param    tournamentID  path      string  true  "Tournament ID"
// @Success  200           {object}  map[string]interface{}
// @Router   /api/tournaments/{tournamentID}/players [get]
func (h *TournamentHandler) ListPlayersHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.tournamentService.ListPlayers(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListGamesHandler обрабатывает GET /api/tournaments/{tournamentID}/games?round=N.
// @Summary  Tournament games
// @Tags     tournaments
// @Produce  json
// @Param    tournamentID  path      string  true   "Tournament ID"
// @Param    round         query     int     false  "Round number"
// @Success  200           {object}  map[string]interface{}
// @Router   /api/tournaments/{tournamentID}/games [get]
func (h *TournamentHandler) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var round *int
	if roundStr := r.URL.Query().Get("round"); roundStr != "" {
		n, err := strconv.Atoi(roundStr)
		if err != nil || n < 1 {
			badRequestResponse(w, r, errors.New("invalid round query parameter"))
			return
		}
		round = &n
	}

	games, err := h.tournamentService.ListGames(r.Context(), id, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BracketHandler обрабатывает GET /api/tournaments/{tournamentID}/bracket.
// @Summary  Knockout bracket
// @Tags     tournaments
// @Produce  json
// @Param    tournamentID  path      string  true  "Tournament ID"
// @Success  200           {object}  map[string]interface{}
// @Failure  400           {object}  map[string]string
// @Router   /api/tournaments/{tournamentID}/bracket [get]
func (h *TournamentHandler) BracketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rounds, err := h.tournamentService.GetBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListChampionsHandler обрабатывает GET /api/champions.
// @Summary  Hall of champions
// @Tags     tournaments
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Router   /api/champions [get]
func (h *TournamentHandler) ListChampionsHandler(w http.ResponseWriter, r *http.Request) {
	champions, err := h.tournamentService.ListChampions(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"champions": champions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
