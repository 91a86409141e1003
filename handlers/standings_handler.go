package handlers

import (
	"net/http"

	"github.com/Dosada05/checkmate-cup/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(ss services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: ss}
}

// GetHandler обрабатывает GET /api/standings.
// @Summary  Standings
// @Description  Overall ranking; after the Swiss phase of a super league tournament also the Super League table.
// @Tags     standings
// @Produce  json
// @Success  200  {object}  services.StandingsView
// @Router   /api/standings [get]
func (h *StandingsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.standingsService.GetStandings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
