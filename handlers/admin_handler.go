package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Dosada05/checkmate-cup/middleware"
	"github.com/Dosada05/checkmate-cup/models"
	"github.com/Dosada05/checkmate-cup/services"
	"github.com/google/uuid"
)

// Действия admin-action.
const (
	actionCreateTournament   = "createTournament"
	actionUpdateTournament   = "updateTournament"
	actionStartTournament    = "startTournament"
	actionCreateGame         = "createGame"
	actionUpdatePlayerScore  = "updatePlayerScore"
	actionPublishResults     = "publishResults"
	actionRegisterAllPlayers = "registerAllPlayers"
	actionResetTournament    = "resetTournament"
	actionDeleteAllAccounts  = "deleteAllAccounts"
	actionAdvanceRound       = "advanceRound"
)

var errUnknownAction = errors.New("Unknown action")

type adminActionRequest struct {
	Action   string          `json:"action" validate:"required"`
	Data     json.RawMessage `json:"data"`
	AdminKey string          `json:"adminKey"`
}

type tournamentRef struct {
	TournamentID uuid.UUID `json:"tournamentId" validate:"required"`
}

type createTournamentData struct {
	Name        string                  `json:"name" validate:"max=120"`
	Format      models.TournamentFormat `json:"format"`
	TimeControl string                  `json:"timeControl" validate:"max=32"`
}

type updateTournamentData struct {
	TournamentID uuid.UUID                `json:"tournamentId" validate:"required"`
	Format       *models.TournamentFormat `json:"format"`
	TimeControl  *string                  `json:"timeControl"`
}

type createGameData struct {
	TournamentID  uuid.UUID `json:"tournamentId" validate:"required"`
	Round         int       `json:"round" validate:"omitempty,min=1"`
	WhitePlayerID uuid.UUID `json:"whitePlayerId" validate:"required"`
	BlackPlayerID uuid.UUID `json:"blackPlayerId" validate:"required"`
}

type updatePlayerScoreData struct {
	TournamentID uuid.UUID `json:"tournamentId" validate:"required"`
	PlayerID     uuid.UUID `json:"playerId" validate:"required"`
	Score        float64   `json:"score" validate:"min=0"`
}

type AdminHandler struct {
	tournamentService services.TournamentService
	accessService     services.AccessService
}

func NewAdminHandler(ts services.TournamentService, as services.AccessService) *AdminHandler {
	return &AdminHandler{tournamentService: ts, accessService: as}
}

// decodeData разбирает data конкретного действия. Лишние поля игнорируются,
// старые клиенты присылают totalRounds и места чемпионов.
func decodeData(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: data: %v", services.ErrInvalidPayload, err)
	}
	return validateStruct(dst)
}

// ActionHandler обрабатывает POST /functions/v1/admin-action.
// @Summary      Admin action
// @Description  Runs one tournament administration action. Requires the admin role or the configured admin key.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      adminActionRequest  true  "Action and its data"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Router       /functions/v1/admin-action [post]
func (h *AdminHandler) ActionHandler(w http.ResponseWriter, r *http.Request) {
	var req adminActionRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.accessService.AuthorizeAdmin(r.Context(), middleware.OptionalUserID(r.Context()), req.AdminKey); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	result, err := h.dispatch(r, req)
	if err != nil {
		if errors.Is(err, errUnknownAction) {
			badRequestResponse(w, r, err)
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) dispatch(r *http.Request, req adminActionRequest) (jsonResponse, error) {
	ctx := r.Context()

	switch req.Action {
	case actionCreateTournament:
		var data createTournamentData
		if err := decodeData(req.Data, &data); err != nil {
			return nil, err
		}
		t, err := h.tournamentService.CreateTournament(ctx, services.CreateTournamentInput{
			Name:        data.Name,
			Format:      data.Format,
			TimeControl: data.TimeControl,
		})
		if err != nil {
			return nil, err
		}
		return jsonResponse{"success": true, "tournament": t}, nil

	case actionUpdateTournament:
		var data updateTournamentData
		if err := decodeData(req.Data, &data); err != nil {
			return nil, err
		}
		t, err := h.tournamentService.UpdateTournament(ctx, services.UpdateTournamentInput{
			TournamentID: data.TournamentID,
			Format:       data.Format,
			TimeControl:  data.TimeControl,
		})
		if err != nil {
			return nil, err
		}
		return jsonResponse{"success": true, "tournament": t}, nil

	case actionStartTournament, actionAdvanceRound:
		var data tournamentRef
		if err := decodeData(req.Data, &data); err != nil {
			return nil, err
		}
		pair := h.tournamentService.StartTournament
		if req.Action == actionAdvanceRound {
			pair = h.tournamentService.AdvanceRound
		}
		res, err := pair(ctx, data.TournamentID)
		if err != nil {
			return nil, err
		}
		return jsonResponse{
			"success":    true,
			"round":      res.Round,
			"tournament": res.Tournament,
			"games":      res.Games,
			"bye":        res.Bye,
		}, nil

	case actionCreateGame:
		var data createGameData
		if err := decodeData(req.Data, &data); err != nil {
			return nil, err
		}
		g, err := h.tournamentService.CreateGame(ctx, services.CreateGameInput{
			TournamentID:  data.TournamentID,
			Round:         data.Round,
			WhitePlayerID: data.WhitePlayerID,
			BlackPlayerID: data.BlackPlayerID,
		})
		if err != nil {
			return nil, err
		}
		return jsonResponse{"success": true, "game": g}, nil

	case actionUpdatePlayerScore:
		var data updatePlayerScoreData
		if err := decodeData(req.Data, &data); err != nil {
			return nil, err
		}
		err := h.tournamentService.UpdatePlayerScore(ctx, services.UpdatePlayerScoreInput{
			TournamentID: data.TournamentID,
			PlayerID:     data.PlayerID,
			Score:        data.Score,
		})
		if err != nil {
			return nil, err
		}
		return jsonResponse{"success": true}, nil

	case actionPublishResults:
		var data tournamentRef
		if err := decodeData(req.Data, &data); err != nil {
			return nil, err
		}
		champion, err := h.tournamentService.PublishResults(ctx, data.TournamentID)
		if err != nil {
			return nil, err
		}
		return jsonResponse{"success": true, "champions": champion}, nil

	case actionRegisterAllPlayers:
		var data tournamentRef
		if err := decodeData(req.Data, &data); err != nil {
			return nil, err
		}
		res, err := h.tournamentService.RegisterAllPlayers(ctx, data.TournamentID)
		if err != nil {
			return nil, err
		}
		return jsonResponse{"success": true, "count": res.Count, "added": res.Added}, nil

	case actionResetTournament:
		var data tournamentRef
		if err := decodeData(req.Data, &data); err != nil {
			return nil, err
		}
		if err := h.tournamentService.ResetTournament(ctx, data.TournamentID); err != nil {
			return nil, err
		}
		return jsonResponse{"success": true}, nil

	case actionDeleteAllAccounts:
		count, err := h.tournamentService.DeleteAllAccounts(ctx)
		if err != nil {
			return nil, err
		}
		return jsonResponse{"success": true, "count": count}, nil

	default:
		return nil, errUnknownAction
	}
}
