package handlers

import (
	"net/http"

	"github.com/Dosada05/checkmate-cup/middleware"
	"github.com/Dosada05/checkmate-cup/services"
)

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(ps services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: ps}
}

// MeHandler обрабатывает GET /api/profiles/me. Профиль создаётся при первом входе.
// @Summary   My profile
// @Tags      profiles
// @Produce   json
// @Success   200  {object}  map[string]interface{}
// @Failure   401  {object}  map[string]string
// @Security  BearerAuth
// @Router    /api/profiles/me [get]
func (h *ProfileHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.GetIdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	profile, err := h.profileService.EnsureProfile(r.Context(), identity)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /api/profiles/{profileID}.
// @Summary  Get profile
// @Tags     profiles
// @Produce  json
// @Param    profileID  path      string  true  "Profile ID"
// @Success  200        {object}  map[string]interface{}
// @Failure  404        {object}  map[string]string
// @Router   /api/profiles/{profileID} [get]
func (h *ProfileHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "profileID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
