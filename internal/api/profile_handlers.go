package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amjido-01/cegnal/internal/app"
	"github.com/amjido-01/cegnal/internal/store"
)

const topProfilesLimit = 10

// ProfileHandler serves analyst and trader display endpoints.
type ProfileHandler struct {
	profiles *app.ProfileService
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profiles *app.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// HandleGetAnalyst serves GET /user/analyst/{id}.
func (h *ProfileHandler) HandleGetAnalyst(w http.ResponseWriter, r *http.Request) {
	callerID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	analystID := chi.URLParam(r, "id")
	if analystID == "" {
		respondError(w, http.StatusBadRequest, "Analyst id is required")
		return
	}

	detail, err := h.profiles.GetAnalyst(r.Context(), callerID, analystID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "Analyst not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to fetch analyst")
		return
	}
	respondSuccess(w, http.StatusOK, "Analyst fetched", detail)
}

// HandleTopAnalysts serves GET /user/top-analyst.
func (h *ProfileHandler) HandleTopAnalysts(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.TopAnalysts(r.Context(), topProfilesLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch analysts")
		return
	}
	respondSuccess(w, http.StatusOK, "Top analysts fetched", profiles)
}

// HandleTopTraders serves GET /user/top-traders.
func (h *ProfileHandler) HandleTopTraders(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.TopTraders(r.Context(), topProfilesLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch traders")
		return
	}
	respondSuccess(w, http.StatusOK, "Top traders fetched", profiles)
}
