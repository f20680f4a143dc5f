package api

import (
	"errors"
	"net/http"

	"github.com/amjido-01/cegnal/internal/app"
	"github.com/amjido-01/cegnal/internal/domain"
)

// OnboardingHandler serves the persisted device onboarding state.
type OnboardingHandler struct {
	onboarding *app.OnboardingService
}

// NewOnboardingHandler creates a new onboarding handler.
func NewOnboardingHandler(onboarding *app.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding}
}

// onboardingActionRequest is the payload for PUT /user/onboarding.
type onboardingActionRequest struct {
	Action string      `json:"action" validate:"required,oneof=begin advance back skip select_role complete"`
	Role   domain.Role `json:"role" validate:"omitempty,oneof=TRADER ANALYST"`
}

// HandleGetState serves GET /user/onboarding.
func (h *OnboardingHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	state, err := h.onboarding.Get(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch onboarding state")
		return
	}
	respondSuccess(w, http.StatusOK, "Onboarding state fetched", state)
}

// HandleApply serves PUT /user/onboarding: one named transition per call.
func (h *OnboardingHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req onboardingActionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.onboarding.Apply(r.Context(), userID, req.Action, req.Role)
	if err != nil {
		if errors.Is(err, domain.ErrOnboardingTransition) {
			respondError(w, http.StatusConflict, "That step is not available from the current stage")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to update onboarding state")
		return
	}
	respondSuccess(w, http.StatusOK, "Onboarding state updated", state)
}
