package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amjido-01/cegnal/internal/app"
	"github.com/amjido-01/cegnal/internal/domain"
	"github.com/amjido-01/cegnal/internal/store"
)

// ZoneHandler serves the zone directory, detail, access and join endpoints.
type ZoneHandler struct {
	zones *app.ZoneService
}

// NewZoneHandler creates a new zone handler.
func NewZoneHandler(zones *app.ZoneService) *ZoneHandler {
	return &ZoneHandler{zones: zones}
}

// HandleListZones serves GET /user/zones[?filter=all]. Without the filter
// only joined zones are returned. An empty directory is a success with an
// empty list, never an error.
func (h *ZoneHandler) HandleListZones(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	scope := app.ScopeMine
	if r.URL.Query().Get("filter") == app.ScopeAll {
		scope = app.ScopeAll
	}

	zones, err := h.zones.ListZones(r.Context(), userID, scope)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch zones")
		return
	}
	respondSuccess(w, http.StatusOK, "Zones fetched", zones)
}

// HandleGetZone serves GET /zones/{zoneId}.
func (h *ZoneHandler) HandleGetZone(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	zoneID := chi.URLParam(r, "zoneId")
	if zoneID == "" {
		respondError(w, http.StatusBadRequest, "Zone id is required")
		return
	}

	zone, err := h.zones.GetZone(r.Context(), userID, zoneID)
	if err != nil {
		if errors.Is(err, store.ErrZoneNotFound) {
			respondError(w, http.StatusNotFound, "Zone not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to fetch zone")
		return
	}
	respondSuccess(w, http.StatusOK, "Zone fetched", zone)
}

// HandleZoneAccess serves GET /zones/{zoneId}/access: the gate decision the
// client should follow for this zone.
func (h *ZoneHandler) HandleZoneAccess(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	zoneID := chi.URLParam(r, "zoneId")
	if zoneID == "" {
		respondError(w, http.StatusBadRequest, "Zone id is required")
		return
	}

	decision, err := h.zones.ResolveAccess(r.Context(), userID, zoneID)
	if err != nil {
		if errors.Is(err, store.ErrZoneNotFound) {
			respondError(w, http.StatusNotFound, "Zone not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to resolve zone access")
		return
	}
	respondSuccess(w, http.StatusOK, "Access resolved", decision)
}

// HandleJoinZone serves POST /chat/join/zone. Joining a paid zone here is
// refused; the payment flow is the only path to paid membership.
func (h *ZoneHandler) HandleJoinZone(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req domain.JoinZoneRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.zones.JoinZone(r.Context(), userID, req.ZoneID); err != nil {
		switch {
		case errors.Is(err, store.ErrZoneNotFound):
			respondError(w, http.StatusNotFound, "Zone not found")
		case errors.Is(err, app.ErrPaymentRequired):
			respondError(w, http.StatusForbidden, "This zone requires payment to join")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to join zone")
		}
		return
	}

	respondSuccess(w, http.StatusOK, "Zone joined", nil)
}
