package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/amjido-01/cegnal/internal/app"
	"github.com/amjido-01/cegnal/internal/chat"
	"github.com/amjido-01/cegnal/internal/domain"
	"github.com/amjido-01/cegnal/internal/store"
)

const defaultHistoryLimit = 50

// ChatHandler serves the zone chat websocket and history endpoints. Both
// require JOINED access to the zone.
type ChatHandler struct {
	hub      *chat.Hub
	zones    *app.ZoneService
	users    app.UserReader
	history  *store.ChatRepository
	upgrader websocket.Upgrader
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(hub *chat.Hub, zones *app.ZoneService, users app.UserReader, history *store.ChatRepository) *ChatHandler {
	return &ChatHandler{
		hub:     hub,
		zones:   zones,
		users:   users,
		history: history,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// requireMember resolves the caller and checks zone membership.
func (h *ChatHandler) requireMember(w http.ResponseWriter, r *http.Request) (userID, zoneID string, ok bool) {
	userID, authed := UserIDFromContext(r.Context())
	if !authed {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return "", "", false
	}
	zoneID = chi.URLParam(r, "zoneId")
	if zoneID == "" {
		respondError(w, http.StatusBadRequest, "Zone id is required")
		return "", "", false
	}

	decision, err := h.zones.ResolveAccess(r.Context(), userID, zoneID)
	if err != nil {
		if errors.Is(err, store.ErrZoneNotFound) {
			respondError(w, http.StatusNotFound, "Zone not found")
			return "", "", false
		}
		respondError(w, http.StatusInternalServerError, "Failed to check membership")
		return "", "", false
	}
	if decision.State != domain.AccessJoined {
		respondError(w, http.StatusForbidden, "Join the zone to access its chat")
		return "", "", false
	}
	return userID, zoneID, true
}

// HandleWebsocket serves GET /chat/{zoneId}/ws.
func (h *ChatHandler) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	userID, zoneID, ok := h.requireMember(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to resolve user")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	h.hub.Serve(conn, zoneID, userID, user.Username)
}

// HandleHistory serves GET /chat/{zoneId}/messages?limit=.
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	_, zoneID, ok := h.requireMember(w, r)
	if !ok {
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	messages, err := h.history.ListRecentMessages(r.Context(), zoneID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}
	respondSuccess(w, http.StatusOK, "Messages fetched", messages)
}
