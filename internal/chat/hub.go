/**
 * @description
 * Websocket chat for zone members. The hub keeps one room per zone and fans
 * incoming messages out to every connected member after persisting them.
 */
package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amjido-01/cegnal/internal/domain"
)

// MessageStore persists chat history.
type MessageStore interface {
	InsertMessage(ctx context.Context, m *domain.ChatMessage) error
}

// Hub routes messages between clients grouped by zone.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	store  MessageStore
	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(store MessageStore, logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]struct{}),
		store:  store,
		logger: logger,
	}
}

func (h *Hub) join(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.zoneID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.zoneID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[c.zoneID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.zoneID)
		}
	}
}

// broadcast persists the message and delivers it to every client in the
// zone's room. Clients with a full send buffer are dropped rather than
// allowed to stall the room.
func (h *Hub) broadcast(ctx context.Context, msg domain.ChatMessage) {
	if err := h.store.InsertMessage(ctx, &msg); err != nil {
		h.logger.Error("failed to persist chat message", "zone_id", msg.ZoneID, "error", err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	var stalled []*Client
	for c := range h.rooms[msg.ZoneID] {
		select {
		case c.send <- payload:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	// Leave before close: leave blocks until in-flight broadcasts release
	// the room lock, so no sender can still hit the channel once it closes.
	for _, c := range stalled {
		h.logger.Warn("dropping stalled chat client", "zone_id", msg.ZoneID, "user_id", c.userID)
		h.leave(c)
		c.close()
	}
}

// NewMessage builds a chat message for a sender in a zone.
func NewMessage(zoneID, userID, username, body string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:       uuid.NewString(),
		ZoneID:   zoneID,
		UserID:   userID,
		Username: username,
		Body:     body,
		SentAt:   time.Now().UTC(),
	}
}
