package chat

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/amjido-01/cegnal/internal/domain"
)

type recordingStore struct {
	messages []domain.ChatMessage
}

func (s *recordingStore) InsertMessage(ctx context.Context, m *domain.ChatMessage) error {
	s.messages = append(s.messages, *m)
	return nil
}

func testHub(store MessageStore) *Hub {
	return NewHub(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testClient(h *Hub, zoneID, userID string) *Client {
	return &Client{
		hub:    h,
		send:   make(chan []byte, sendBufferSize),
		zoneID: zoneID,
		userID: userID,
	}
}

func TestBroadcastReachesRoomMembers(t *testing.T) {
	store := &recordingStore{}
	h := testHub(store)

	alice := testClient(h, "z1", "alice")
	bob := testClient(h, "z1", "bob")
	outsider := testClient(h, "z2", "carol")
	for _, c := range []*Client{alice, bob, outsider} {
		h.join(c)
	}

	msg := NewMessage("z1", "alice", "alice", "EURUSD long at 1.0850")
	h.broadcast(context.Background(), msg)

	if len(store.messages) != 1 {
		t.Fatalf("expected 1 persisted message, got %d", len(store.messages))
	}
	if store.messages[0].Body != "EURUSD long at 1.0850" {
		t.Fatalf("unexpected persisted body %q", store.messages[0].Body)
	}

	for _, c := range []*Client{alice, bob} {
		select {
		case payload := <-c.send:
			var got domain.ChatMessage
			if err := json.Unmarshal(payload, &got); err != nil {
				t.Fatalf("decode delivered message: %v", err)
			}
			if got.ID != msg.ID || got.Username != "alice" {
				t.Fatalf("unexpected delivery %+v", got)
			}
		default:
			t.Fatalf("client %s did not receive the message", c.userID)
		}
	}

	select {
	case <-outsider.send:
		t.Fatal("message leaked into another zone's room")
	default:
	}
}

func TestBroadcastDropsStalledClient(t *testing.T) {
	store := &recordingStore{}
	h := testHub(store)

	stalled := testClient(h, "z1", "slow")
	stalled.send = make(chan []byte) // unbuffered and never read
	healthy := testClient(h, "z1", "fast")
	h.join(stalled)
	h.join(healthy)

	h.broadcast(context.Background(), NewMessage("z1", "fast", "fast", "hello"))

	h.mu.RLock()
	_, stillThere := h.rooms["z1"][stalled]
	_, healthyThere := h.rooms["z1"][healthy]
	h.mu.RUnlock()
	if stillThere {
		t.Fatal("stalled client must be removed from the room")
	}
	if !healthyThere {
		t.Fatal("healthy client must stay in the room")
	}
	if len(healthy.send) != 1 {
		t.Fatalf("healthy client should still get the message, got %d", len(healthy.send))
	}
}

func TestConcurrentBroadcastsWithStalledClients(t *testing.T) {
	// Several goroutines broadcast into a room full of stalled clients.
	// Dropping a client mid-broadcast must never close its channel while
	// another sender can still reach it.
	h := testHub(&recordingStore{})

	for i := 0; i < 32; i++ {
		c := testClient(h, "z1", "slow")
		c.send = make(chan []byte) // unbuffered and never read
		h.join(c)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h.broadcast(context.Background(), NewMessage("z1", "u", "u", "tick"))
			}
		}()
	}
	wg.Wait()

	h.mu.RLock()
	remaining := len(h.rooms["z1"])
	h.mu.RUnlock()
	if remaining != 0 {
		t.Fatalf("expected all stalled clients dropped, %d remain", remaining)
	}
}

func TestLeaveRemovesEmptyRoom(t *testing.T) {
	h := testHub(&recordingStore{})
	c := testClient(h, "z1", "alice")
	h.join(c)
	h.leave(c)

	h.mu.RLock()
	_, ok := h.rooms["z1"]
	h.mu.RUnlock()
	if ok {
		t.Fatal("empty room must be deleted")
	}
}

func TestNewMessageFields(t *testing.T) {
	msg := NewMessage("z1", "u1", "alice", "body")
	if msg.ID == "" {
		t.Fatal("expected generated id")
	}
	if msg.SentAt.IsZero() {
		t.Fatal("expected sent timestamp")
	}
	if msg.ZoneID != "z1" || msg.UserID != "u1" || msg.Username != "alice" {
		t.Fatalf("unexpected message %+v", msg)
	}
}
