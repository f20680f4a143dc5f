package chat

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
	maxBodyLength  = 2000
)

// Client is one websocket connection of a zone member.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	zoneID   string
	userID   string
	username string

	closeOnce sync.Once
}

// inbound is the wire format clients send; everything else about a message
// is derived server-side.
type inbound struct {
	Body string `json:"body"`
}

// Serve registers the connection with the hub and runs the read and write
// pumps. It returns when the connection is gone.
func (h *Hub) Serve(conn *websocket.Conn, zoneID, userID, username string) {
	c := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		zoneID:   zoneID,
		userID:   userID,
		username: username,
	}
	h.join(c)
	go c.writePump()
	c.readPump()
}

// truncateBody caps the message body at maxBodyLength bytes without
// splitting a multi-byte rune at the cut.
func truncateBody(body string) string {
	if len(body) <= maxBodyLength {
		return body
	}
	cut := maxBodyLength
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var in inbound
		if err := c.conn.ReadJSON(&in); err != nil {
			return
		}
		body := truncateBody(strings.TrimSpace(in.Body))
		if body == "" {
			continue
		}
		c.hub.broadcast(context.Background(), NewMessage(c.zoneID, c.userID, c.username, body))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
