package domain

import "time"

// ChatMessage is one message in a zone's chat room.
type ChatMessage struct {
	ID       string    `json:"id"`
	ZoneID   string    `json:"zoneId"`
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sentAt"`
}
