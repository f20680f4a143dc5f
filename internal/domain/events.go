package domain

import "time"

// ZoneJoinedEvent is published to the zone_events exchange when a user
// becomes a member of a zone, whether through a free join or a verified
// payment.
type ZoneJoinedEvent struct {
	UserID   string    `json:"user_id"`
	ZoneID   string    `json:"zone_id"`
	Paid     bool      `json:"paid"`
	JoinedAt time.Time `json:"joined_at"`
}

// PaymentVerifiedEvent is published when a payment session settles
// successfully.
type PaymentVerifiedEvent struct {
	UserID    string    `json:"user_id"`
	ZoneID    string    `json:"zone_id"`
	Reference string    `json:"reference"`
	Amount    int64     `json:"amount"`
	PaidAt    time.Time `json:"paid_at"`
}
