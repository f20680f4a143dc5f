package domain

import "time"

// PaymentStatus tracks the lifecycle of a payment session. A session stays
// initialized while the provider still reports the transaction as pending;
// only success, failed and abandoned are terminal.
type PaymentStatus string

const (
	PaymentInitialized PaymentStatus = "initialized"
	PaymentSuccess     PaymentStatus = "success"
	PaymentFailed      PaymentStatus = "failed"
	PaymentAbandoned   PaymentStatus = "abandoned"

	// PaymentPending appears only in verify responses, never as a stored
	// session status: the session stays initialized until the provider
	// settles.
	PaymentPending PaymentStatus = "pending"
)

// Terminal reports whether the status can no longer change.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentSuccess || s == PaymentFailed || s == PaymentAbandoned
}

// PaymentSession is one payment attempt for (user, zone). Reference is the
// correlation key shared with the payment provider; concurrent initiations
// for the same zone are independent sessions with distinct references.
type PaymentSession struct {
	ID               string        `json:"id"`
	UserID           string        `json:"userId"`
	ZoneID           string        `json:"zoneId"`
	Reference        string        `json:"reference"`
	Amount           int64         `json:"amount"`
	Status           PaymentStatus `json:"status"`
	AuthorizationURL string        `json:"authorizationUrl,omitempty"`
	AccessCode       string        `json:"accessCode,omitempty"`
	PaidAt           *time.Time    `json:"paidAt,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// PaymentInit is the response body of POST /payment/initiate. Field names
// follow the provider's snake_case convention, which the mobile client
// consumes as-is.
type PaymentInit struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResult is the response body of POST /payment/verify. Amount is in
// minor currency units, matching Zone.Price.
type VerifyResult struct {
	ZoneID        string        `json:"zoneId"`
	ZoneName      string        `json:"zoneName"`
	Amount        int64         `json:"amount"`
	Reference     string        `json:"reference"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaidAt        *time.Time    `json:"paidAt"`
}

// InitiatePaymentRequest is the payload for POST /payment/initiate.
type InitiatePaymentRequest struct {
	ZoneID string `json:"zoneId" validate:"required"`
}

// VerifyPaymentRequest is the payload for POST /payment/verify.
type VerifyPaymentRequest struct {
	Reference string `json:"reference" validate:"required"`
}

// JoinZoneRequest is the payload for POST /chat/join/zone.
type JoinZoneRequest struct {
	ZoneID string `json:"zoneId" validate:"required"`
}
