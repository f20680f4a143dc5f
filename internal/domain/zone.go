/**
 * @description
 * Core domain types for signal zones: the Zone record returned by the zones
 * endpoints and the access decision that gates joining a zone.
 */
package domain

// Zone represents a subscribable signal community owned by an analyst.
// Price is an integer amount in minor currency units (kobo); a free zone has
// IsPaid false and Price 0. HasJoined is scoped to the requesting user.
type Zone struct {
	ID          string `json:"id"`
	ZoneName    string `json:"zoneName"`
	Description string `json:"description"`
	IsPaid      bool   `json:"isPaid"`
	Price       int64  `json:"price"`
	NoOfMembers int    `json:"noOfMembers"`
	HasJoined   bool   `json:"hasJoined"`
	OwnerID     string `json:"ownerId,omitempty"`
}

// AccessState classifies the relationship between a user and a zone.
type AccessState string

const (
	AccessJoined       AccessState = "JOINED"
	AccessFreeUnjoined AccessState = "FREE_UNJOINED"
	AccessPaidUnjoined AccessState = "PAID_UNJOINED"
)

// AccessAction is the single next step the client should take for a zone.
type AccessAction string

const (
	ActionEnterChat       AccessAction = "enter_chat"
	ActionConfirmFreeJoin AccessAction = "confirm_free_join"
	ActionStartPayment    AccessAction = "start_payment"
)

// AccessDecision is the result of resolving the access gate for one zone.
type AccessDecision struct {
	ZoneID string       `json:"zoneId"`
	State  AccessState  `json:"state"`
	Action AccessAction `json:"action"`
}

// ResolveAccess applies the gate rules in order: membership wins over paid
// status, and a free zone never requires payment.
func ResolveAccess(z Zone) AccessDecision {
	switch {
	case z.HasJoined:
		return AccessDecision{ZoneID: z.ID, State: AccessJoined, Action: ActionEnterChat}
	case !z.IsPaid:
		return AccessDecision{ZoneID: z.ID, State: AccessFreeUnjoined, Action: ActionConfirmFreeJoin}
	default:
		return AccessDecision{ZoneID: z.ID, State: AccessPaidUnjoined, Action: ActionStartPayment}
	}
}
