/**
 * @description
 * Business-rule errors raised by the service layer. The api layer maps these
 * onto HTTP statuses; everything else is treated as an internal error.
 */
package app

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the response does not reveal which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountInactive is returned when a user logs in before completing
	// OTP verification.
	ErrAccountInactive = errors.New("account is not verified")

	// ErrInvalidOTP is returned for an expired or mismatched code.
	ErrInvalidOTP = errors.New("invalid or expired verification code")

	// ErrOTPCooldown is returned while the resend cooldown deadline is still
	// in the future.
	ErrOTPCooldown = errors.New("verification code was sent recently")

	// ErrPaymentRequired is returned when a free-join is attempted on a paid
	// zone the user has not joined.
	ErrPaymentRequired = errors.New("zone requires payment to join")

	// ErrAlreadyMember is returned when payment is initiated for a zone the
	// user already belongs to.
	ErrAlreadyMember = errors.New("zone already joined")

	// ErrZoneNotPaid is returned when payment is initiated for a free zone.
	ErrZoneNotPaid = errors.New("zone is free to join")

	// ErrPaymentProvider wraps failures talking to the payment provider.
	// These are retriable, unlike a definitive failed verification.
	ErrPaymentProvider = errors.New("payment provider unavailable")
)
