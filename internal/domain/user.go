package domain

import "time"

// Role defines the account type selected during onboarding.
type Role string

const (
	RoleTrader  Role = "TRADER"
	RoleAnalyst Role = "ANALYST"
)

// Valid reports whether the role is one of the two supported roles.
func (r Role) Valid() bool {
	return r == RoleTrader || r == RoleAnalyst
}

// User is the core account model. PasswordHash is a bcrypt hash and never
// leaves the store/app layers; the JSON tag keeps it out of responses.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the public projection of a user returned by the analyst and
// top-trader endpoints.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	ZoneCount int    `json:"zoneCount"`
	Reach     int    `json:"reach"`
}

// RegisterRequest is the payload for POST /register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
	Role     Role   `json:"role" validate:"required,oneof=TRADER ANALYST"`
}

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyOTPRequest is the payload for POST /verify-otp.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// ResendOTPRequest is the payload for POST /resend-otp and /forgot-password.
type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the payload for POST /reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// UpdatePasswordRequest is the payload for POST /update-password.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}
