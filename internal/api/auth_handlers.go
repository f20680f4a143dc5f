package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/amjido-01/cegnal/internal/app"
	"github.com/amjido-01/cegnal/internal/domain"
	"github.com/amjido-01/cegnal/internal/store"
)

// AuthHandler serves the registration, verification and session endpoints.
type AuthHandler struct {
	auth         *app.AuthService
	cookieTTL    time.Duration
	secureCookie bool
}

// NewAuthHandler creates a new auth handler. secureCookie should be true
// whenever the service is reached over HTTPS.
func NewAuthHandler(auth *app.AuthService, cookieTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieTTL: cookieTTL, secureCookie: secureCookie}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleRegister creates an inactive account and triggers the OTP email.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := h.auth.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respondError(w, http.StatusConflict, "Email or username already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	respondSuccess(w, http.StatusCreated, "Account created, verification code sent", map[string]string{
		"userId": userID,
	})
}

// HandleVerifyOTP activates the account and starts the session.
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, role, err := h.auth.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidOTP):
			respondError(w, http.StatusBadRequest, "Invalid or expired verification code")
		case errors.Is(err, store.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "Account not found")
		default:
			respondError(w, http.StatusInternalServerError, "Verification failed")
		}
		return
	}

	h.setSessionCookie(w, token)
	respondSuccess(w, http.StatusOK, "Account verified", map[string]string{"role": string(role)})
}

// HandleResendOTP re-sends the verification code, subject to the cooldown
// deadline. The deadline is returned either way so the client can render
// the countdown after a reload.
func (h *AuthHandler) HandleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendOTPRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	deadline, err := h.auth.ResendOTP(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, app.ErrOTPCooldown) {
			respondJSON(w, http.StatusTooManyRequests, Envelope{
				ResponseSuccessful: false,
				ResponseMessage:    "A code was sent recently, please wait",
				ResponseBody:       map[string]string{"cooldownUntil": deadline.UTC().Format(time.RFC3339)},
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "Could not resend code")
		return
	}

	respondSuccess(w, http.StatusOK, "Verification code sent", map[string]string{
		"cooldownUntil": deadline.UTC().Format(time.RFC3339),
	})
}

// HandleLogin authenticates and starts the session.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, role, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, app.ErrAccountInactive):
			respondError(w, http.StatusForbidden, "Account is not verified")
		default:
			respondError(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	h.setSessionCookie(w, token)
	respondSuccess(w, http.StatusOK, "Login successful", map[string]string{"role": string(role)})
}

// HandleLogout ends the session by expiring the cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	respondSuccess(w, http.StatusOK, "Logged out", nil)
}

// HandleForgotPassword sends a password reset code.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendOTPRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	deadline, err := h.auth.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, app.ErrOTPCooldown) {
			respondJSON(w, http.StatusTooManyRequests, Envelope{
				ResponseSuccessful: false,
				ResponseMessage:    "A code was sent recently, please wait",
				ResponseBody:       map[string]string{"cooldownUntil": deadline.UTC().Format(time.RFC3339)},
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "Could not send reset code")
		return
	}

	// Same response whether or not the email exists.
	respondSuccess(w, http.StatusOK, "If the account exists, a reset code was sent", map[string]string{
		"cooldownUntil": deadline.UTC().Format(time.RFC3339),
	})
}

// HandleResetPassword sets a new password after checking the reset code.
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidOTP):
			respondError(w, http.StatusBadRequest, "Invalid or expired reset code")
		case errors.Is(err, store.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "Account not found")
		default:
			respondError(w, http.StatusInternalServerError, "Could not reset password")
		}
		return
	}

	respondSuccess(w, http.StatusOK, "Password reset", nil)
}

// HandleUpdatePassword changes the password for the signed-in user.
func (h *AuthHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req domain.UpdatePasswordRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.auth.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
		respondError(w, http.StatusInternalServerError, "Could not update password")
		return
	}

	respondSuccess(w, http.StatusOK, "Password updated", nil)
}
