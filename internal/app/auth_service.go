/**
 * @description
 * Account lifecycle: registration, OTP verification with resend cooldown,
 * login, and the password flows. Session tokens are HS256 JWTs carrying the
 * user id and role; the api layer owns the cookie.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/amjido-01/cegnal/internal/domain"
	"github.com/amjido-01/cegnal/internal/store"
	"github.com/amjido-01/cegnal/pkg/email"
)

// UserRepository defines the account storage the service needs.
type UserRepository interface {
	CreateUser(ctx context.Context, u *domain.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	ActivateUser(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// AuthService provides registration, verification and session issuance.
type AuthService struct {
	users     UserRepository
	otps      OTPStore
	mailer    email.Sender
	jwtSecret []byte
	tokenTTL  time.Duration
	cooldown  time.Duration
	logger    *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	users UserRepository,
	otps OTPStore,
	mailer email.Sender,
	jwtSecret string,
	tokenTTL, cooldown time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		otps:      otps,
		mailer:    mailer,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		cooldown:  cooldown,
		logger:    logger,
	}
}

// Register creates an inactive account and sends the verification code. A
// duplicate email or username surfaces store.ErrDuplicate.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	userID, err := s.users.CreateUser(ctx, &domain.User{
		Email:        req.Email,
		Username:     req.Username,
		Phone:        req.Phone,
		Role:         req.Role,
		PasswordHash: string(hash),
	})
	if err != nil {
		return "", err
	}

	s.sendCode(ctx, OTPPurposeVerify, req.Email)
	return userID, nil
}

// VerifyOTP activates the account on a matching code and returns a session
// token plus the user's role for post-verification routing.
func (s *AuthService) VerifyOTP(ctx context.Context, emailAddr, code string) (string, domain.Role, error) {
	ok, err := s.otps.Check(ctx, OTPPurposeVerify, emailAddr, code)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", ErrInvalidOTP
	}

	if err := s.users.ActivateUser(ctx, emailAddr); err != nil {
		return "", "", err
	}
	if err := s.otps.Delete(ctx, OTPPurposeVerify, emailAddr); err != nil {
		s.logger.Warn("failed to delete consumed OTP", "error", err)
	}

	user, err := s.users.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return "", "", err
	}
	token, err := s.issueToken(user)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ResendOTP issues a fresh verification code unless the cooldown deadline is
// still in the future, in which case the deadline is returned alongside
// ErrOTPCooldown.
func (s *AuthService) ResendOTP(ctx context.Context, emailAddr string) (time.Time, error) {
	return s.resend(ctx, OTPPurposeVerify, emailAddr)
}

// Login authenticates an active account and returns a session token.
// Unknown email and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (string, domain.Role, error) {
	user, err := s.users.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", "", ErrAccountInactive
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ForgotPassword sends a reset code. It reports success even for unknown
// emails so the endpoint cannot be used to probe accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) (time.Time, error) {
	if _, err := s.users.GetUserByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return time.Now().Add(s.cooldown), nil
		}
		return time.Time{}, err
	}
	return s.resend(ctx, OTPPurposeReset, emailAddr)
}

// ResetPassword replaces the password after checking the reset code.
func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	ok, err := s.otps.Check(ctx, OTPPurposeReset, emailAddr, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}

	user, err := s.users.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	if err := s.otps.Delete(ctx, OTPPurposeReset, emailAddr); err != nil {
		s.logger.Warn("failed to delete consumed OTP", "error", err)
	}
	return nil
}

// UpdatePassword changes the password for a signed-in user.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

func (s *AuthService) resend(ctx context.Context, purpose, emailAddr string) (time.Time, error) {
	remaining, err := s.otps.CooldownRemaining(ctx, purpose, emailAddr)
	if err != nil {
		return time.Time{}, err
	}
	if remaining > 0 {
		return time.Now().Add(remaining), fmt.Errorf("%w: retry in %s", ErrOTPCooldown, remaining.Round(time.Second))
	}
	s.sendCode(ctx, purpose, emailAddr)
	return time.Now().Add(s.cooldown), nil
}

// sendCode issues and emails a code. Mail delivery failures are logged, not
// returned: the code is already stored and can be re-sent after cooldown.
func (s *AuthService) sendCode(ctx context.Context, purpose, emailAddr string) {
	code, err := s.otps.Issue(ctx, purpose, emailAddr)
	if err != nil {
		s.logger.Error("failed to issue OTP", "purpose", purpose, "error", err)
		return
	}
	var sendErr error
	if purpose == OTPPurposeReset {
		sendErr = s.mailer.SendPasswordReset(emailAddr, code)
	} else {
		sendErr = s.mailer.SendOTP(emailAddr, code)
	}
	if sendErr != nil {
		s.logger.Error("failed to send OTP email", "purpose", purpose, "error", sendErr)
	}
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
