package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore holds one-time codes and their resend-cooldown deadlines. The
// cooldown is stored as an absolute expiry on the server, so it survives
// client reloads.
type OTPStore interface {
	Issue(ctx context.Context, purpose, email string) (string, error)
	Check(ctx context.Context, purpose, email, code string) (bool, error)
	Delete(ctx context.Context, purpose, email string) error
	CooldownRemaining(ctx context.Context, purpose, email string) (time.Duration, error)
}

// OTP purposes namespace codes so a reset code cannot verify an account.
const (
	OTPPurposeVerify = "verify"
	OTPPurposeReset  = "reset"
)

// RedisOTPStore is the Redis-backed OTP store.
type RedisOTPStore struct {
	client   redis.UniversalClient
	ttl      time.Duration
	cooldown time.Duration
}

// NewRedisOTPStore creates an OTP store with the given code TTL and resend
// cooldown.
func NewRedisOTPStore(client redis.UniversalClient, ttl, cooldown time.Duration) *RedisOTPStore {
	return &RedisOTPStore{client: client, ttl: ttl, cooldown: cooldown}
}

func otpKey(purpose, email string) string {
	return fmt.Sprintf("cegnal:otp:%s:%s", purpose, email)
}

func cooldownKey(purpose, email string) string {
	return fmt.Sprintf("cegnal:otp_cd:%s:%s", purpose, email)
}

// generateCode returns a 6-digit numeric code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue generates and stores a fresh code, replacing any previous one, and
// arms the resend cooldown.
func (s *RedisOTPStore) Issue(ctx context.Context, purpose, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, otpKey(purpose, email), code, s.ttl).Err(); err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, cooldownKey(purpose, email), "1", s.cooldown).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Check compares the submitted code against the stored one in constant time.
func (s *RedisOTPStore) Check(ctx context.Context, purpose, email, code string) (bool, error) {
	stored, err := s.client.Get(ctx, otpKey(purpose, email)).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1, nil
}

// Delete removes a consumed code.
func (s *RedisOTPStore) Delete(ctx context.Context, purpose, email string) error {
	return s.client.Del(ctx, otpKey(purpose, email)).Err()
}

// CooldownRemaining returns how long until another code may be sent; zero
// means the cooldown has passed.
func (s *RedisOTPStore) CooldownRemaining(ctx context.Context, purpose, email string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, cooldownKey(purpose, email)).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
