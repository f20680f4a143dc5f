/**
 * @description
 * Payment workflow orchestration: initializing a checkout session with the
 * provider and reconciling the returned reference on verification. Every
 * initiation is an independent session with its own reference; verification
 * is idempotent per reference.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amjido-01/cegnal/internal/domain"
	"github.com/amjido-01/cegnal/pkg/paystackclient"
	"github.com/amjido-01/cegnal/pkg/rabbitmq"
)

// PaymentRepository defines the payment-session storage the service needs.
type PaymentRepository interface {
	CreateSession(ctx context.Context, s *domain.PaymentSession) (*domain.PaymentSession, error)
	GetSessionByReference(ctx context.Context, reference string) (*domain.PaymentSession, error)
	ResolveSession(ctx context.Context, reference string, status domain.PaymentStatus, paidAt *time.Time) error
}

// UserReader resolves the paying user's email for the provider call.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// PaystackClient is the slice of the provider client the service uses.
type PaystackClient interface {
	InitializeTransaction(ctx context.Context, req paystackclient.InitializeRequest) (*paystackclient.InitializeData, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystackclient.VerifyData, error)
}

// PaymentEventsExchange is the topic exchange for payment events.
const PaymentEventsExchange = "payment_events"

// PaymentService orchestrates initiate and verify.
type PaymentService struct {
	sessions    PaymentRepository
	zones       *ZoneService
	users       UserReader
	paystack    PaystackClient
	producer    rabbitmq.Publisher
	callbackURL string
	logger      *slog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	sessions PaymentRepository,
	zones *ZoneService,
	users UserReader,
	paystack PaystackClient,
	producer rabbitmq.Publisher,
	callbackURL string,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		sessions:    sessions,
		zones:       zones,
		users:       users,
		paystack:    paystack,
		producer:    producer,
		callbackURL: callbackURL,
		logger:      logger,
	}
}

// Initiate starts a payment session for a paid, unjoined zone. The gate
// rules are re-checked here: joined zones never re-enter the payment flow
// and free zones are pointed at the join operation instead.
func (s *PaymentService) Initiate(ctx context.Context, userID, zoneID string) (*domain.PaymentInit, error) {
	zone, err := s.zones.repo.GetZone(ctx, userID, zoneID)
	if err != nil {
		return nil, err
	}

	switch domain.ResolveAccess(*zone).State {
	case domain.AccessJoined:
		return nil, ErrAlreadyMember
	case domain.AccessFreeUnjoined:
		return nil, ErrZoneNotPaid
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	reference := uuid.NewString()
	data, err := s.paystack.InitializeTransaction(ctx, paystackclient.InitializeRequest{
		Email:       user.Email,
		Amount:      zone.Price,
		Reference:   reference,
		CallbackURL: s.callbackURL,
		Metadata:    map[string]string{"zoneId": zoneID},
	})
	if err != nil {
		s.logger.Error("payment initialization failed", "zone_id", zoneID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	session := &domain.PaymentSession{
		UserID:           userID,
		ZoneID:           zoneID,
		Reference:        reference,
		Amount:           zone.Price,
		Status:           domain.PaymentInitialized,
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
	}
	if _, err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &domain.PaymentInit{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        reference,
	}, nil
}

// Verify reconciles a reference against the provider. An already-settled
// session replays its stored result without another provider call, so
// verifying the same reference twice returns the same outcome. A pending
// provider status leaves the session open for a later verify.
func (s *PaymentService) Verify(ctx context.Context, reference string) (*domain.VerifyResult, error) {
	if reference == "" {
		return nil, fmt.Errorf("payment reference is required")
	}

	session, err := s.sessions.GetSessionByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if session.Status.Terminal() {
		return s.resultFor(ctx, session, session.Status)
	}

	data, err := s.paystack.VerifyTransaction(ctx, reference)
	if err != nil {
		s.logger.Error("payment verification failed", "reference", reference, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	switch data.Status {
	case "success":
		paidAt := data.PaidAt
		if paidAt == nil {
			now := time.Now().UTC()
			paidAt = &now
		}

		// Membership is the external side effect of a confirmed payment and
		// must precede settling the session: a failed grant leaves the
		// session initialized, so a later verify retries the whole step.
		// The grant itself is idempotent, so re-running it is safe.
		if err := s.zones.GrantMembership(ctx, session.UserID, session.ZoneID); err != nil {
			s.logger.Error("failed to grant membership after payment", "reference", reference, "error", err)
			return nil, err
		}
		if err := s.sessions.ResolveSession(ctx, reference, domain.PaymentSuccess, paidAt); err != nil {
			return nil, err
		}
		session.Status = domain.PaymentSuccess
		session.PaidAt = paidAt

		s.publishVerified(ctx, session)
		return s.resultFor(ctx, session, domain.PaymentSuccess)

	case "failed", "abandoned", "reversed":
		if err := s.sessions.ResolveSession(ctx, reference, domain.PaymentFailed, nil); err != nil {
			return nil, err
		}
		session.Status = domain.PaymentFailed
		return s.resultFor(ctx, session, domain.PaymentFailed)

	default:
		// Still pending at the provider; report it without finalizing.
		return s.resultFor(ctx, session, domain.PaymentPending)
	}
}

// resultFor builds the verify response from a session, resolving the zone
// name for display. Abandoned sessions read back as failed.
func (s *PaymentService) resultFor(ctx context.Context, session *domain.PaymentSession, status domain.PaymentStatus) (*domain.VerifyResult, error) {
	if status == domain.PaymentAbandoned {
		status = domain.PaymentFailed
	}

	zoneName := ""
	if zone, err := s.zones.repo.GetZone(ctx, session.UserID, session.ZoneID); err == nil {
		zoneName = zone.ZoneName
	} else if !errors.Is(err, context.Canceled) {
		s.logger.Warn("could not resolve zone name for verify response", "zone_id", session.ZoneID, "error", err)
	}

	return &domain.VerifyResult{
		ZoneID:        session.ZoneID,
		ZoneName:      zoneName,
		Amount:        session.Amount,
		Reference:     session.Reference,
		PaymentStatus: status,
		PaidAt:        session.PaidAt,
	}, nil
}

func (s *PaymentService) publishVerified(ctx context.Context, session *domain.PaymentSession) {
	if s.producer == nil {
		return
	}
	paidAt := time.Now().UTC()
	if session.PaidAt != nil {
		paidAt = *session.PaidAt
	}
	event := domain.PaymentVerifiedEvent{
		UserID:    session.UserID,
		ZoneID:    session.ZoneID,
		Reference: session.Reference,
		Amount:    session.Amount,
		PaidAt:    paidAt,
	}
	if err := s.producer.Publish(ctx, PaymentEventsExchange, "payment.verified", event); err != nil {
		s.logger.Error("failed to publish payment.verified", "reference", session.Reference, "error", err)
	}
}
