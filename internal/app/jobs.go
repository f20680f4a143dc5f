/**
 * @description
 * Scheduled maintenance jobs. The only job today reconciles payment
 * sessions that were initialized but never verified, typically because the
 * user closed the browser before the provider redirected back.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/amjido-01/cegnal/internal/domain"
)

// StaleSessionLister is the slice of the payment repository the jobs need.
type StaleSessionLister interface {
	ListStaleInitialized(ctx context.Context, olderThan time.Time, limit int) ([]domain.PaymentSession, error)
	ResolveSession(ctx context.Context, reference string, status domain.PaymentStatus, paidAt *time.Time) error
}

// Verifier reconciles one reference against the provider.
type Verifier interface {
	Verify(ctx context.Context, reference string) (*domain.VerifyResult, error)
}

// Jobs holds the scheduled job implementations.
type Jobs struct {
	sessions StaleSessionLister
	payments Verifier
	maxAge   time.Duration
	logger   *slog.Logger
}

// NewJobs creates the job set. maxAge is how long an initialized session may
// stay unresolved before the job reconciles or abandons it.
func NewJobs(sessions StaleSessionLister, payments Verifier, maxAge time.Duration, logger *slog.Logger) *Jobs {
	return &Jobs{sessions: sessions, payments: payments, maxAge: maxAge, logger: logger}
}

const staleSessionBatch = 100

// ReconcileStalePaymentSessions verifies each stale session once. Payments
// that settled while the user was away are granted; sessions the provider
// still reports pending are marked abandoned. Provider errors leave the
// session for the next run.
func (j *Jobs) ReconcileStalePaymentSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-j.maxAge)
	stale, err := j.sessions.ListStaleInitialized(ctx, cutoff, staleSessionBatch)
	if err != nil {
		j.logger.Error("failed to list stale payment sessions", "error", err)
		return
	}
	if len(stale) == 0 {
		return
	}
	j.logger.Info("reconciling stale payment sessions", "count", len(stale))

	for _, session := range stale {
		result, err := j.payments.Verify(ctx, session.Reference)
		if err != nil {
			j.logger.Warn("stale session verify failed, will retry next run",
				"reference", session.Reference, "error", err)
			continue
		}
		if result.PaymentStatus == domain.PaymentPending {
			if err := j.sessions.ResolveSession(ctx, session.Reference, domain.PaymentAbandoned, nil); err != nil {
				j.logger.Error("failed to abandon stale session", "reference", session.Reference, "error", err)
			}
		}
	}
}
