package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amjido-01/cegnal/internal/domain"
)

// stubStaleLister scripts the stale-session batch and records resolutions.
type stubStaleLister struct {
	stale    []domain.PaymentSession
	resolved map[string]domain.PaymentStatus
}

func (s *stubStaleLister) ListStaleInitialized(ctx context.Context, olderThan time.Time, limit int) ([]domain.PaymentSession, error) {
	return s.stale, nil
}

func (s *stubStaleLister) ResolveSession(ctx context.Context, reference string, status domain.PaymentStatus, paidAt *time.Time) error {
	if s.resolved == nil {
		s.resolved = make(map[string]domain.PaymentStatus)
	}
	s.resolved[reference] = status
	return nil
}

// stubVerifier maps references to scripted verify outcomes.
type stubVerifier struct {
	results map[string]domain.PaymentStatus
	errs    map[string]error
	calls   []string
}

func (v *stubVerifier) Verify(ctx context.Context, reference string) (*domain.VerifyResult, error) {
	v.calls = append(v.calls, reference)
	if err := v.errs[reference]; err != nil {
		return nil, err
	}
	return &domain.VerifyResult{Reference: reference, PaymentStatus: v.results[reference]}, nil
}

func TestReconcileStalePaymentSessions(t *testing.T) {
	lister := &stubStaleLister{stale: []domain.PaymentSession{
		{Reference: "ref-settled", Status: domain.PaymentInitialized},
		{Reference: "ref-pending", Status: domain.PaymentInitialized},
		{Reference: "ref-error", Status: domain.PaymentInitialized},
	}}
	verifier := &stubVerifier{
		results: map[string]domain.PaymentStatus{
			"ref-settled": domain.PaymentSuccess,
			"ref-pending": domain.PaymentPending,
		},
		errs: map[string]error{"ref-error": errors.New("provider timeout")},
	}

	jobs := NewJobs(lister, verifier, 24*time.Hour, testLogger())
	jobs.ReconcileStalePaymentSessions()

	if len(verifier.calls) != 3 {
		t.Fatalf("expected every stale session verified, got %v", verifier.calls)
	}
	// A settled payment is handled by Verify itself; the job only abandons
	// sessions the provider still reports pending.
	if status, ok := lister.resolved["ref-settled"]; ok {
		t.Fatalf("settled session must not be re-resolved by the job, got %s", status)
	}
	if lister.resolved["ref-pending"] != domain.PaymentAbandoned {
		t.Fatalf("expected pending session abandoned, got %s", lister.resolved["ref-pending"])
	}
	// Provider errors are retried on the next run, not finalized.
	if _, ok := lister.resolved["ref-error"]; ok {
		t.Fatal("errored session must stay open for the next run")
	}
}

func TestReconcileEmptyBatch(t *testing.T) {
	verifier := &stubVerifier{}
	jobs := NewJobs(&stubStaleLister{}, verifier, 24*time.Hour, testLogger())
	jobs.ReconcileStalePaymentSessions()

	if len(verifier.calls) != 0 {
		t.Fatalf("no verifies expected for an empty batch, got %v", verifier.calls)
	}
}
