package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amjido-01/cegnal/internal/domain"
	"github.com/amjido-01/cegnal/internal/store"
	"github.com/amjido-01/cegnal/pkg/paystackclient"
)

// stubPaymentRepo stores sessions by reference and enforces the terminal
// guard the way the SQL layer does: resolving only touches initialized rows.
type stubPaymentRepo struct {
	sessions map[string]*domain.PaymentSession
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{sessions: make(map[string]*domain.PaymentSession)}
}

func (r *stubPaymentRepo) CreateSession(ctx context.Context, s *domain.PaymentSession) (*domain.PaymentSession, error) {
	copied := *s
	copied.ID = "ps-" + s.Reference
	r.sessions[s.Reference] = &copied
	return &copied, nil
}

func (r *stubPaymentRepo) GetSessionByReference(ctx context.Context, reference string) (*domain.PaymentSession, error) {
	s, ok := r.sessions[reference]
	if !ok {
		return nil, store.ErrPaymentSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *stubPaymentRepo) ResolveSession(ctx context.Context, reference string, status domain.PaymentStatus, paidAt *time.Time) error {
	s, ok := r.sessions[reference]
	if !ok {
		return store.ErrPaymentSessionNotFound
	}
	if s.Status != domain.PaymentInitialized {
		return nil
	}
	s.Status = status
	s.PaidAt = paidAt
	return nil
}

// stubUsers resolves a single known user.
type stubUsers struct {
	user *domain.User
}

func (u *stubUsers) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if u.user == nil || u.user.ID != id {
		return nil, store.ErrUserNotFound
	}
	return u.user, nil
}

// stubPaystack scripts provider responses and counts calls.
type stubPaystack struct {
	initErr     error
	verifyData  *paystackclient.VerifyData
	verifyErr   error
	initCalls   int
	verifyCalls int
}

func (p *stubPaystack) InitializeTransaction(ctx context.Context, req paystackclient.InitializeRequest) (*paystackclient.InitializeData, error) {
	p.initCalls++
	if p.initErr != nil {
		return nil, p.initErr
	}
	return &paystackclient.InitializeData{
		AuthorizationURL: "https://checkout.paystack.com/" + req.Reference,
		AccessCode:       "ac_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (p *stubPaystack) VerifyTransaction(ctx context.Context, reference string) (*paystackclient.VerifyData, error) {
	p.verifyCalls++
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	return p.verifyData, nil
}

func newPaymentFixture(zone domain.Zone, paystack *stubPaystack) (*PaymentService, *stubZoneRepo, *stubPaymentRepo) {
	zoneRepo := newStubZoneRepo(zone)
	sessions := newStubPaymentRepo()
	users := &stubUsers{user: &domain.User{ID: "user-1", Email: "trader@example.com"}}
	zones := NewZoneService(zoneRepo, nil, nil, testLogger())
	svc := NewPaymentService(sessions, zones, users, paystack, nil, "https://app.cegnal.com/payment/callback", testLogger())
	return svc, zoneRepo, sessions
}

func TestInitiateCreatesSession(t *testing.T) {
	paystack := &stubPaystack{}
	svc, _, sessions := newPaymentFixture(domain.Zone{ID: "z1", IsPaid: true, Price: 500000}, paystack)

	init, err := svc.Initiate(context.Background(), "user-1", "z1")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if init.Reference == "" || init.AuthorizationURL == "" || init.AccessCode == "" {
		t.Fatalf("incomplete init response: %+v", init)
	}

	session := sessions.sessions[init.Reference]
	if session == nil {
		t.Fatal("expected a stored payment session")
	}
	if session.Status != domain.PaymentInitialized {
		t.Fatalf("expected initialized session, got %s", session.Status)
	}
	if session.Amount != 500000 {
		t.Fatalf("expected session amount 500000, got %d", session.Amount)
	}
}

func TestInitiateDistinctReferences(t *testing.T) {
	paystack := &stubPaystack{}
	svc, _, _ := newPaymentFixture(domain.Zone{ID: "z1", IsPaid: true, Price: 500000}, paystack)

	first, err := svc.Initiate(context.Background(), "user-1", "z1")
	if err != nil {
		t.Fatalf("first initiate: %v", err)
	}
	second, err := svc.Initiate(context.Background(), "user-1", "z1")
	if err != nil {
		t.Fatalf("second initiate: %v", err)
	}
	if first.Reference == second.Reference {
		t.Fatalf("expected distinct references, both %q", first.Reference)
	}
}

func TestInitiateGateChecks(t *testing.T) {
	tests := []struct {
		name    string
		zone    domain.Zone
		wantErr error
	}{
		{name: "joined zone", zone: domain.Zone{ID: "z1", IsPaid: true, Price: 100000, HasJoined: true}, wantErr: ErrAlreadyMember},
		{name: "free zone", zone: domain.Zone{ID: "z1", IsPaid: false}, wantErr: ErrZoneNotPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paystack := &stubPaystack{}
			svc, _, _ := newPaymentFixture(tt.zone, paystack)

			_, err := svc.Initiate(context.Background(), "user-1", "z1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if paystack.initCalls != 0 {
				t.Fatalf("provider must not be called, got %d calls", paystack.initCalls)
			}
		})
	}
}

func TestInitiateProviderFailure(t *testing.T) {
	paystack := &stubPaystack{initErr: errors.New("timeout")}
	svc, _, sessions := newPaymentFixture(domain.Zone{ID: "z1", IsPaid: true, Price: 100000}, paystack)

	_, err := svc.Initiate(context.Background(), "user-1", "z1")
	if !errors.Is(err, ErrPaymentProvider) {
		t.Fatalf("expected ErrPaymentProvider, got %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Fatalf("no session should be stored when the provider fails, got %d", len(sessions.sessions))
	}
}

func TestVerifySuccessGrantsMembership(t *testing.T) {
	paidAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	paystack := &stubPaystack{verifyData: &paystackclient.VerifyData{Status: "success", Amount: 500000, PaidAt: &paidAt}}
	svc, zoneRepo, sessions := newPaymentFixture(domain.Zone{ID: "z1", ZoneName: "Gold Signals", IsPaid: true, Price: 500000}, paystack)

	init, err := svc.Initiate(context.Background(), "user-1", "z1")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	result, err := svc.Verify(context.Background(), init.Reference)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.PaymentStatus != domain.PaymentSuccess {
		t.Fatalf("expected success, got %s", result.PaymentStatus)
	}
	if result.ZoneName != "Gold Signals" {
		t.Fatalf("expected zone name in result, got %q", result.ZoneName)
	}
	if result.PaidAt == nil || !result.PaidAt.Equal(paidAt) {
		t.Fatalf("expected provider paidAt, got %v", result.PaidAt)
	}
	if !zoneRepo.members["z1"]["user-1"] {
		t.Fatal("expected membership after successful verify")
	}
	if sessions.sessions[init.Reference].Status != domain.PaymentSuccess {
		t.Fatalf("expected stored session resolved, got %s", sessions.sessions[init.Reference].Status)
	}
}

func TestVerifyIdempotent(t *testing.T) {
	paystack := &stubPaystack{verifyData: &paystackclient.VerifyData{Status: "success"}}
	svc, _, _ := newPaymentFixture(domain.Zone{ID: "z1", ZoneName: "Gold Signals", IsPaid: true, Price: 500000}, paystack)

	init, err := svc.Initiate(context.Background(), "user-1", "z1")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	first, err := svc.Verify(context.Background(), init.Reference)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	second, err := svc.Verify(context.Background(), init.Reference)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if paystack.verifyCalls != 1 {
		t.Fatalf("settled session must replay without a provider call, got %d calls", paystack.verifyCalls)
	}
	if first.PaymentStatus != second.PaymentStatus || first.Reference != second.Reference {
		t.Fatalf("verify not idempotent: %+v vs %+v", first, second)
	}
}

func TestVerifyMembershipFailureLeavesSessionRetriable(t *testing.T) {
	paystack := &stubPaystack{verifyData: &paystackclient.VerifyData{Status: "success"}}
	svc, zoneRepo, sessions := newPaymentFixture(domain.Zone{ID: "z1", IsPaid: true, Price: 500000}, paystack)

	init, err := svc.Initiate(context.Background(), "user-1", "z1")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	// The membership insert fails once; the payment must not settle without
	// the membership it pays for.
	zoneRepo.addErr = errors.New("connection reset")
	if _, err := svc.Verify(context.Background(), init.Reference); err == nil {
		t.Fatal("expected error while the membership grant fails")
	}
	if got := sessions.sessions[init.Reference].Status; got != domain.PaymentInitialized {
		t.Fatalf("session must stay initialized for a retry, got %s", got)
	}

	// Once the store recovers, the same reference verifies end to end.
	zoneRepo.addErr = nil
	result, err := svc.Verify(context.Background(), init.Reference)
	if err != nil {
		t.Fatalf("verify after recovery: %v", err)
	}
	if result.PaymentStatus != domain.PaymentSuccess {
		t.Fatalf("expected success, got %s", result.PaymentStatus)
	}
	if !zoneRepo.members["z1"]["user-1"] {
		t.Fatal("expected membership after the retried verify")
	}
	if got := sessions.sessions[init.Reference].Status; got != domain.PaymentSuccess {
		t.Fatalf("expected settled session, got %s", got)
	}
}

func TestVerifyFailedStatuses(t *testing.T) {
	for _, providerStatus := range []string{"failed", "abandoned", "reversed"} {
		t.Run(providerStatus, func(t *testing.T) {
			paystack := &stubPaystack{verifyData: &paystackclient.VerifyData{Status: providerStatus}}
			svc, zoneRepo, sessions := newPaymentFixture(domain.Zone{ID: "z1", IsPaid: true, Price: 500000}, paystack)

			init, err := svc.Initiate(context.Background(), "user-1", "z1")
			if err != nil {
				t.Fatalf("initiate: %v", err)
			}

			result, err := svc.Verify(context.Background(), init.Reference)
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if result.PaymentStatus != domain.PaymentFailed {
				t.Fatalf("expected failed, got %s", result.PaymentStatus)
			}
			if zoneRepo.members["z1"]["user-1"] {
				t.Fatal("failed payment must not grant membership")
			}
			if sessions.sessions[init.Reference].Status != domain.PaymentFailed {
				t.Fatalf("expected stored session failed, got %s", sessions.sessions[init.Reference].Status)
			}
		})
	}
}

func TestVerifyPendingLeavesSessionOpen(t *testing.T) {
	paystack := &stubPaystack{verifyData: &paystackclient.VerifyData{Status: "pending"}}
	svc, _, sessions := newPaymentFixture(domain.Zone{ID: "z1", IsPaid: true, Price: 500000}, paystack)

	init, err := svc.Initiate(context.Background(), "user-1", "z1")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	result, err := svc.Verify(context.Background(), init.Reference)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.PaymentStatus != domain.PaymentPending {
		t.Fatalf("expected pending, got %s", result.PaymentStatus)
	}
	if sessions.sessions[init.Reference].Status != domain.PaymentInitialized {
		t.Fatalf("pending verify must leave the session initialized, got %s", sessions.sessions[init.Reference].Status)
	}

	// A later verify still consults the provider.
	paystack.verifyData = &paystackclient.VerifyData{Status: "success"}
	result, err = svc.Verify(context.Background(), init.Reference)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if result.PaymentStatus != domain.PaymentSuccess {
		t.Fatalf("expected success once the provider settles, got %s", result.PaymentStatus)
	}
}

func TestVerifyValidation(t *testing.T) {
	paystack := &stubPaystack{}
	svc, _, _ := newPaymentFixture(domain.Zone{ID: "z1", IsPaid: true, Price: 100000}, paystack)

	if _, err := svc.Verify(context.Background(), ""); err == nil {
		t.Fatal("expected error for blank reference")
	}
	if _, err := svc.Verify(context.Background(), "unknown-ref"); !errors.Is(err, store.ErrPaymentSessionNotFound) {
		t.Fatalf("expected ErrPaymentSessionNotFound, got %v", err)
	}
	if paystack.verifyCalls != 0 {
		t.Fatalf("provider must not be called for invalid references, got %d calls", paystack.verifyCalls)
	}
}
