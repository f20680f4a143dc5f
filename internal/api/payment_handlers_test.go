package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/amjido-01/cegnal/internal/app"
	"github.com/amjido-01/cegnal/internal/domain"
)

func newPaymentTestRouter(zone domain.Zone, paystack *fakePaystack) (http.Handler, *fakePaymentRepo) {
	zoneRepo := newFakeZoneRepo(zone)
	sessions := newFakePaymentRepo()
	zones := app.NewZoneService(zoneRepo, nil, nil, quietLogger())
	payments := app.NewPaymentService(
		sessions,
		zones,
		&fakeUsers{user: domain.User{ID: "user-1", Email: "trader@example.com"}},
		paystack,
		nil,
		"https://app.cegnal.com/payment/callback",
		quietLogger(),
	)
	h := NewPaymentHandler(payments)

	r := chi.NewRouter()
	r.Post("/payment/initiate", asUser("user-1", h.HandleInitiate))
	r.Post("/payment/verify", asUser("user-1", h.HandleVerify))
	return r, sessions
}

func TestHandleInitiate(t *testing.T) {
	tests := []struct {
		name       string
		zone       domain.Zone
		body       string
		wantStatus int
	}{
		{
			name:       "paid unjoined zone initializes",
			zone:       domain.Zone{ID: "z1", IsPaid: true, Price: 500000},
			body:       `{"zoneId":"z1"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "joined zone conflicts",
			zone:       domain.Zone{ID: "z1", IsPaid: true, Price: 500000, HasJoined: true},
			body:       `{"zoneId":"z1"}`,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "free zone rejected",
			zone:       domain.Zone{ID: "z1"},
			body:       `{"zoneId":"z1"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown zone",
			zone:       domain.Zone{ID: "z1", IsPaid: true, Price: 500000},
			body:       `{"zoneId":"missing"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing zone id",
			zone:       domain.Zone{ID: "z1", IsPaid: true, Price: 500000},
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newPaymentTestRouter(tt.zone, &fakePaystack{})
			req := httptest.NewRequest(http.MethodPost, "/payment/initiate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleInitiateResponseShape(t *testing.T) {
	router, _ := newPaymentTestRouter(domain.Zone{ID: "z1", IsPaid: true, Price: 500000}, &fakePaystack{})

	req := httptest.NewRequest(http.MethodPost, "/payment/initiate", strings.NewReader(`{"zoneId":"z1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	env := decodeEnvelope(t, rec)
	body := env.ResponseBody.(map[string]interface{})
	// The provider's snake_case field names pass through to the client.
	for _, field := range []string{"authorization_url", "access_code", "reference"} {
		if v, ok := body[field].(string); !ok || v == "" {
			t.Fatalf("expected non-empty %s, got %+v", field, body)
		}
	}
}

func TestHandleVerifyBlankReference(t *testing.T) {
	paystack := &fakePaystack{verifyStatus: "success"}
	router, _ := newPaymentTestRouter(domain.Zone{ID: "z1", IsPaid: true, Price: 500000}, paystack)

	for _, body := range []string{`{}`, `{"reference":""}`} {
		req := httptest.NewRequest(http.MethodPost, "/payment/verify", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env.ResponseMessage != "Payment reference is required" {
			t.Fatalf("unexpected message %q", env.ResponseMessage)
		}
	}
	// The provider must never be consulted for a missing reference.
	if paystack.verifyCalls != 0 {
		t.Fatalf("expected no provider calls, got %d", paystack.verifyCalls)
	}
}

func TestHandleVerifyUnknownReference(t *testing.T) {
	router, _ := newPaymentTestRouter(domain.Zone{ID: "z1", IsPaid: true, Price: 500000}, &fakePaystack{})

	req := httptest.NewRequest(http.MethodPost, "/payment/verify", strings.NewReader(`{"reference":"nope"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleVerifyRoundTrip(t *testing.T) {
	paystack := &fakePaystack{verifyStatus: "success"}
	router, sessions := newPaymentTestRouter(domain.Zone{ID: "z1", ZoneName: "Gold Signals", IsPaid: true, Price: 500000}, paystack)

	req := httptest.NewRequest(http.MethodPost, "/payment/initiate", strings.NewReader(`{"zoneId":"z1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	env := decodeEnvelope(t, rec)
	reference := env.ResponseBody.(map[string]interface{})["reference"].(string)

	req = httptest.NewRequest(http.MethodPost, "/payment/verify", strings.NewReader(`{"reference":"`+reference+`"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env = decodeEnvelope(t, rec)
	body := env.ResponseBody.(map[string]interface{})
	if body["paymentStatus"] != string(domain.PaymentSuccess) {
		t.Fatalf("expected success status, got %+v", body)
	}
	if body["zoneName"] != "Gold Signals" {
		t.Fatalf("expected zone name, got %+v", body)
	}
	if sessions.sessions[reference].Status != domain.PaymentSuccess {
		t.Fatalf("expected stored session resolved, got %s", sessions.sessions[reference].Status)
	}
}
