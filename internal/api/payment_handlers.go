package api

import (
	"errors"
	"net/http"

	"github.com/amjido-01/cegnal/internal/app"
	"github.com/amjido-01/cegnal/internal/domain"
	"github.com/amjido-01/cegnal/internal/store"
)

// PaymentHandler serves the payment initiate and verify endpoints.
type PaymentHandler struct {
	payments *app.PaymentService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(payments *app.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// HandleInitiate serves POST /payment/initiate. Only a paid zone the caller
// has not joined may start a session; each call is an independent attempt
// with its own reference.
func (h *PaymentHandler) HandleInitiate(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req domain.InitiatePaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	init, err := h.payments.Initiate(r.Context(), userID, req.ZoneID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrZoneNotFound):
			respondError(w, http.StatusNotFound, "Zone not found")
		case errors.Is(err, app.ErrAlreadyMember):
			respondError(w, http.StatusConflict, "You have already joined this zone")
		case errors.Is(err, app.ErrZoneNotPaid):
			respondError(w, http.StatusBadRequest, "This zone is free to join")
		case errors.Is(err, app.ErrPaymentProvider):
			respondError(w, http.StatusBadGateway, "Failed to initialize payment, please try again")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to initialize payment")
		}
		return
	}

	respondSuccess(w, http.StatusOK, "Payment initialized", init)
}

// HandleVerify serves POST /payment/verify. A missing reference fails
// immediately without touching the provider.
func (h *PaymentHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserIDFromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req domain.VerifyPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Payment reference is required")
		return
	}

	result, err := h.payments.Verify(r.Context(), req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrPaymentSessionNotFound):
			respondError(w, http.StatusNotFound, "Unknown payment reference")
		case errors.Is(err, app.ErrPaymentProvider):
			respondError(w, http.StatusBadGateway, "Payment verification failed, please try again")
		default:
			respondError(w, http.StatusInternalServerError, "Payment verification failed")
		}
		return
	}

	respondSuccess(w, http.StatusOK, "Payment verified", result)
}
