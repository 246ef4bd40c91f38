package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/eventtribe/ticketing/internal/adapter/mpesa"
	"github.com/eventtribe/ticketing/internal/core/domain"
	"github.com/eventtribe/ticketing/internal/core/services"
)

const maxCallbackBody = 1 << 20

type PaymentHandler struct {
	payments        *services.PaymentService
	callbacks       *services.CallbackService
	callbackTimeout time.Duration
	log             *zap.Logger
}

func NewPaymentHandler(payments *services.PaymentService, callbacks *services.CallbackService, callbackTimeout time.Duration, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments:        payments,
		callbacks:       callbacks,
		callbackTimeout: callbackTimeout,
		log:             log,
	}
}

func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req services.InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid json body"})
		return
	}

	resp, err := h.payments.Initiate(r.Context(), SessionFromContext(r.Context()), req)
	if err != nil {
		var initErr *domain.PaymentInitiationError

		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Unauthorized"})
		case errors.Is(err, domain.ErrBookingNotOwned):
			writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "error": "Booking does not belong to you"})
		case errors.As(err, &initErr):
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": initErr.Description})
		default:
			h.log.Error("Payment initiation failed", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Payment failed"})
		}

		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Callback receives STK Push results. Once the body decodes, the provider
// always gets 200 so it stops retrying; unapplied results are picked up by
// the reconciler.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var payload mpesa.CallbackPayload
	if err := json.NewDecoder(io.LimitReader(r.Body, maxCallbackBody)).Decode(&payload); err != nil {
		h.log.Warn("Undecodable payment callback", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "invalid callback payload")
		return
	}

	// The provider may hang up before we finish writing the transition.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.callbackTimeout)
	defer cancel()

	outcome, err := h.callbacks.Handle(ctx, payload.Result())
	if err != nil {
		h.log.Warn("Payment callback not applied",
			zap.String("outcome", string(outcome)),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
