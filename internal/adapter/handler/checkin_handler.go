package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/eventtribe/ticketing/internal/core/domain"
	"github.com/eventtribe/ticketing/internal/core/services"
)

type CheckInHandler struct {
	svc     *services.CheckInService
	limiter *RateLimiter
	log     *zap.Logger
}

func NewCheckInHandler(svc *services.CheckInService, limiter *RateLimiter, log *zap.Logger) *CheckInHandler {
	return &CheckInHandler{svc: svc, limiter: limiter, log: log}
}

func (h *CheckInHandler) Verify(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	eventID := r.PathValue("eventID")

	if err := h.svc.Authorize(r.Context(), sess, eventID); err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			writeError(w, http.StatusUnauthorized, "Unauthorized")
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "Only the event organizer can check in attendees")
		default:
			h.log.Error("Check-in authorization failed", zap.String("event_id", eventID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	// Only rejected scans spend tokens.
	limiter := h.limiter.GetLimiter(sess.UserID)
	if limiter.Tokens() < 1 {
		writeError(w, http.StatusTooManyRequests, "Too many invalid scans, slow down")
		return
	}

	var req services.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	res := h.svc.Verify(r.Context(), req.Code, eventID)
	if res.Kind == domain.CheckInInvalidCodeFormat || res.Kind == domain.CheckInUnknownOrMismatchedBooking {
		limiter.Allow()
	}

	writeJSON(w, http.StatusOK, res)
}
